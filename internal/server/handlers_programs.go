package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.programs.List())
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := s.programs.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleStartProgram returns a fresh session built from the program. The
// session is not stored; the client finishes it with POST /api/v1/workouts.
func (s *Server) handleStartProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := s.programs.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	writeJSON(w, http.StatusOK, p.StartSession(s.now()))
}
