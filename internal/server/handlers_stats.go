package server

import (
	"net/http"
	"net/url"

	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/records"
	"github.com/go-chi/chi/v5"
)

const (
	defaultTopExercises = 5
	defaultPeriods      = 6
	defaultActivityDays = 7

	maxPeriods      = 120
	maxActivityDays = 366
)

type checkRecordRequest struct {
	Exercise string  `json:"exercise" validate:"required"`
	Weight   float64 `json:"weight" validate:"gte=0"`
	Reps     int     `json:"reps" validate:"gte=0"`
}

type checkRecordResponse struct {
	Exercise      string                 `json:"exercise"`
	IsNewRecord   bool                   `json:"is_new_record"`
	CurrentRecord *models.PersonalRecord `json:"current_record"`
}

type summaryResponse struct {
	records.Summary
	TopExercises []records.ExerciseCount `json:"top_exercises"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.PersonalRecords())
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "exercise")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	pr, ok := s.store.PersonalRecordFor(name)
	if !ok {
		writeError(w, http.StatusNotFound, "no record for "+name)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (s *Server) handleCheckRecord(w http.ResponseWriter, r *http.Request) {
	var req checkRecordRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp := checkRecordResponse{
		Exercise:    req.Exercise,
		IsNewRecord: s.store.IsNewPersonalRecord(req.Exercise, req.Weight, req.Reps),
	}
	if pr, ok := s.store.PersonalRecordFor(req.Exercise); ok {
		resp.CurrentRecord = &pr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top", defaultTopExercises)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sum := s.store.Summary()
	writeJSON(w, http.StatusOK, summaryResponse{Summary: sum, TopExercises: sum.TopExercises(top)})
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Streaks())
}

func (s *Server) handlePeriodic(w http.ResponseWriter, r *http.Request) {
	g := records.Month
	if v := r.URL.Query().Get("granularity"); v != "" {
		parsed, err := records.ParseGranularity(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g = parsed
	}
	count, err := intParam(r, "count", defaultPeriods)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.Periodic(g, min(count, maxPeriods)))
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", defaultActivityDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.RecentActivity(min(days, maxActivityDays)))
}
