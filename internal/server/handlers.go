package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/workout"
	"github.com/go-chi/chi/v5"
)

type setInput struct {
	Weight    float64 `json:"weight" validate:"gte=0"`
	Reps      int     `json:"reps" validate:"gte=0"`
	Completed bool    `json:"completed"`
}

type exerciseInput struct {
	Name          string     `json:"name" validate:"required"`
	Category      string     `json:"category"`
	Muscle        string     `json:"muscle"`
	Sets          []setInput `json:"sets" validate:"dive"`
	SupersetGroup *int64     `json:"superset_group,omitempty"`
	SupersetWith  *string    `json:"superset_with,omitempty"`
}

type finishRequest struct {
	StartTime time.Time       `json:"start_time" validate:"required"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Exercises []exerciseInput `json:"exercises" validate:"dive"`
}

type editRequest struct {
	Exercises []exerciseInput `json:"exercises" validate:"dive"`
}

type timesRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type importRequest struct {
	Workouts []models.CompletedWorkout `json:"workouts"`
}

type importResponse struct {
	Received int `json:"received"`
	history.ImportResult
}

func toEntries(in []exerciseInput) []models.ExerciseEntry {
	out := make([]models.ExerciseEntry, len(in))
	for i, ex := range in {
		sets := make([]models.LoggedSet, len(ex.Sets))
		for j, set := range ex.Sets {
			sets[j] = models.LoggedSet{Weight: set.Weight, Reps: set.Reps, Completed: set.Completed}
		}
		out[i] = models.ExerciseEntry{
			Name:          ex.Name,
			Category:      ex.Category,
			Muscle:        ex.Muscle,
			Sets:          sets,
			SupersetGroup: ex.SupersetGroup,
			SupersetWith:  ex.SupersetWith,
		}
	}
	return out
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ws := s.store.History()
	if limit > 0 && len(ws) > limit {
		ws = ws[:limit]
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleTodayWorkouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Today())
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	wk, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, history.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess := models.Session{StartTime: req.StartTime, Exercises: toEntries(req.Exercises)}
	wk := s.store.FinishSession(writeContext(r), sess, req.EndTime)
	writeJSON(w, http.StatusCreated, wk)
}

func (s *Server) handleEditWorkout(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, &req) {
		return
	}
	wk, err := s.store.EditSession(writeContext(r), chi.URLParam(r, "id"), toEntries(req.Exercises))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleEditWorkoutTimes(w http.ResponseWriter, r *http.Request) {
	var req timesRequest
	if !s.decode(w, r, &req) {
		return
	}
	wk, err := s.store.EditSessionTimes(writeContext(r), chi.URLParam(r, "id"), req.StartTime, req.EndTime)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSession(writeContext(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearHistory(writeContext(r)); err != nil {
		s.log.Error("clear history error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportWorkouts(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !s.decode(w, r, &req) {
		return
	}
	res := s.store.Import(writeContext(r), req.Workouts)
	writeJSON(w, http.StatusOK, importResponse{Received: len(req.Workouts), ImportResult: res})
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.alpha.Ingest(writeContext(r), r.Body)
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeContext detaches a mutation from the client connection so a
// dropped request cannot abort the persist after memory has changed.
func writeContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// decode reads a JSON body into v and validates it. It writes the 400
// response itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation: "+err.Error())
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workout.ErrInvalidTimeRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// intParam reads a non-negative integer query parameter, returning def
// when it is absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
