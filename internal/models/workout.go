package models

import (
	"math"
	"slices"
	"time"
)

// LoggedSet is one performed set. Weight is unit-agnostic (kilograms in practice).
type LoggedSet struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// Volume returns weight × reps for this single set.
func (s LoggedSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// Valid reports whether the set carries usable numbers. Sets read back from a
// corrupted store may have negative or non-finite values; those never count
// toward totals or records.
func (s LoggedSet) Valid() bool {
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
		return false
	}
	return s.Weight >= 0 && s.Reps >= 0
}

// ExerciseEntry is one exercise within a session or completed workout.
// Name is free text and is the identity used for grouping (exact match).
type ExerciseEntry struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Muscle   string      `json:"muscle"`
	Sets     []LoggedSet `json:"sets"`

	// Superset annotations are display grouping only; aggregation ignores them.
	SupersetGroup *int64  `json:"superset_group,omitempty"`
	SupersetWith  *string `json:"superset_with,omitempty"`
}

// CompletedSets returns the sets marked completed, in logged order.
func (e ExerciseEntry) CompletedSets() []LoggedSet {
	var out []LoggedSet
	for _, s := range e.Sets {
		if s.Completed {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy of the entry.
func (e ExerciseEntry) Clone() ExerciseEntry {
	c := e
	c.Sets = slices.Clone(e.Sets)
	if e.SupersetGroup != nil {
		g := *e.SupersetGroup
		c.SupersetGroup = &g
	}
	if e.SupersetWith != nil {
		w := *e.SupersetWith
		c.SupersetWith = &w
	}
	return c
}

// CloneExercises deep-copies a list of entries.
func CloneExercises(in []ExerciseEntry) []ExerciseEntry {
	if in == nil {
		return nil
	}
	out := make([]ExerciseEntry, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// Session is the in-progress state of a workout before it is finished.
// Exercise order is display order.
type Session struct {
	StartTime time.Time       `json:"start_time"`
	Exercises []ExerciseEntry `json:"exercises"`
}

// CompletedWorkout is the persisted record of a finished session. Only
// completed sets are kept, and exercises without any are dropped.
type CompletedWorkout struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Exercises   []ExerciseEntry `json:"exercises"`
	Duration    int             `json:"duration"` // minutes
	TotalSets   int             `json:"total_sets"`
	TotalVolume float64         `json:"total_volume"`
}

// Clone returns a deep copy of the workout.
func (w CompletedWorkout) Clone() CompletedWorkout {
	c := w
	c.Exercises = CloneExercises(w.Exercises)
	return c
}

// PersonalRecord is the best set ever logged for one exercise name.
// It is always derived from history and never stored on its own.
type PersonalRecord struct {
	ExerciseName string    `json:"exercise_name"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	Date         time.Time `json:"date"`
	Volume       float64   `json:"volume"`
}
