// Package workout turns live sessions into completed workout records and
// recomputes their totals when a stored workout is edited.
package workout

import (
	"errors"
	"fmt"
	"time"

	"github.com/claude/setsreps/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrInvalidTimeRange is returned when a workout's end is not after its start.
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	// ErrMalformed is returned for a received workout record that cannot be stored.
	ErrMalformed = errors.New("malformed workout record")
)

// NewID returns a time-ordered unique workout id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Totals filters exercises down to their completed, valid sets, drops
// exercises left empty, and sums the kept sets. The input is not modified.
func Totals(exercises []models.ExerciseEntry) (kept []models.ExerciseEntry, totalSets int, totalVolume float64) {
	for _, e := range exercises {
		var sets []models.LoggedSet
		for _, s := range e.Sets {
			if !s.Completed || !s.Valid() {
				continue
			}
			sets = append(sets, s)
			totalVolume += s.Volume()
		}
		if len(sets) == 0 {
			continue
		}
		c := e.Clone()
		c.Sets = sets
		kept = append(kept, c)
		totalSets += len(sets)
	}
	return kept, totalSets, totalVolume
}

// Duration is the whole minutes between start and end, floored. A negative
// span (end before start) is clamped to 0.
func Duration(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// Finish builds the completed workout for a session ending at end.
// The workout's date is its end time.
func Finish(exercises []models.ExerciseEntry, start, end time.Time, id string) models.CompletedWorkout {
	kept, sets, volume := Totals(exercises)
	return models.CompletedWorkout{
		ID:          id,
		Date:        end,
		StartTime:   start,
		EndTime:     end,
		Exercises:   kept,
		Duration:    Duration(start, end),
		TotalSets:   sets,
		TotalVolume: volume,
	}
}

// ReplaceExercises swaps a stored workout's exercises and recomputes its
// totals. Id, date, times and duration are kept.
func ReplaceExercises(w models.CompletedWorkout, exercises []models.ExerciseEntry) models.CompletedWorkout {
	kept, sets, volume := Totals(exercises)
	out := w.Clone()
	out.Exercises = kept
	out.TotalSets = sets
	out.TotalVolume = volume
	return out
}

// RetimeWorkout moves a stored workout to a new start/end. The end must be strictly
// after the start; otherwise ErrInvalidTimeRange is returned and w is
// unchanged.
func RetimeWorkout(w models.CompletedWorkout, start, end time.Time) (models.CompletedWorkout, error) {
	if !end.After(start) {
		return w, ErrInvalidTimeRange
	}
	out := w.Clone()
	out.StartTime = start
	out.EndTime = end
	out.Date = end
	out.Duration = Duration(start, end)
	return out, nil
}

// Normalize re-derives a workout received from outside the aggregator, such
// as an import batch or a synced device. Incomplete and invalid sets are
// dropped along with exercises left empty, and totals are recomputed. The
// duration comes from start and end when both are set and is never negative.
// A record without an id or a date is rejected with ErrMalformed.
func Normalize(w models.CompletedWorkout) (models.CompletedWorkout, error) {
	if w.ID == "" {
		return w, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if w.Date.IsZero() {
		return w, fmt.Errorf("%w: workout %s has no date", ErrMalformed, w.ID)
	}
	out := ReplaceExercises(w, w.Exercises)
	switch {
	case !w.StartTime.IsZero() && !w.EndTime.IsZero():
		out.Duration = Duration(w.StartTime, w.EndTime)
	case out.Duration < 0:
		out.Duration = 0
	}
	return out, nil
}
