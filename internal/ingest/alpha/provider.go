// Package alpha imports Alpha Progression CSV exports as completed workouts.
package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/ingest"
	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/workout"
	"github.com/google/uuid"
)

// namespace seeds deterministic workout ids, so importing the same export
// twice yields the same ids and the second import adds nothing.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://alphaprogression.com/export"))

// WorkoutID is the stable id of an imported session.
func WorkoutID(s Session) string {
	return uuid.NewSHA1(namespace, []byte(s.Name+"|"+s.Start.UTC().Format(time.RFC3339))).String()
}

// ToWorkouts converts parsed sessions. Working sets become completed sets;
// warmups are dropped. Bodyweight-plus sets count only the added weight.
func ToWorkouts(sessions []Session) []models.CompletedWorkout {
	out := make([]models.CompletedWorkout, 0, len(sessions))
	for _, s := range sessions {
		exercises := make([]models.ExerciseEntry, 0, len(s.Exercises))
		for _, ex := range s.Exercises {
			entry := models.ExerciseEntry{Name: ex.Name, Category: ex.Equipment}
			for _, set := range ex.Sets {
				if set.IsWarmup {
					continue
				}
				entry.Sets = append(entry.Sets, models.LoggedSet{
					Weight:    set.WeightKg,
					Reps:      set.Reps,
					Completed: true,
				})
			}
			exercises = append(exercises, entry)
		}
		out = append(out, workout.Finish(exercises, s.Start, s.Start.Add(s.Duration), WorkoutID(s)))
	}
	return out
}

// Importer is the part of the history store the provider writes to.
type Importer interface {
	Import(ctx context.Context, ws []models.CompletedWorkout) history.ImportResult
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store Importer
	loc   *time.Location
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider. Session
// times in the export are local to loc.
func NewProvider(store Importer, loc *time.Location, log *slog.Logger) *Provider {
	return &Provider{store: store, loc: loc, log: log}
}

// Ingest parses a CSV export and imports its sessions into the history.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r, p.loc)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			for _, set := range ex.Sets {
				if set.IsWarmup {
					result.WarmupsSkipped++
				} else {
					result.SetsReceived++
				}
			}
		}
	}

	ws := ToWorkouts(sessions)
	if len(ws) > 0 {
		res := p.store.Import(ctx, ws)
		result.WorkoutsInserted = res.Inserted
		result.WorkoutsUpdated = res.Updated
	}
	result.WorkoutsSkipped = len(ws) - result.WorkoutsInserted - result.WorkoutsUpdated

	p.log.Info("alpha import complete",
		"sessions", result.SessionsReceived,
		"inserted", result.WorkoutsInserted,
		"sets", result.SetsReceived)
	return result, nil
}
