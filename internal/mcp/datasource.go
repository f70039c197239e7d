package mcp

import (
	"context"
	"errors"

	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/programs"
	"github.com/claude/setsreps/internal/records"
)

// ErrNotFound is returned by a DataSource when a workout id is unknown.
var ErrNotFound = history.ErrNotFound

// RecordCheck answers whether a set would beat the stored record.
type RecordCheck struct {
	Exercise      string                 `json:"exercise"`
	IsNewRecord   bool                   `json:"is_new_record"`
	CurrentRecord *models.PersonalRecord `json:"current_record"`
}

// TrainingSummary is the lifetime summary plus the most frequent exercises.
type TrainingSummary struct {
	records.Summary
	TopExercises []records.ExerciseCount `json:"top_exercises"`
}

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// store) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	History(ctx context.Context, limit int) ([]models.CompletedWorkout, error)
	Workout(ctx context.Context, id string) (*models.CompletedWorkout, error)
	PersonalRecords(ctx context.Context) ([]models.PersonalRecord, error)
	CheckPersonalRecord(ctx context.Context, exercise string, weight float64, reps int) (*RecordCheck, error)
	Summary(ctx context.Context, top int) (*TrainingSummary, error)
	Streaks(ctx context.Context) (*records.Streaks, error)
	Periodic(ctx context.Context, g records.Granularity, count int) ([]records.PeriodAggregate, error)
	RecentActivity(ctx context.Context, days int) ([]records.DayActivity, error)
	Programs(ctx context.Context) ([]programs.Program, error)
}

// Local serves MCP requests straight from the in-process history store.
type Local struct {
	store   *history.Store
	catalog *programs.Catalog
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps a store and program catalog. catalog may be nil.
func NewLocal(store *history.Store, catalog *programs.Catalog) *Local {
	return &Local{store: store, catalog: catalog}
}

func (l *Local) History(_ context.Context, limit int) ([]models.CompletedWorkout, error) {
	ws := l.store.History()
	if limit > 0 && len(ws) > limit {
		ws = ws[:limit]
	}
	return ws, nil
}

func (l *Local) Workout(_ context.Context, id string) (*models.CompletedWorkout, error) {
	w, ok := l.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (l *Local) PersonalRecords(_ context.Context) ([]models.PersonalRecord, error) {
	return l.store.PersonalRecords(), nil
}

func (l *Local) CheckPersonalRecord(_ context.Context, exercise string, weight float64, reps int) (*RecordCheck, error) {
	rc := &RecordCheck{
		Exercise:    exercise,
		IsNewRecord: l.store.IsNewPersonalRecord(exercise, weight, reps),
	}
	if pr, ok := l.store.PersonalRecordFor(exercise); ok {
		rc.CurrentRecord = &pr
	}
	return rc, nil
}

func (l *Local) Summary(_ context.Context, top int) (*TrainingSummary, error) {
	sum := l.store.Summary()
	return &TrainingSummary{Summary: sum, TopExercises: sum.TopExercises(top)}, nil
}

func (l *Local) Streaks(_ context.Context) (*records.Streaks, error) {
	st := l.store.Streaks()
	return &st, nil
}

func (l *Local) Periodic(_ context.Context, g records.Granularity, count int) ([]records.PeriodAggregate, error) {
	return l.store.Periodic(g, count), nil
}

func (l *Local) RecentActivity(_ context.Context, days int) ([]records.DayActivity, error) {
	return l.store.RecentActivity(days), nil
}

func (l *Local) Programs(_ context.Context) ([]programs.Program, error) {
	if l.catalog == nil {
		return nil, errors.New("no program catalog loaded")
	}
	return l.catalog.List(), nil
}
