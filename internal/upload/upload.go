// Package upload pushes workouts saved on this device to a SetsReps server.
package upload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/storage"
	"go.uber.org/multierr"
)

// DefaultBatchSize is the number of workouts per import request.
const DefaultBatchSize = 20

// Stats tracks upload progress.
type Stats struct {
	Total   int
	Sent    int
	Skipped int
	Errored int

	// Inserted is how many sent workouts the server did not have yet;
	// Updated is how many replaced an older copy there.
	Inserted int
	Updated  int
	Batches  int
}

// Uploader reads the local history, skips what the ledger says was already
// sent, and POSTs the rest to the server in batches.
type Uploader struct {
	source    storage.Backend
	key       string
	client    *Client
	state     *StateDB
	dryRun    bool
	batchSize int
	log       *slog.Logger
	stats     Stats
}

type pending struct {
	workout models.CompletedWorkout
	hash    string
}

// New creates a new Uploader reading history stored under key in source.
func New(source storage.Backend, key string, client *Client, state *StateDB, dryRun bool, batchSize int, log *slog.Logger) *Uploader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Uploader{
		source:    source,
		key:       key,
		client:    client,
		state:     state,
		dryRun:    dryRun,
		batchSize: batchSize,
		log:       log,
	}
}

// Run executes the upload pipeline. A failed batch is counted and the rest
// still go out; the returned error combines every batch failure.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	data, err := u.source.Load(ctx, u.key)
	if err != nil {
		return &u.stats, fmt.Errorf("loading local history: %w", err)
	}
	ws, err := storage.DecodeHistory(data)
	if err != nil {
		return &u.stats, fmt.Errorf("decoding local history: %w", err)
	}
	u.stats.Total = len(ws)

	var todo []pending
	for _, w := range ws {
		if w.ID == "" {
			u.log.Warn("skipping workout without id", "date", w.Date)
			u.stats.Skipped++
			continue
		}
		hash, err := HashWorkout(w)
		if err != nil {
			return &u.stats, fmt.Errorf("hashing workout %s: %w", w.ID, err)
		}
		sent, err := u.state.IsSent(ctx, w.ID, hash)
		if err != nil {
			return &u.stats, fmt.Errorf("checking state for %s: %w", w.ID, err)
		}
		if sent {
			u.stats.Skipped++
			continue
		}
		todo = append(todo, pending{workout: w, hash: hash})
	}

	if u.dryRun {
		u.stats.Sent = len(todo)
		u.log.Info("dry run", "would_send", len(todo), "skipped", u.stats.Skipped)
		return &u.stats, nil
	}

	var errs error
	for start := 0; start < len(todo); start += u.batchSize {
		batch := todo[start:min(start+u.batchSize, len(todo))]
		if err := u.sendBatch(ctx, batch); err != nil {
			u.stats.Errored += len(batch)
			u.log.Error("batch failed", "size", len(batch), "error", err)
			errs = multierr.Append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		// A workout that fails to be marked is sent again next run; the
		// server counts an identical copy as unchanged.
		for _, p := range batch {
			if err := u.state.MarkSent(ctx, p.workout.ID, p.hash); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("marking %s sent: %w", p.workout.ID, err))
			}
		}
	}
	return &u.stats, errs
}

func (u *Uploader) sendBatch(ctx context.Context, batch []pending) error {
	ws := make([]models.CompletedWorkout, len(batch))
	for i, p := range batch {
		ws[i] = p.workout
	}

	result, err := u.client.SendWorkouts(ctx, ws)
	if err != nil {
		return fmt.Errorf("sending %d workouts: %w", len(ws), err)
	}
	u.stats.Batches++
	u.stats.Sent += len(batch)
	u.stats.Inserted += result.Inserted
	u.stats.Updated += result.Updated
	if result.Skipped > 0 {
		u.log.Warn("server skipped malformed workouts", "count", result.Skipped)
	}
	u.log.Info("batch sent", "size", len(batch), "inserted", result.Inserted, "updated", result.Updated)
	return nil
}
