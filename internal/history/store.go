// Package history holds the workout history in memory, persists it through a
// storage backend, and serves derived statistics from a cache that is
// dropped on every change.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/claude/setsreps/internal/metrics"
	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/records"
	"github.com/claude/setsreps/internal/storage"
	"github.com/claude/setsreps/internal/workout"
)

// ErrNotFound is returned when no stored workout has the requested id.
var ErrNotFound = errors.New("workout not found")

// DefaultMaxWorkouts is the history cap when Options leaves it unset.
const DefaultMaxWorkouts = 50

// Options configures a Store. Zero values get defaults.
type Options struct {
	Key         string
	MaxWorkouts int
	Location    *time.Location
	WeekStart   time.Weekday // zero value is time.Sunday
	Now         func() time.Time
	NewID       func() string
	Metrics     *metrics.Manager
}

// derived is the memoized statistics for one history version.
type derived struct {
	version uint64
	records map[string]models.PersonalRecord
	list    []models.PersonalRecord
	summary records.Summary
}

// Store is the single writer of the workout history. Readers get deep
// copies, so a published snapshot is never mutated.
type Store struct {
	backend storage.Backend
	key     string
	max     int
	loc     *time.Location
	week    time.Weekday
	now     func() time.Time
	newID   func() string
	metrics *metrics.Manager
	log     *slog.Logger

	mu       sync.RWMutex
	workouts []models.CompletedWorkout // newest first
	version  uint64
	cache    *derived

	// persistMu orders backend writes so an older snapshot never lands
	// after a newer one.
	persistMu sync.Mutex
}

// New creates an empty store. Call Load to read the persisted history.
func New(backend storage.Backend, opts Options, log *slog.Logger) *Store {
	if opts.Key == "" {
		opts.Key = "setsreps-workouts"
	}
	if opts.MaxWorkouts <= 0 {
		opts.MaxWorkouts = DefaultMaxWorkouts
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = workout.NewID
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		backend: backend,
		key:     opts.Key,
		max:     opts.MaxWorkouts,
		loc:     opts.Location,
		week:    opts.WeekStart,
		now:     opts.Now,
		newID:   opts.NewID,
		metrics: opts.Metrics,
		log:     log,
	}
}

// Load replaces the in-memory history with the persisted snapshot, keeping
// its stored order and trimming only the tail past the cap. A snapshot that
// fails to decode is logged and treated as empty; a backend that cannot be
// read returns an error and leaves the store unchanged.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	ws, err := storage.DecodeHistory(data)
	if err != nil {
		s.log.Error("stored history is unreadable, starting empty",
			"backend", s.backend.Name(), "key", s.key, "error", err)
		ws = nil
	}
	if len(ws) > s.max {
		ws = ws[:s.max]
	}

	s.mu.Lock()
	s.publish(ws)
	s.mu.Unlock()

	s.log.Info("history loaded", "backend", s.backend.Name(), "workouts", len(ws))
	return nil
}

// Save writes the current history to the backend and returns any error.
func (s *Store) Save(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.mu.RLock()
	ws := s.workouts
	s.mu.RUnlock()
	return s.write(ctx, ws)
}

// History returns a read-only snapshot, newest first.
func (s *Store) History() []models.CompletedWorkout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.workouts)
}

// Len is the number of stored workouts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workouts)
}

// Get returns the workout with id.
func (s *Store) Get(id string) (models.CompletedWorkout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.workouts, id); i >= 0 {
		return s.workouts[i].Clone(), true
	}
	return models.CompletedWorkout{}, false
}

// FinishSession turns sess into a completed workout, prepends it and trims
// the history to the cap. A nil end means now. An end before the start is
// saved with a zero duration.
func (s *Store) FinishSession(ctx context.Context, sess models.Session, end *time.Time) models.CompletedWorkout {
	e := s.now()
	if end != nil {
		e = *end
	}
	if e.Before(sess.StartTime) {
		s.log.Warn("session ends before it starts, duration clamped to 0",
			"start", sess.StartTime, "end", e)
	}
	w := workout.Finish(sess.Exercises, sess.StartTime, e, s.newID())

	s.mu.Lock()
	next := make([]models.CompletedWorkout, 0, min(len(s.workouts)+1, s.max))
	next = append(next, w)
	next = append(next, s.workouts...)
	if len(next) > s.max {
		next = next[:s.max]
	}
	v := s.publish(next)
	s.mu.Unlock()

	s.metrics.WorkoutFinished()
	s.persist(ctx, v, next)
	s.log.Info("workout finished", "id", w.ID, "sets", w.TotalSets, "volume", w.TotalVolume)
	return w.Clone()
}

// EditSession replaces the exercises of workout id and recomputes its totals.
func (s *Store) EditSession(ctx context.Context, id string, exercises []models.ExerciseEntry) (models.CompletedWorkout, error) {
	return s.update(ctx, id, func(w models.CompletedWorkout) (models.CompletedWorkout, error) {
		return workout.ReplaceExercises(w, exercises), nil
	})
}

// EditSessionTimes moves workout id to [start, end]. end must be after start.
func (s *Store) EditSessionTimes(ctx context.Context, id string, start, end time.Time) (models.CompletedWorkout, error) {
	return s.update(ctx, id, func(w models.CompletedWorkout) (models.CompletedWorkout, error) {
		return workout.RetimeWorkout(w, start, end)
	})
}

func (s *Store) update(ctx context.Context, id string, fn func(models.CompletedWorkout) (models.CompletedWorkout, error)) (models.CompletedWorkout, error) {
	s.mu.Lock()
	i := indexOf(s.workouts, id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Warn("edit of unknown workout ignored", "id", id)
		return models.CompletedWorkout{}, ErrNotFound
	}
	w, err := fn(s.workouts[i])
	if err != nil {
		s.mu.Unlock()
		return models.CompletedWorkout{}, err
	}
	next := make([]models.CompletedWorkout, len(s.workouts))
	copy(next, s.workouts)
	next[i] = w
	v := s.publish(next)
	s.mu.Unlock()

	s.metrics.WorkoutEdited()
	s.persist(ctx, v, next)
	return w.Clone(), nil
}

// DeleteSession removes workout id.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	i := indexOf(s.workouts, id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Warn("delete of unknown workout ignored", "id", id)
		return ErrNotFound
	}
	next := make([]models.CompletedWorkout, 0, len(s.workouts)-1)
	next = append(next, s.workouts[:i]...)
	next = append(next, s.workouts[i+1:]...)
	v := s.publish(next)
	s.mu.Unlock()

	s.metrics.WorkoutDeleted()
	s.persist(ctx, v, next)
	return nil
}

// ClearHistory drops every workout and removes the key from the backend.
// The in-memory history is cleared even when the backend delete fails.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	s.publish(nil)
	s.mu.Unlock()

	s.metrics.HistoryCleared()
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.backend.Delete(ctx, s.key); err != nil {
		s.metrics.PersistFailed()
		s.log.Error("clearing persisted history failed",
			"backend", s.backend.Name(), "key", s.key, "error", err)
		return fmt.Errorf("clearing history: %w", err)
	}
	s.log.Info("history cleared")
	return nil
}

// ImportResult reports what an import batch did to the history.
type ImportResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// Import merges workouts received from outside, such as a synced device or
// an export file. Every record is normalized first, so incomplete sets are
// dropped and totals recomputed; records without an id or date are skipped.
// A new id is slotted in before the first stored workout dated earlier,
// leaving the order of stored workouts alone, and the history is trimmed to
// the cap. A known id replaces the stored workout in place when its content
// differs. Inserted and Updated count only workouts still present after
// trimming.
func (s *Store) Import(ctx context.Context, ws []models.CompletedWorkout) ImportResult {
	var res ImportResult

	s.mu.Lock()
	next := make([]models.CompletedWorkout, len(s.workouts), len(s.workouts)+len(ws))
	copy(next, s.workouts)
	added := make(map[string]bool)
	updated := make(map[string]bool)
	for _, in := range ws {
		w, err := workout.Normalize(in)
		if err != nil {
			res.Skipped++
			s.log.Warn("skipping malformed workout", "id", in.ID, "error", err)
			continue
		}
		i := indexOf(next, w.ID)
		switch {
		case i < 0:
			next = insertByDate(next, w)
			added[w.ID] = true
		case sameWorkout(next[i], w):
			res.Unchanged++
		default:
			next[i] = w
			if !added[w.ID] {
				updated[w.ID] = true
			}
		}
	}
	if len(added) == 0 && len(updated) == 0 {
		s.mu.Unlock()
		return res
	}
	if len(next) > s.max {
		next = next[:s.max]
	}
	for _, w := range next {
		switch {
		case added[w.ID]:
			res.Inserted++
		case updated[w.ID]:
			res.Updated++
		}
	}
	v := s.publish(next)
	s.mu.Unlock()

	s.metrics.WorkoutsImported(res.Inserted)
	for range res.Updated {
		s.metrics.WorkoutEdited()
	}
	s.persist(ctx, v, next)
	s.log.Info("workouts imported", "received", len(ws),
		"inserted", res.Inserted, "updated", res.Updated, "skipped", res.Skipped)
	return res
}

// publish installs ws as the current history and returns its version.
// Callers hold mu.
func (s *Store) publish(ws []models.CompletedWorkout) uint64 {
	s.workouts = ws
	s.version++
	s.cache = nil
	s.metrics.SetHistorySize(len(ws))
	return s.version
}

// persist writes the snapshot published as version and swallows the error.
// The in-memory history stays authoritative until the next successful write.
// A snapshot superseded before its turn is skipped; the newer one is written.
func (s *Store) persist(ctx context.Context, version uint64, ws []models.CompletedWorkout) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	stale := s.version != version
	s.mu.RUnlock()
	if stale {
		return
	}

	if err := s.write(ctx, ws); err != nil {
		s.metrics.PersistFailed()
		s.log.Error("persisting history failed, keeping in-memory state",
			"backend", s.backend.Name(), "key", s.key, "error", err)
	}
}

func (s *Store) write(ctx context.Context, ws []models.CompletedWorkout) error {
	data, err := storage.EncodeHistory(ws)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

func indexOf(ws []models.CompletedWorkout, id string) int {
	for i, w := range ws {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// insertByDate puts w before the first workout dated earlier than it.
func insertByDate(ws []models.CompletedWorkout, w models.CompletedWorkout) []models.CompletedWorkout {
	i := len(ws)
	for k, cur := range ws {
		if cur.Date.Before(w.Date) {
			i = k
			break
		}
	}
	return slices.Insert(ws, i, w)
}

// sameWorkout compares stored content. Instants compare with Equal, since a
// decoded timestamp may carry a different location than the original.
func sameWorkout(a, b models.CompletedWorkout) bool {
	return a.ID == b.ID &&
		a.Date.Equal(b.Date) &&
		a.StartTime.Equal(b.StartTime) &&
		a.EndTime.Equal(b.EndTime) &&
		a.Duration == b.Duration &&
		a.TotalSets == b.TotalSets &&
		a.TotalVolume == b.TotalVolume &&
		reflect.DeepEqual(a.Exercises, b.Exercises)
}

func cloneAll(ws []models.CompletedWorkout) []models.CompletedWorkout {
	out := make([]models.CompletedWorkout, len(ws))
	for i, w := range ws {
		out[i] = w.Clone()
	}
	return out
}
