package history

import (
	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/records"
)

// derive returns the cached statistics for the current version, computing
// them on first use after a change.
func (s *Store) derive() *derived {
	s.mu.RLock()
	if c := s.cache; c != nil && c.version == s.version {
		s.mu.RUnlock()
		return c
	}
	ws, version := s.workouts, s.version
	s.mu.RUnlock()

	prs := records.DerivePersonalRecords(ws)
	c := &derived{
		version: version,
		records: prs,
		list:    records.PersonalRecordList(prs),
		summary: records.ComputeSummary(ws),
	}

	s.mu.Lock()
	if s.version == version {
		s.cache = c
	}
	s.mu.Unlock()
	return c
}

// PersonalRecords returns the PR table, heaviest first.
func (s *Store) PersonalRecords() []models.PersonalRecord {
	list := s.derive().list
	out := make([]models.PersonalRecord, len(list))
	copy(out, list)
	return out
}

// PersonalRecordFor returns the record for one exercise name (exact match).
func (s *Store) PersonalRecordFor(name string) (models.PersonalRecord, bool) {
	pr, ok := s.derive().records[name]
	return pr, ok
}

// IsNewPersonalRecord reports whether weight × reps would be a new record
// for name, using the weight-first rule of the live session.
func (s *Store) IsNewPersonalRecord(name string, weight float64, reps int) bool {
	return records.IsNewPersonalRecord(name, weight, reps, s.derive().records)
}

// Summary returns lifetime totals.
func (s *Store) Summary() records.Summary {
	sum := s.derive().summary
	sum.ExerciseFrequency = copyCounts(sum.ExerciseFrequency)
	sum.MuscleGroupDistribution = copyCounts(sum.MuscleGroupDistribution)
	return sum
}

// Streaks depends on the current day, so it is computed on every call.
func (s *Store) Streaks() records.Streaks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return records.ComputeStreaks(s.workouts, s.now(), s.loc)
}

// Periodic returns the last n weeks or months of workout counts and volume.
func (s *Store) Periodic(g records.Granularity, n int) []records.PeriodAggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return records.ComputePeriodicAggregates(s.workouts, g, n, s.now(), s.loc, s.week)
}

// RecentActivity returns per-day activity for the last days days.
func (s *Store) RecentActivity(days int) []records.DayActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return records.RecentActivity(s.workouts, s.now(), s.loc, days)
}

// Today returns the workouts logged on the current calendar day.
func (s *Store) Today() []models.CompletedWorkout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return records.WorkoutsOn(s.workouts, s.now(), s.loc)
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
