// Package records derives personal records and training statistics from a
// workout history. Every function is a pure computation over its inputs;
// malformed sets are skipped, never fatal.
package records

import (
	"sort"

	"github.com/claude/setsreps/internal/models"
)

// DerivePersonalRecords returns, per exercise name, the completed set with the
// highest single-set volume (weight × reps). Sets with zero weight or zero
// reps never qualify. Ties keep the first set encountered walking history in
// the order given, so the result is stable for a stable input.
func DerivePersonalRecords(history []models.CompletedWorkout) map[string]models.PersonalRecord {
	out := make(map[string]models.PersonalRecord)
	for _, w := range history {
		for _, e := range w.Exercises {
			for _, s := range e.Sets {
				if !qualifies(s) {
					continue
				}
				v := s.Volume()
				if cur, ok := out[e.Name]; ok && v <= cur.Volume {
					continue
				}
				out[e.Name] = models.PersonalRecord{
					ExerciseName: e.Name,
					Weight:       s.Weight,
					Reps:         s.Reps,
					Date:         w.Date,
					Volume:       v,
				}
			}
		}
	}
	return out
}

// PersonalRecordList flattens records into the PR table order: heaviest
// weight first, then exercise name.
func PersonalRecordList(records map[string]models.PersonalRecord) []models.PersonalRecord {
	out := make([]models.PersonalRecord, 0, len(records))
	for _, pr := range records {
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ExerciseName < out[j].ExerciseName
	})
	return out
}

// IsNewPersonalRecord reports whether a set logged during a session beats the
// current record. Unlike DerivePersonalRecords it ranks by raw weight first
// and only falls back to volume at equal weight.
func IsNewPersonalRecord(name string, weight float64, reps int, records map[string]models.PersonalRecord) bool {
	cur, ok := records[name]
	if !ok {
		return true
	}
	if weight > cur.Weight {
		return true
	}
	return weight == cur.Weight && weight*float64(reps) > cur.Volume
}

func qualifies(s models.LoggedSet) bool {
	return s.Completed && s.Valid() && s.Weight > 0 && s.Reps > 0
}
