package records

import (
	"sort"

	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/workout"
)

// Summary holds lifetime totals over a workout history.
type Summary struct {
	TotalWorkouts           int            `json:"total_workouts"`
	TotalSets               int            `json:"total_sets"`
	TotalVolume             float64        `json:"total_volume"`
	TotalDurationMinutes    int            `json:"total_duration_minutes"`
	AverageDurationMinutes  float64        `json:"average_duration_minutes"`
	AverageSetsPerWorkout   float64        `json:"average_sets_per_workout"`
	ExerciseFrequency       map[string]int `json:"exercise_frequency"`
	MuscleGroupDistribution map[string]int `json:"muscle_group_distribution"`
}

// ExerciseCount is one row of the most-trained exercises list.
type ExerciseCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ComputeSummary totals history. Set and volume sums are recomputed from the
// valid completed sets rather than read from stored totals. An empty history
// yields zeros and empty maps.
func ComputeSummary(history []models.CompletedWorkout) Summary {
	s := Summary{
		TotalWorkouts:           len(history),
		ExerciseFrequency:       make(map[string]int),
		MuscleGroupDistribution: make(map[string]int),
	}
	for _, w := range history {
		kept, sets, volume := workout.Totals(w.Exercises)
		s.TotalSets += sets
		s.TotalVolume += volume
		if w.Duration > 0 {
			s.TotalDurationMinutes += w.Duration
		}
		for _, e := range kept {
			s.ExerciseFrequency[e.Name]++
			if e.Muscle != "" {
				s.MuscleGroupDistribution[e.Muscle]++
			}
		}
	}
	if s.TotalWorkouts > 0 {
		s.AverageDurationMinutes = float64(s.TotalDurationMinutes) / float64(s.TotalWorkouts)
		s.AverageSetsPerWorkout = float64(s.TotalSets) / float64(s.TotalWorkouts)
	}
	return s
}

// TopExercises returns the n most frequent exercises, most frequent first,
// ties broken by name. n <= 0 returns every exercise.
func (s Summary) TopExercises(n int) []ExerciseCount {
	out := make([]ExerciseCount, 0, len(s.ExerciseFrequency))
	for name, c := range s.ExerciseFrequency {
		out = append(out, ExerciseCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
