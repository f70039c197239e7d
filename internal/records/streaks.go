package records

import (
	"sort"
	"time"

	"github.com/claude/setsreps/internal/models"
)

// Streaks counts consecutive calendar days with at least one workout.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreaks walks workout days in loc. The current streak counts back
// from today, or from yesterday when nothing was logged today, so a streak
// is not broken until a whole day passes without training.
func ComputeStreaks(history []models.CompletedWorkout, now time.Time, loc *time.Location) Streaks {
	if loc == nil {
		loc = time.Local
	}
	days := make(map[time.Time]bool)
	for _, w := range history {
		days[dayOf(w.Date, loc)] = true
	}
	if len(days) == 0 {
		return Streaks{}
	}

	var st Streaks
	d := dayOf(now, loc)
	if !days[d] {
		d = d.AddDate(0, 0, -1)
	}
	for days[d] {
		st.Current++
		d = d.AddDate(0, 0, -1)
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	run := 0
	for i, d := range sorted {
		if i > 0 && sorted[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		st.Longest = max(st.Longest, run)
	}
	return st
}

// dayOf returns local midnight of t's calendar day in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
