package records

import (
	"fmt"
	"time"

	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/workout"
)

// Granularity selects the bucket size of periodic aggregates.
type Granularity string

const (
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts "week" or "month".
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Week, Month:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("invalid granularity %q (want week or month)", s)
}

// PeriodAggregate is one bucket of a chart. Period is the first day of the
// bucket formatted as 2006-01-02.
type PeriodAggregate struct {
	Period       string  `json:"period"`
	Label        string  `json:"label"`
	WorkoutCount int     `json:"workout_count"`
	Volume       float64 `json:"volume"`
}

// ComputePeriodicAggregates buckets history into the windowCount most recent
// weeks or calendar months ending with the one containing now. Buckets come
// oldest first, and empty buckets are included with zero values.
func ComputePeriodicAggregates(history []models.CompletedWorkout, g Granularity, windowCount int, now time.Time, loc *time.Location, weekStart time.Weekday) []PeriodAggregate {
	if windowCount <= 0 {
		return []PeriodAggregate{}
	}
	if loc == nil {
		loc = time.Local
	}

	cur := periodStart(now, g, loc, weekStart)
	starts := make([]time.Time, windowCount)
	out := make([]PeriodAggregate, windowCount)
	for i := range windowCount {
		st := step(cur, g, i-(windowCount-1))
		starts[i] = st
		out[i] = PeriodAggregate{Period: st.Format("2006-01-02"), Label: label(st, g)}
	}
	end := step(cur, g, 1)

	for _, w := range history {
		d := w.Date.In(loc)
		if d.Before(starts[0]) || !d.Before(end) {
			continue
		}
		i := windowCount - 1
		for i > 0 && d.Before(starts[i]) {
			i--
		}
		_, _, volume := workout.Totals(w.Exercises)
		out[i].WorkoutCount++
		out[i].Volume += volume
	}
	return out
}

func periodStart(t time.Time, g Granularity, loc *time.Location, weekStart time.Weekday) time.Time {
	day := dayOf(t, loc)
	if g == Month {
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
	}
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

func step(start time.Time, g Granularity, n int) time.Time {
	if g == Month {
		return start.AddDate(0, n, 0)
	}
	return start.AddDate(0, 0, 7*n)
}

func label(start time.Time, g Granularity) string {
	if g == Month {
		return start.Format("Jan")
	}
	return start.Format("Jan 2")
}

// DayActivity is the journal strip entry for one calendar day.
type DayActivity struct {
	Date     string  `json:"date"`
	Workouts int     `json:"workouts"`
	Volume   float64 `json:"volume"`
}

// RecentActivity returns one entry per day for the last days days, today
// included, oldest first.
func RecentActivity(history []models.CompletedWorkout, now time.Time, loc *time.Location, days int) []DayActivity {
	if days <= 0 {
		return []DayActivity{}
	}
	if loc == nil {
		loc = time.Local
	}
	today := dayOf(now, loc)
	first := today.AddDate(0, 0, -(days - 1))

	out := make([]DayActivity, days)
	index := make(map[time.Time]int, days)
	for i := range days {
		d := first.AddDate(0, 0, i)
		out[i] = DayActivity{Date: d.Format("2006-01-02")}
		index[d] = i
	}
	for _, w := range history {
		i, ok := index[dayOf(w.Date, loc)]
		if !ok {
			continue
		}
		_, _, volume := workout.Totals(w.Exercises)
		out[i].Workouts++
		out[i].Volume += volume
	}
	return out
}

// WorkoutsOn returns deep copies of the workouts whose date falls on day's
// calendar day in loc, in history order.
func WorkoutsOn(history []models.CompletedWorkout, day time.Time, loc *time.Location) []models.CompletedWorkout {
	if loc == nil {
		loc = time.Local
	}
	target := dayOf(day, loc)
	out := []models.CompletedWorkout{}
	for _, w := range history {
		if dayOf(w.Date, loc).Equal(target) {
			out = append(out, w.Clone())
		}
	}
	return out
}
