package records

import (
	"testing"
	"time"

	"github.com/claude/setsreps/internal/models"
)

// TestComputeStreaks covers the walk-from-yesterday rule and longest runs.
func TestComputeStreaks(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	at := func(daysAgo int) models.CompletedWorkout {
		return wk("", now.AddDate(0, 0, -daysAgo))
	}

	tests := []struct {
		name        string
		history     []models.CompletedWorkout
		wantCurrent int
		wantLongest int
	}{
		{"empty", nil, 0, 0},
		{"yesterday and day before", []models.CompletedWorkout{at(1), at(2)}, 2, 2},
		{"single old workout", []models.CompletedWorkout{at(10)}, 0, 1},
		{"today counts", []models.CompletedWorkout{at(0), at(1)}, 2, 2},
		{"two today one day", []models.CompletedWorkout{at(0), at(0)}, 1, 1},
		{"gap breaks current", []models.CompletedWorkout{at(0), at(2), at(3)}, 1, 2},
		{"longest in past", []models.CompletedWorkout{at(1), at(20), at(21), at(22), at(23)}, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStreaks(tt.history, now, time.UTC)
			if got.Current != tt.wantCurrent || got.Longest != tt.wantLongest {
				t.Errorf("ComputeStreaks = %+v, want current %d longest %d", got, tt.wantCurrent, tt.wantLongest)
			}
		})
	}
}

// TestComputeStreaksUsesLocation verifies calendar days follow the given
// time zone rather than UTC.
func TestComputeStreaksUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, loc)
	// 02:00 UTC on the 20th is still the 19th at UTC-5.
	late := wk("", time.Date(2026, 5, 20, 2, 0, 0, 0, time.UTC))

	if got := ComputeStreaks([]models.CompletedWorkout{late}, now, loc); got.Current != 1 {
		t.Errorf("Current = %d, want 1 (workout yesterday in local time)", got.Current)
	}
}

// TestComputeSummaryEmpty verifies zero history yields zeros and empty maps.
func TestComputeSummaryEmpty(t *testing.T) {
	s := ComputeSummary(nil)
	if s.TotalWorkouts != 0 || s.TotalSets != 0 || s.TotalVolume != 0 ||
		s.TotalDurationMinutes != 0 || s.AverageDurationMinutes != 0 || s.AverageSetsPerWorkout != 0 {
		t.Errorf("ComputeSummary(nil) = %+v, want zeros", s)
	}
	if s.ExerciseFrequency == nil || len(s.ExerciseFrequency) != 0 {
		t.Errorf("ExerciseFrequency = %v, want empty map", s.ExerciseFrequency)
	}
	if s.MuscleGroupDistribution == nil || len(s.MuscleGroupDistribution) != 0 {
		t.Errorf("MuscleGroupDistribution = %v, want empty map", s.MuscleGroupDistribution)
	}
	if top := s.TopExercises(5); len(top) != 0 {
		t.Errorf("TopExercises = %v, want empty", top)
	}
}

// TestComputeSummary verifies totals, averages and frequency counts.
func TestComputeSummary(t *testing.T) {
	a := wk("a", day0, ex("Bench", "Chest", done(80, 5), done(80, 5)), ex("Fly", "Chest", done(15, 12)))
	a.Duration = 50
	b := wk("b", day0.AddDate(0, 0, -1), ex("Bench", "Chest", done(82.5, 3)), ex("Squat", "Legs", done(100, 5)))
	b.Duration = 40
	// Corrupted stored totals must not leak into the summary.
	b.TotalVolume = 1e9
	c := wk("c", day0.AddDate(0, 0, -2), ex("Bench", "Chest", done(-1, 5)))
	c.Duration = -30

	s := ComputeSummary([]models.CompletedWorkout{a, b, c})

	if s.TotalWorkouts != 3 {
		t.Errorf("TotalWorkouts = %d, want 3", s.TotalWorkouts)
	}
	if s.TotalSets != 5 {
		t.Errorf("TotalSets = %d, want 5", s.TotalSets)
	}
	wantVol := 80*5 + 80*5 + 15*12 + 82.5*3 + 100*5
	if s.TotalVolume != wantVol {
		t.Errorf("TotalVolume = %v, want %v", s.TotalVolume, wantVol)
	}
	if s.TotalDurationMinutes != 90 {
		t.Errorf("TotalDurationMinutes = %d, want 90", s.TotalDurationMinutes)
	}
	if s.AverageDurationMinutes != 30 {
		t.Errorf("AverageDurationMinutes = %v, want 30", s.AverageDurationMinutes)
	}
	if s.AverageSetsPerWorkout != 5.0/3.0 {
		t.Errorf("AverageSetsPerWorkout = %v, want %v", s.AverageSetsPerWorkout, 5.0/3.0)
	}
	if s.ExerciseFrequency["Bench"] != 2 || s.ExerciseFrequency["Fly"] != 1 {
		t.Errorf("ExerciseFrequency = %v", s.ExerciseFrequency)
	}
	if s.MuscleGroupDistribution["Chest"] != 3 || s.MuscleGroupDistribution["Legs"] != 1 {
		t.Errorf("MuscleGroupDistribution = %v", s.MuscleGroupDistribution)
	}

	top := s.TopExercises(2)
	if len(top) != 2 || top[0].Name != "Bench" || top[1].Name != "Fly" {
		t.Errorf("TopExercises(2) = %+v, want Bench then Fly", top)
	}
}

// TestComputePeriodicAggregatesMonthly verifies a fixed-width window with
// empty months present and oldest first.
func TestComputePeriodicAggregatesMonthly(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	history := []models.CompletedWorkout{
		wk("a", time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC), ex("Bench", "", done(100, 5))),
		wk("b", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), ex("Bench", "", done(50, 2))),
		wk("c", time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC), ex("Squat", "", done(100, 1))),
		wk("old", time.Date(2025, 11, 30, 10, 0, 0, 0, time.UTC), ex("Squat", "", done(100, 1))),
		wk("future", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), ex("Squat", "", done(100, 1))),
	}

	got := ComputePeriodicAggregates(history, Month, 6, now, time.UTC, time.Monday)
	want := []PeriodAggregate{
		{Period: "2025-12-01", Label: "Dec"},
		{Period: "2026-01-01", Label: "Jan"},
		{Period: "2026-02-01", Label: "Feb"},
		{Period: "2026-03-01", Label: "Mar", WorkoutCount: 1, Volume: 100},
		{Period: "2026-04-01", Label: "Apr"},
		{Period: "2026-05-01", Label: "May", WorkoutCount: 2, Volume: 600},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("period %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestComputePeriodicAggregatesWeekly verifies weeks start on the configured
// weekday.
func TestComputePeriodicAggregatesWeekly(t *testing.T) {
	// Wednesday.
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	history := []models.CompletedWorkout{
		wk("mon", time.Date(2026, 5, 18, 7, 0, 0, 0, time.UTC), ex("A", "", done(10, 10))),
		wk("sun", time.Date(2026, 5, 17, 7, 0, 0, 0, time.UTC), ex("A", "", done(10, 1))),
	}

	mon := ComputePeriodicAggregates(history, Week, 2, now, time.UTC, time.Monday)
	if mon[0].Period != "2026-05-11" || mon[1].Period != "2026-05-18" {
		t.Fatalf("monday periods = %s, %s", mon[0].Period, mon[1].Period)
	}
	if mon[0].WorkoutCount != 1 || mon[1].WorkoutCount != 1 || mon[1].Volume != 100 {
		t.Errorf("monday buckets = %+v", mon)
	}

	sun := ComputePeriodicAggregates(history, Week, 2, now, time.UTC, time.Sunday)
	if sun[1].Period != "2026-05-17" || sun[1].WorkoutCount != 2 || sun[0].WorkoutCount != 0 {
		t.Errorf("sunday buckets = %+v", sun)
	}
}

// TestComputePeriodicAggregatesEmptyWindow verifies a non-positive window.
func TestComputePeriodicAggregatesEmptyWindow(t *testing.T) {
	if got := ComputePeriodicAggregates(nil, Month, 0, time.Now(), time.UTC, time.Monday); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	got := ComputePeriodicAggregates(nil, Week, 3, time.Now(), time.UTC, time.Monday)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, p := range got {
		if p.WorkoutCount != 0 || p.Volume != 0 {
			t.Errorf("empty history bucket = %+v", p)
		}
	}
}

// TestParseGranularity verifies accepted values.
func TestParseGranularity(t *testing.T) {
	if g, err := ParseGranularity("week"); err != nil || g != Week {
		t.Errorf("ParseGranularity(week) = %v, %v", g, err)
	}
	if _, err := ParseGranularity("year"); err == nil {
		t.Error("expected error for year")
	}
}

// TestRecentActivity verifies the journal strip includes empty days.
func TestRecentActivity(t *testing.T) {
	now := time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)
	history := []models.CompletedWorkout{
		wk("a", time.Date(2026, 5, 20, 7, 0, 0, 0, time.UTC), ex("A", "", done(10, 5))),
		wk("b", time.Date(2026, 5, 18, 7, 0, 0, 0, time.UTC), ex("A", "", done(10, 5))),
		wk("c", time.Date(2026, 5, 18, 19, 0, 0, 0, time.UTC), ex("A", "", done(20, 5))),
		wk("d", time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC), ex("A", "", done(10, 5))),
	}

	got := RecentActivity(history, now, time.UTC, 7)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[0].Date != "2026-05-14" || got[6].Date != "2026-05-20" {
		t.Errorf("range = %s..%s, want 2026-05-14..2026-05-20", got[0].Date, got[6].Date)
	}
	if got[4].Workouts != 2 || got[4].Volume != 150 {
		t.Errorf("2026-05-18 = %+v, want 2 workouts 150 volume", got[4])
	}
	if got[6].Workouts != 1 || got[5].Workouts != 0 {
		t.Errorf("tail = %+v", got[5:])
	}
}

// TestWorkoutsOn verifies today's workouts are returned as copies.
func TestWorkoutsOn(t *testing.T) {
	now := time.Date(2026, 5, 20, 22, 0, 0, 0, time.UTC)
	history := []models.CompletedWorkout{
		wk("today", time.Date(2026, 5, 20, 7, 0, 0, 0, time.UTC), ex("A", "", done(10, 5))),
		wk("yesterday", time.Date(2026, 5, 19, 23, 0, 0, 0, time.UTC)),
	}
	got := WorkoutsOn(history, now, time.UTC)
	if len(got) != 1 || got[0].ID != "today" {
		t.Fatalf("WorkoutsOn = %+v, want only today", got)
	}
	got[0].Exercises[0].Sets[0].Weight = 999
	if history[0].Exercises[0].Sets[0].Weight != 10 {
		t.Error("WorkoutsOn returned shared slices")
	}
}
