package alpha

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/models"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseCompleteSessions verifies parsing a multi-session CSV with exercises and sets.
func TestParseCompleteSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV), time.UTC)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s1 := sessions[0]
	if s1.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s1.Name = %q", s1.Name)
	}
	if want := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC); !s1.Start.Equal(want) {
		t.Errorf("s1.Start = %v, want %v", s1.Start, want)
	}
	if s1.Duration != 62*time.Minute || s1.DurationText != "1:02 hr" {
		t.Errorf("s1 duration = %v (%q), want 62m", s1.Duration, s1.DurationText)
	}
	if len(s1.Exercises) != 6 {
		t.Fatalf("s1 exercises = %d, want 6", len(s1.Exercises))
	}

	tests := []struct {
		name       string
		equipment  string
		targetReps int
		sets       int // warmups + working
	}{
		{"Hack Squats", "Machine", 8, 5},
		{"Sumo Squats", "Smith machine", 10, 3},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 4},
		{"Reverse Lunges", "Dumbbells", 10, 3},
		{"Standing Calf Raises", "Machine", 12, 4},
		// modifier "· 2 dropsets" after the rep target
		{"Hanging Leg Raises", "Bodyweight", 12, 3},
	}
	for i, tt := range tests {
		ex := s1.Exercises[i]
		if ex.Number != i+1 || ex.Name != tt.name || ex.Equipment != tt.equipment || ex.TargetReps != tt.targetReps {
			t.Errorf("exercise %d = %d %q/%q/%d, want %q/%q/%d",
				i, ex.Number, ex.Name, ex.Equipment, ex.TargetReps, tt.name, tt.equipment, tt.targetReps)
		}
		if len(ex.Sets) != tt.sets {
			t.Errorf("%s sets = %d, want %d", tt.name, len(ex.Sets), tt.sets)
		}
	}

	s2 := sessions[1]
	if s2.Name != "Push · Day 1 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s2.Name = %q", s2.Name)
	}
	if s2.Duration != 72*time.Minute {
		t.Errorf("s2.Duration = %v, want 72m", s2.Duration)
	}
}

// TestParseSessionLocation verifies session times are read in the given zone.
func TestParseSessionLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	sessions, err := Parse(strings.NewReader(sampleCSV), berlin)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if want := time.Date(2026, 2, 19, 3, 54, 0, 0, time.UTC); !sessions[0].Start.Equal(want) {
		t.Errorf("start = %v, want %v", sessions[0].Start.UTC(), want)
	}
}

// TestParseOrphanSet verifies set rows before any exercise are rejected.
func TestParseOrphanSet(t *testing.T) {
	csv := "\"Push\";\"2026-02-17 5:04 h\";\"1:12 hr\"\n1;100;5;1\n"
	if _, err := Parse(strings.NewReader(csv), time.UTC); err == nil {
		t.Fatal("expected error for set without exercise")
	}
}

// TestParseDuration covers the duration formats seen in exports.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1:02 hr", 62 * time.Minute},
		{"0:45 hr", 45 * time.Minute},
		{"45 min", 45 * time.Minute},
		{"2:00 h", 2 * time.Hour},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestParseWeight verifies European decimals and the +N bodyweight notation.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		weight float64
		bw     bool
	}{
		{"102,5", 102.5, false},
		{"115", 115, false},
		{"+35", 35, true},
		{"+0", 0, true},
	}
	for _, tt := range tests {
		w, bw := parseWeight(tt.in)
		if w != tt.weight || bw != tt.bw {
			t.Errorf("parseWeight(%q) = (%v, %v), want (%v, %v)", tt.in, w, bw, tt.weight, tt.bw)
		}
	}
}

// TestFractionalRIR verifies that half-RIR values like "0,5" parse.
func TestFractionalRIR(t *testing.T) {
	if got := parseEuropeanFloat("0,5"); got != 0.5 {
		t.Errorf("parseEuropeanFloat(0,5) = %f, want 0.5", got)
	}
}

// TestWarmupParsing verifies warmup set extraction from the exercise header's second field.
func TestWarmupParsing(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · +0 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warmup sets = %d, want 2", len(sets))
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 || !sets[0].IsWarmup {
		t.Errorf("wu1 = %+v", sets[0])
	}
	if !sets[1].IsBodyweightPlus || sets[1].WeightKg != 0 {
		t.Errorf("wu2 = %+v, want bodyweight +0", sets[1])
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestToWorkouts verifies warmups are dropped and totals come from working sets.
func TestToWorkouts(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV), time.UTC)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ws := ToWorkouts(sessions)
	if len(ws) != 2 {
		t.Fatalf("workouts = %d, want 2", len(ws))
	}

	legs := ws[0]
	if legs.TotalSets != 17 {
		t.Errorf("legs sets = %d, want 17", legs.TotalSets)
	}
	// +35 counts as 35 kg and +0 sets add nothing.
	if math.Abs(legs.TotalVolume-10975) > 1e-9 {
		t.Errorf("legs volume = %v, want 10975", legs.TotalVolume)
	}
	if legs.Duration != 62 || !legs.EndTime.Equal(legs.StartTime.Add(62*time.Minute)) {
		t.Errorf("legs duration = %d, end = %v", legs.Duration, legs.EndTime)
	}
	if legs.Exercises[0].Category != "Machine" {
		t.Errorf("category = %q, want Machine", legs.Exercises[0].Category)
	}

	push := ws[1]
	if push.TotalSets != 3 || push.TotalVolume != 1830 {
		t.Errorf("push = %d sets / %v volume, want 3 / 1830", push.TotalSets, push.TotalVolume)
	}
	if legs.ID == push.ID || legs.ID == "" {
		t.Errorf("ids = %q, %q", legs.ID, push.ID)
	}
}

// TestWorkoutIDStable verifies re-parsing an export yields the same ids.
func TestWorkoutIDStable(t *testing.T) {
	a, _ := Parse(strings.NewReader(sampleCSV), time.UTC)
	b, _ := Parse(strings.NewReader(sampleCSV), time.UTC)
	for i := range a {
		if WorkoutID(a[i]) != WorkoutID(b[i]) {
			t.Errorf("session %d id changed between parses", i)
		}
	}
}

type fakeImporter struct {
	got []models.CompletedWorkout
}

func (f *fakeImporter) Import(_ context.Context, ws []models.CompletedWorkout) history.ImportResult {
	f.got = append(f.got, ws...)
	return history.ImportResult{Inserted: len(ws)}
}

// TestProviderIngest verifies the provider reports set counts and hands
// converted workouts to the store.
func TestProviderIngest(t *testing.T) {
	imp := &fakeImporter{}
	p := NewProvider(imp, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.SessionsReceived != 2 || res.WorkoutsInserted != 2 || res.WorkoutsSkipped != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.SetsReceived != 20 || res.WarmupsSkipped != 8 {
		t.Errorf("sets = %d, warmups = %d, want 20 and 8", res.SetsReceived, res.WarmupsSkipped)
	}
	if len(imp.got) != 2 {
		t.Errorf("imported %d workouts, want 2", len(imp.got))
	}
}
