package programs

import (
	"testing"
	"time"
)

// TestBuiltinCatalog verifies the embedded templates parse and keep their order.
func TestBuiltinCatalog(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	list := c.List()
	if len(list) != 6 {
		t.Fatalf("len = %d, want 6", len(list))
	}
	if list[0].ID != "push-day" || list[5].ID != "hiit-cardio" {
		t.Errorf("order = %s..%s", list[0].ID, list[5].ID)
	}
	for _, p := range list {
		if len(p.Exercises) == 0 {
			t.Errorf("%s has no exercises", p.ID)
		}
	}
}

// TestGet verifies lookup by id.
func TestGet(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}
	p, ok := c.Get("leg-day")
	if !ok || p.Name != "Leg Day" || p.Difficulty != "Advanced" {
		t.Errorf("Get(leg-day) = %+v, %v", p, ok)
	}
	if _, ok := c.Get("arm-day"); ok {
		t.Error("Get(arm-day) should miss")
	}
}

// TestStartSession verifies a program becomes a session of empty exercises.
func TestStartSession(t *testing.T) {
	c, _ := Builtin()
	p, _ := c.Get("pull-day")
	now := time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC)

	s := p.StartSession(now)
	if !s.StartTime.Equal(now) {
		t.Errorf("StartTime = %v, want %v", s.StartTime, now)
	}
	if len(s.Exercises) != len(p.Exercises) {
		t.Fatalf("exercises = %d, want %d", len(s.Exercises), len(p.Exercises))
	}
	first := s.Exercises[0]
	if first.Name != "Pull-ups" || first.Muscle != "Lats" || len(first.Sets) != 0 {
		t.Errorf("first = %+v, want empty Pull-ups entry", first)
	}
}

// TestParseRejectsInvalid verifies catalog validation.
func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "programs:\n  - name: X\n    difficulty: Beginner\n    exercises:\n      - { name: A, sets: 1, reps: '5' }\n"},
		{"bad difficulty", "programs:\n  - id: x\n    name: X\n    difficulty: Insane\n    exercises:\n      - { name: A, sets: 1, reps: '5' }\n"},
		{"no exercises", "programs:\n  - id: x\n    name: X\n    difficulty: Beginner\n"},
		{"zero sets", "programs:\n  - id: x\n    name: X\n    difficulty: Beginner\n    exercises:\n      - { name: A, sets: 0, reps: '5' }\n"},
		{"duplicate", "programs:\n  - id: x\n    name: X\n    difficulty: Beginner\n    exercises:\n      - { name: A, sets: 1, reps: '5' }\n  - id: x\n    name: Y\n    difficulty: Beginner\n    exercises:\n      - { name: A, sets: 1, reps: '5' }\n"},
		{"not yaml", "programs: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
