package models

import "time"

// NewSession starts an empty session at start.
func NewSession(start time.Time) *Session {
	return &Session{StartTime: start}
}

// AddExercise appends an exercise with no sets and returns its index.
func (s *Session) AddExercise(name, category, muscle string) int {
	s.Exercises = append(s.Exercises, ExerciseEntry{Name: name, Category: category, Muscle: muscle})
	return len(s.Exercises) - 1
}
