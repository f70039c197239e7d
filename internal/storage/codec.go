package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/claude/setsreps/internal/models"
)

// snapshotVersion is written into every encoded snapshot.
const snapshotVersion = 1

type snapshot struct {
	Version  int                       `json:"version"`
	Workouts []models.CompletedWorkout `json:"workouts"`
}

// EncodeHistory serializes workouts into a versioned snapshot.
func EncodeHistory(workouts []models.CompletedWorkout) ([]byte, error) {
	if workouts == nil {
		workouts = []models.CompletedWorkout{}
	}
	data, err := json.Marshal(snapshot{Version: snapshotVersion, Workouts: workouts})
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	return data, nil
}

// DecodeHistory parses a snapshot. A bare JSON array of workouts, as written
// by the mobile client, is accepted too. Empty input decodes to no workouts.
func DecodeHistory(data []byte) ([]models.CompletedWorkout, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var ws []models.CompletedWorkout
		if err := json.Unmarshal(data, &ws); err != nil {
			return nil, fmt.Errorf("decoding history array: %w", err)
		}
		return ws, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported history version %d", snap.Version)
	}
	return snap.Workouts, nil
}
