// Package ingest holds what every import source reports back.
package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	WorkoutsInserted int `json:"workouts_inserted"`
	WorkoutsUpdated  int `json:"workouts_updated"`
	WorkoutsSkipped  int `json:"workouts_skipped"`

	SetsReceived   int `json:"sets_received"`
	WarmupsSkipped int `json:"warmups_skipped"`

	Message string `json:"message,omitempty"`
}
