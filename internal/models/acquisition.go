package models

import (
	"time"

	"climate/models"
)

// AcquisitionRequest asks the watcher to run one acquisition.
type AcquisitionRequest struct {
	Location string `json:"location"`
}

// TallySummary is the serialised form of a transfer batch outcome.
type TallySummary struct {
	Issued  int  `json:"issued"`
	Ok      int  `json:"ok"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped"`
}

// AcquisitionEvent is published after an acquisition completes.
type AcquisitionEvent struct {
	RunID       string             `json:"run_id"`
	Location    string             `json:"location"`
	Coordinates models.Coordinates `json:"coordinates"`
	Geohash     string             `json:"geohash"`
	Date        string             `json:"date"`
	Thermal     TallySummary       `json:"thermal"`
	Weather     TallySummary       `json:"weather"`
	Matched     int                `json:"matched"`
	ThermalErr  string             `json:"thermal_error,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}
