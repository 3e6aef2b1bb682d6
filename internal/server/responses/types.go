// Package responses defines API response types used by dispatchmon HTTP handlers.
package responses

import "time"

// IntakeResponse acknowledges an accepted manifest.
type IntakeResponse struct {
	Status        string    `json:"status"`
	ShipmentID    string    `json:"shipment_id"`
	CycleID       string    `json:"cycle_id,omitempty"`
	ExpectedCount int       `json:"expected_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReadsResponse acknowledges an accepted tag read batch.
type ReadsResponse struct {
	Status    string    `json:"status"`
	Accepted  int       `json:"accepted"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse is the live monitor status view.
type StatusResponse struct {
	State          string   `json:"state"`
	CycleID        string   `json:"cycle_id,omitempty"`
	ShipmentID     string   `json:"shipment_id,omitempty"`
	CycleActive    bool     `json:"cycle_active"`
	ExpectedCount  int      `json:"expected_count"`
	ObservedCount  int      `json:"observed_count"`
	MissingTags    []string `json:"missing_tags,omitempty"`
	ExtraTags      []string `json:"extra_tags,omitempty"`
	TimerRunning   bool     `json:"timer_running"`
	TimerRemaining int64    `json:"timer_remaining"`
	CycleStart     *string  `json:"cycle_start,omitempty"`
	Timestamp      string   `json:"timestamp"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
	Uptime       float64   `json:"uptime"`
	DaemonStatus string    `json:"daemon_status,omitempty"`
	ReaderActive bool      `json:"reader_active"`
}
