package monitor

import (
	"time"

	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
	"git.home.luguber.info/inful/dispatchmon/internal/util/sets"
)

// Snapshot is a consistent copy of the shared monitor record, taken as a
// single unit by the owning goroutine. The evaluator, the status query
// boundary, and notification payloads all consume snapshots; none of them
// can observe a partially applied update.
type Snapshot struct {
	State      State
	CycleID    string
	Manifest   *manifest.Shipment
	Expected   sets.Set[string]
	TagIDs     sets.Set[string]
	Timer      Countdown
	CycleStart time.Time
	TakenAt    time.Time
}

// CycleActive reports whether a manifest is currently installed.
func (s Snapshot) CycleActive() bool { return s.Manifest != nil }

// ShipmentID returns the active manifest's shipment id, or "".
func (s Snapshot) ShipmentID() string {
	if s.Manifest == nil {
		return ""
	}
	return s.Manifest.ShipmentID
}
