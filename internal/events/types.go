package events

import (
	"time"

	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
)

// Notification kinds carried by NotificationRequested.
const (
	KindMissingTags      = "missing_tags"
	KindExtraTags        = "extra_tags"
	KindShipmentComplete = "shipment_complete"
)

// CycleStarted is emitted when a manifest is installed and a dispatch cycle
// begins. Durable consumers persist it to internal/eventstore.
type CycleStarted struct {
	CycleID      string
	ShipmentID   string
	Manifest     *manifest.Shipment
	ExpectedTags []string
	LeadTime     time.Duration
	StartedAt    time.Time
}

// StateChanged is emitted on every committed state transition of the monitor.
type StateChanged struct {
	CycleID    string
	ShipmentID string
	From       string
	To         string
	TagCount   int
	Remaining  int64
	At         time.Time
}

// NotificationRequested asks the outbound notification collaborator to
// deliver a typed message. Delivery is fire-and-forget from the monitor's
// perspective; the attached snapshot is immutable.
type NotificationRequested struct {
	Kind       string
	CycleID    string
	ShipmentID string
	Manifest   *manifest.Shipment
	TagIDs     []string
	At         time.Time
}

// CycleClosed is emitted when a cycle returns to idle, whatever the outcome.
// Outcome is one of "complete", "missing_tags", "hard_reset".
type CycleClosed struct {
	CycleID    string
	ShipmentID string
	Outcome    string
	TagIDs     []string
	ClosedAt   time.Time
}

// IllegalTransitionDetected is emitted when the enforcer computes a target
// state that is not reachable from the current state and performs a hard
// reset. Diagnostic; also counted by metrics.
type IllegalTransitionDetected struct {
	CycleID string
	From    string
	To      string
	At      time.Time
}
