package eventstore

import "time"

// Event type names persisted in the cycle log.
const (
	TypeCycleStarted  = "cycle_started"
	TypeStateChanged  = "state_changed"
	TypeNotification  = "notification_enqueued"
	TypeCycleClosed   = "cycle_closed"
	TypeIllegalChange = "illegal_transition"
)

// CycleStartedPayload records manifest installation.
type CycleStartedPayload struct {
	ShipmentID   string    `json:"shipment_id"`
	OrderCount   int       `json:"order_count"`
	ExpectedTags []string  `json:"expected_tags"`
	LeadTimeSec  int64     `json:"lead_time_sec"`
	StartedAt    time.Time `json:"started_at"`
}

// StateChangedPayload records one committed transition.
type StateChangedPayload struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	TagCount  int       `json:"tag_count"`
	Remaining int64     `json:"remaining"`
	At        time.Time `json:"at"`
}

// NotificationPayload records an outbound notification request.
type NotificationPayload struct {
	Kind       string   `json:"kind"`
	ShipmentID string   `json:"shipment_id,omitempty"`
	TagIDs     []string `json:"tag_ids,omitempty"`
}

// CycleClosedPayload records the end of a cycle.
type CycleClosedPayload struct {
	ShipmentID string    `json:"shipment_id,omitempty"`
	Outcome    string    `json:"outcome"`
	TagIDs     []string  `json:"tag_ids,omitempty"`
	ClosedAt   time.Time `json:"closed_at"`
}

// IllegalTransitionPayload records a protocol violation recovered by hard reset.
type IllegalTransitionPayload struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
}
