// Package notify delivers typed outbound messages (missing-tags, extra-tags,
// shipment-complete) with the attached monitor snapshot. Delivery is
// fire-and-forget from the monitor's perspective: the monitor publishes on
// the in-process bus and this package's service forwards asynchronously.
package notify

import (
	"context"
	"time"

	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
)

// Message is one outbound notification.
type Message struct {
	Kind       string             `json:"kind"`
	CycleID    string             `json:"cycle_id,omitempty"`
	ShipmentID string             `json:"shipment_id,omitempty"`
	Manifest   *manifest.Shipment `json:"manifest,omitempty"`
	TagIDs     []string           `json:"tag_ids,omitempty"`
	At         time.Time          `json:"at"`
}

// Notifier delivers messages to an outbound channel (NATS, log, ...).
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
	Close()
}
