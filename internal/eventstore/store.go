package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving cycle events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, cycleID, eventType string, payload []byte, metadata map[string]string) error

	// GetByCycleID retrieves all events for a specific dispatch cycle.
	GetByCycleID(ctx context.Context, cycleID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Prune deletes events older than the cutoff and returns the number removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}
