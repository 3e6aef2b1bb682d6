// Package reader defines the reader driver boundary: the component that
// decodes radio reports into tag identifiers and feeds them to the monitor's
// ingestion sink. The physical protocol is out of scope; SimDriver stands in
// for a real driver in demos and tests.
package reader

import "context"

// Sink receives decoded tag-identifier batches. Implemented by the monitor.
type Sink interface {
	MergeTags(tagIDs []string)
}

// Driver is the reader driver contract consumed by the daemon and, for the
// IsActive/Resync slice, by the monitor.
type Driver interface {
	// Start begins decoding and feeding the sink; returns once running.
	Start(ctx context.Context) error
	// Stop halts decoding. Safe to call more than once.
	Stop() error
	// IsActive reports whether the driver is currently decoding. Consumed
	// by manifest intake's precondition.
	IsActive() bool
	// Resync asks the hardware to re-synchronize after a protocol
	// violation. Best effort.
	Resync()
}
