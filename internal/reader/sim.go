package reader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
)

// ScriptedRead is one simulated radio report.
type ScriptedRead struct {
	After  time.Duration `yaml:"after"`
	TagIDs []string      `yaml:"tag_ids"`
}

// SimDriver is a simulated reader driver. It optionally replays a script of
// reads relative to Start, and accepts injected reads from the HTTP boundary.
type SimDriver struct {
	sink   Sink
	script []ScriptedRead

	mu      sync.Mutex
	active  bool
	resyncs int
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSimDriver creates a simulated driver feeding the given sink.
func NewSimDriver(sink Sink, script []ScriptedRead) *SimDriver {
	return &SimDriver{sink: sink, script: script}
}

// Start begins replaying the script (if any) and accepting injected reads.
func (d *SimDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return derrors.PreconditionViolation("reader already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.active = true

	go d.replay(runCtx, d.done)

	slog.Info("Simulated reader started", slog.Int("scripted_reads", len(d.script)))
	return nil
}

func (d *SimDriver) replay(ctx context.Context, done chan struct{}) {
	defer close(done)
	start := time.Now()
	for _, read := range d.script {
		wait := read.After - time.Since(start)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
		d.sink.MergeTags(read.TagIDs)
		slog.Debug("Scripted read delivered", logfields.TagCount(len(read.TagIDs)))
	}
}

// Stop halts the driver. Safe to call more than once.
func (d *SimDriver) Stop() error {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return nil
	}
	d.active = false
	cancel := d.cancel
	done := d.done
	d.mu.Unlock()

	cancel()
	<-done
	slog.Info("Simulated reader stopped")
	return nil
}

// IsActive reports whether the driver is running.
func (d *SimDriver) IsActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Resync is a no-op for the simulator; it only counts invocations so tests
// and diagnostics can observe hard resets.
func (d *SimDriver) Resync() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resyncs++
	slog.Info("Reader resync requested", slog.Int("total", d.resyncs))
}

// Resyncs returns how many times Resync was invoked.
func (d *SimDriver) Resyncs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resyncs
}

// Inject feeds a batch of tag identifiers as if decoded from a radio report.
// Rejected while the driver is stopped, matching real hardware.
func (d *SimDriver) Inject(tagIDs []string) error {
	d.mu.Lock()
	active := d.active
	d.mu.Unlock()
	if !active {
		return derrors.PreconditionViolation("reader driver is not active")
	}
	d.sink.MergeTags(tagIDs)
	return nil
}
