// Package eventstore provides event sourcing primitives for dispatch cycle
// tracking: a durable append-only log plus an in-memory history projection.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	cycleStatusRunning = "running"
	cycleStatusClosed  = "closed"
)

// CycleSummary is a read model summarizing one dispatch cycle.
type CycleSummary struct {
	CycleID       string     `json:"cycle_id"`
	ShipmentID    string     `json:"shipment_id,omitempty"`
	Status        string     `json:"status"` // "running", "closed"
	Outcome       string     `json:"outcome,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	Duration      float64    `json:"duration_sec,omitempty"`
	ExpectedCount int        `json:"expected_count"`
	ObservedCount int        `json:"observed_count"`
	Transitions   []string   `json:"transitions,omitempty"`
	Notifications []string   `json:"notifications,omitempty"`
}

// CycleHistoryProjection maintains an in-memory view of cycle history,
// reconstructed from events stored in the event store.
type CycleHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	cycles  map[string]*CycleSummary
	history []*CycleSummary // ordered by start time, newest first
	maxSize int
}

// NewCycleHistoryProjection creates a new projection backed by the given store.
func NewCycleHistoryProjection(store Store, maxHistorySize int) *CycleHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &CycleHistoryProjection{
		store:   store,
		cycles:  make(map[string]*CycleSummary),
		history: make([]*CycleSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
// Typically called at startup.
func (p *CycleHistoryProjection) Rebuild(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	events, err := p.store.GetRange(ctx, time.Unix(0, 0), time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cycles = make(map[string]*CycleSummary)
	p.history = p.history[:0]
	p.mu.Unlock()

	for _, e := range events {
		p.Apply(e)
	}
	return nil
}

// Apply folds one event into the projection.
func (p *CycleHistoryProjection) Apply(e Event) {
	if e.CycleID() == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.cycles[e.CycleID()]
	if !ok {
		s = &CycleSummary{CycleID: e.CycleID(), Status: cycleStatusRunning, StartedAt: e.Timestamp()}
		p.cycles[e.CycleID()] = s
		p.insertLocked(s)
	}

	switch e.Type() {
	case TypeCycleStarted:
		var payload CycleStartedPayload
		if json.Unmarshal(e.Payload(), &payload) == nil {
			s.ShipmentID = payload.ShipmentID
			s.ExpectedCount = len(payload.ExpectedTags)
			if !payload.StartedAt.IsZero() {
				s.StartedAt = payload.StartedAt
			}
		}
	case TypeStateChanged:
		var payload StateChangedPayload
		if json.Unmarshal(e.Payload(), &payload) == nil {
			s.Transitions = append(s.Transitions, payload.From+"->"+payload.To)
			if payload.TagCount > s.ObservedCount {
				s.ObservedCount = payload.TagCount
			}
		}
	case TypeNotification:
		var payload NotificationPayload
		if json.Unmarshal(e.Payload(), &payload) == nil {
			s.Notifications = append(s.Notifications, payload.Kind)
		}
	case TypeCycleClosed:
		var payload CycleClosedPayload
		if json.Unmarshal(e.Payload(), &payload) == nil {
			s.Status = cycleStatusClosed
			s.Outcome = payload.Outcome
			closed := payload.ClosedAt
			if closed.IsZero() {
				closed = e.Timestamp()
			}
			s.ClosedAt = &closed
			s.Duration = closed.Sub(s.StartedAt).Seconds()
			if len(payload.TagIDs) > s.ObservedCount {
				s.ObservedCount = len(payload.TagIDs)
			}
		}
	}
}

// insertLocked places a summary into the bounded, newest-first history.
func (p *CycleHistoryProjection) insertLocked(s *CycleSummary) {
	p.history = append(p.history, s)
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		for _, old := range p.history[p.maxSize:] {
			delete(p.cycles, old.CycleID)
		}
		p.history = p.history[:p.maxSize]
	}
}

// Recent returns up to n cycle summaries, newest first.
func (p *CycleHistoryProjection) Recent(n int) []CycleSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if n <= 0 || n > len(p.history) {
		n = len(p.history)
	}
	out := make([]CycleSummary, 0, n)
	for _, s := range p.history[:n] {
		out = append(out, *s)
	}
	return out
}

// Get returns the summary for one cycle, if known.
func (p *CycleHistoryProjection) Get(cycleID string) (CycleSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.cycles[cycleID]
	if !ok {
		return CycleSummary{}, false
	}
	return *s, true
}
