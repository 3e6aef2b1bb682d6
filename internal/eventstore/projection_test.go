package eventstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkEvent(cycleID, eventType string, payload any, at time.Time) Event {
	data, _ := json.Marshal(payload)
	return &BaseEvent{
		EventCycleID:   cycleID,
		EventType:      eventType,
		EventTimestamp: at,
		EventPayload:   data,
	}
}

func TestProjection_FoldsCycleLifetime(t *testing.T) {
	p := NewCycleHistoryProjection(nil, 10)
	start := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	p.Apply(mkEvent("c1", TypeCycleStarted, CycleStartedPayload{
		ShipmentID:   "SHP-1",
		ExpectedTags: []string{"T1", "T2"},
		StartedAt:    start,
	}, start))
	p.Apply(mkEvent("c1", TypeStateChanged, StateChangedPayload{From: "idle", To: "truck_departing", TagCount: 0}, start.Add(time.Second)))
	p.Apply(mkEvent("c1", TypeStateChanged, StateChangedPayload{From: "truck_departing", To: "shipment_complete", TagCount: 2}, start.Add(30*time.Second)))
	p.Apply(mkEvent("c1", TypeNotification, NotificationPayload{Kind: "shipment_complete"}, start.Add(30*time.Second)))
	p.Apply(mkEvent("c1", TypeCycleClosed, CycleClosedPayload{Outcome: "complete", ClosedAt: start.Add(31 * time.Second), TagIDs: []string{"T1", "T2"}}, start.Add(31*time.Second)))

	s, ok := p.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "SHP-1", s.ShipmentID)
	assert.Equal(t, "closed", s.Status)
	assert.Equal(t, "complete", s.Outcome)
	assert.Equal(t, 2, s.ExpectedCount)
	assert.Equal(t, 2, s.ObservedCount)
	assert.Equal(t, []string{"idle->truck_departing", "truck_departing->shipment_complete"}, s.Transitions)
	assert.Equal(t, []string{"shipment_complete"}, s.Notifications)
	assert.InDelta(t, 31.0, s.Duration, 0.001)
}

func TestProjection_RecentNewestFirstAndBounded(t *testing.T) {
	p := NewCycleHistoryProjection(nil, 2)
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"c1", "c2", "c3"} {
		at := base.Add(time.Duration(i) * time.Minute)
		p.Apply(mkEvent(id, TypeCycleStarted, CycleStartedPayload{StartedAt: at}, at))
	}

	recent := p.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "c3", recent[0].CycleID)
	assert.Equal(t, "c2", recent[1].CycleID)

	// The evicted cycle is gone from the keyed view too.
	_, ok := p.Get("c1")
	assert.False(t, ok)
}

func TestProjection_RebuildFromStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	payload, _ := json.Marshal(CycleStartedPayload{ShipmentID: "SHP-9", StartedAt: time.Now()})
	require.NoError(t, store.Append(ctx, "c9", TypeCycleStarted, payload, nil))
	closed, _ := json.Marshal(CycleClosedPayload{Outcome: "missing_tags", ClosedAt: time.Now()})
	require.NoError(t, store.Append(ctx, "c9", TypeCycleClosed, closed, nil))

	p := NewCycleHistoryProjection(store, 10)
	require.NoError(t, p.Rebuild(ctx))

	s, ok := p.Get("c9")
	require.True(t, ok)
	assert.Equal(t, "SHP-9", s.ShipmentID)
	assert.Equal(t, "missing_tags", s.Outcome)
}
