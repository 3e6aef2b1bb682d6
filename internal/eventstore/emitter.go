package eventstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/events"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
)

// Emitter bridges the in-process event bus to the durable cycle log: it
// subscribes to monitor events, persists them, and keeps the history
// projection current. The monitor itself never blocks on persistence.
type Emitter struct {
	store      Store
	projection *CycleHistoryProjection
	bus        *events.Bus
}

// NewEmitter creates an emitter. store and projection may be shared with the
// HTTP history handler.
func NewEmitter(store Store, projection *CycleHistoryProjection, bus *events.Bus) *Emitter {
	return &Emitter{store: store, projection: projection, bus: bus}
}

// Run consumes bus events until ctx is canceled.
func (e *Emitter) Run(ctx context.Context) error {
	startedCh, unsubStarted := events.Subscribe[events.CycleStarted](e.bus, 64)
	defer unsubStarted()
	changedCh, unsubChanged := events.Subscribe[events.StateChanged](e.bus, 64)
	defer unsubChanged()
	notifCh, unsubNotif := events.Subscribe[events.NotificationRequested](e.bus, 64)
	defer unsubNotif()
	closedCh, unsubClosed := events.Subscribe[events.CycleClosed](e.bus, 64)
	defer unsubClosed()
	illegalCh, unsubIllegal := events.Subscribe[events.IllegalTransitionDetected](e.bus, 64)
	defer unsubIllegal()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-startedCh:
			if !ok {
				return nil
			}
			e.persist(ctx, evt.CycleID, TypeCycleStarted, CycleStartedPayload{
				ShipmentID:   evt.ShipmentID,
				OrderCount:   len(evt.Manifest.Orders),
				ExpectedTags: evt.ExpectedTags,
				LeadTimeSec:  int64(evt.LeadTime / time.Second),
				StartedAt:    evt.StartedAt,
			})
		case evt, ok := <-changedCh:
			if !ok {
				return nil
			}
			e.persist(ctx, evt.CycleID, TypeStateChanged, StateChangedPayload{
				From:      evt.From,
				To:        evt.To,
				TagCount:  evt.TagCount,
				Remaining: evt.Remaining,
				At:        evt.At,
			})
		case evt, ok := <-notifCh:
			if !ok {
				return nil
			}
			e.persist(ctx, evt.CycleID, TypeNotification, NotificationPayload{
				Kind:       evt.Kind,
				ShipmentID: evt.ShipmentID,
				TagIDs:     evt.TagIDs,
			})
		case evt, ok := <-closedCh:
			if !ok {
				return nil
			}
			e.persist(ctx, evt.CycleID, TypeCycleClosed, CycleClosedPayload{
				ShipmentID: evt.ShipmentID,
				Outcome:    evt.Outcome,
				TagIDs:     evt.TagIDs,
				ClosedAt:   evt.ClosedAt,
			})
		case evt, ok := <-illegalCh:
			if !ok {
				return nil
			}
			e.persist(ctx, evt.CycleID, TypeIllegalChange, IllegalTransitionPayload{
				From: evt.From,
				To:   evt.To,
				At:   evt.At,
			})
		}
	}
}

// persist appends the event and folds it into the projection. Events without
// a cycle id (stray-tag recoveries) are projection-only noise and are skipped.
func (e *Emitter) persist(ctx context.Context, cycleID, eventType string, payload any) {
	if cycleID == "" {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Marshal cycle event failed", logfields.Error(err))
		return
	}

	if e.store != nil {
		if err := e.store.Append(ctx, cycleID, eventType, data, nil); err != nil {
			slog.Warn("Append cycle event failed",
				logfields.CycleID(cycleID),
				logfields.Error(derrors.EventStoreError("append", err)))
		}
	}
	if e.projection != nil {
		e.projection.Apply(&BaseEvent{
			EventCycleID:   cycleID,
			EventType:      eventType,
			EventTimestamp: time.Now(),
			EventPayload:   data,
		})
	}
}
