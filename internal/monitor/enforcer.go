package monitor

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/dispatchmon/internal/events"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
	"git.home.luguber.info/inful/dispatchmon/internal/util/sets"
)

// decide runs one enforcer pass: snapshot, evaluate, legality-check, then
// either hard-reset or commit-and-act. Runs on the owning goroutine.
//
// Terminal states have no self-loop in the graph. MissingTags soft-resets as
// part of its own action, so it is never re-evaluated. ShipmentComplete and
// ExtraTags rest in place until their cause goes away; if the evaluator
// produces the same terminal state again on the next pass, the legality check
// fails and the hard reset routes the machine back to Idle. That repeat-is-
// illegal recovery is the deliberate answer to the graph's missing self-loops.
func (m *Monitor) decide() {
	snap := m.snapshot()
	next := Evaluate(snap)
	cur := m.st.state

	if !IsLegal(cur, next) {
		m.hardReset(cur, next, snap)
		return
	}
	if next == cur {
		return
	}

	m.commit(next)

	switch next {
	case StateMissingTags:
		m.publish(events.NotificationRequested{
			Kind:       events.KindMissingTags,
			CycleID:    snap.CycleID,
			ShipmentID: snap.ShipmentID(),
			Manifest:   snap.Manifest,
			TagIDs:     snap.TagIDs.Values(),
			At:         time.Now(),
		})
		m.recorder.IncNotification(events.KindMissingTags)
		m.softReset(OutcomeMissingTags)
	case StateExtraTags:
		// No auto-reset: the machine rests here until the unexplained tags
		// are dealt with and an Idle reset intervenes.
		m.publish(events.NotificationRequested{
			Kind:       events.KindExtraTags,
			CycleID:    snap.CycleID,
			ShipmentID: snap.ShipmentID(),
			TagIDs:     snap.TagIDs.Values(),
			At:         time.Now(),
		})
		m.recorder.IncNotification(events.KindExtraTags)
	case StateShipmentComplete:
		m.publish(events.NotificationRequested{
			Kind:       events.KindShipmentComplete,
			CycleID:    snap.CycleID,
			ShipmentID: snap.ShipmentID(),
			Manifest:   snap.Manifest,
			TagIDs:     snap.TagIDs.Values(),
			At:         time.Now(),
		})
		m.recorder.IncNotification(events.KindShipmentComplete)
	case StateIdle, StateTruckDeparting:
		// Normal movement, no edge action.
	default:
		slog.Warn("No action bound to transition",
			logfields.FromState(string(cur)),
			logfields.ToState(string(next)))
	}
}

// commit moves current-state to next and records the edge.
func (m *Monitor) commit(next State) {
	from := m.st.state
	m.st.state = next
	m.recorder.IncTransition(string(from), string(next))
	m.recorder.SetCurrentState(string(next))

	slog.Info("State transition",
		logfields.CycleID(m.st.cycleID),
		logfields.FromState(string(from)),
		logfields.ToState(string(next)),
		logfields.TagCount(m.st.tags.Len()),
		logfields.Remaining(m.st.timer.Current))

	m.publish(events.StateChanged{
		CycleID:    m.st.cycleID,
		ShipmentID: m.shipmentID(),
		From:       string(from),
		To:         string(next),
		TagCount:   m.st.tags.Len(),
		Remaining:  m.st.timer.Current,
		At:         time.Now(),
	})
}

// softReset records the closing edge and closes the cycle while its identity
// is still in place, then clears the record back to Idle. The physical reader
// is not touched.
func (m *Monitor) softReset(outcome string) {
	if m.st.state != StateIdle {
		m.commit(StateIdle)
	}
	m.closeCycle(outcome)
	m.st.manifest = nil
	m.st.expected = nil
	m.st.tags = sets.New[string]()
	m.st.timer.Clear()
	m.st.cycleStart = time.Time{}
	m.st.cycleID = ""
}

// hardReset is the recovery action for protocol violations: a soft reset plus
// a re-synchronization signal to the reader driver. No action handler runs.
func (m *Monitor) hardReset(from, attempted State, snap Snapshot) {
	// A repeated ShipmentComplete evaluation is the designed way a successful
	// cycle leaves its terminal state (the graph has no self-loop there). It
	// rides the recovery path but is not a protocol violation: the cycle
	// closes as complete and nothing is logged or counted as illegal.
	if from == StateShipmentComplete && attempted == StateShipmentComplete {
		slog.Info("Shipment complete, recovering to idle",
			logfields.CycleID(m.st.cycleID),
			logfields.ShipmentID(m.shipmentID()))
		m.softReset(OutcomeComplete)
		if m.reader != nil {
			m.reader.Resync()
		}
		return
	}

	slog.Error("Illegal transition, performing hard reset",
		logfields.CycleID(m.st.cycleID),
		logfields.FromState(string(from)),
		logfields.ToState(string(attempted)))

	m.recorder.IncIllegalTransition(string(from), string(attempted))
	m.publish(events.IllegalTransitionDetected{
		CycleID: snap.CycleID,
		From:    string(from),
		To:      string(attempted),
		At:      time.Now(),
	})
	m.softReset(OutcomeHardReset)

	if m.reader != nil {
		m.reader.Resync()
	}
}

// closeCycle emits CycleClosed and cycle metrics if a cycle was active.
func (m *Monitor) closeCycle(outcome string) {
	if m.st.cycleID == "" {
		// ExtraTags recovery has no cycle; still count the hard reset.
		if outcome == OutcomeHardReset {
			m.recorder.IncCycleOutcome(outcome)
		}
		return
	}
	duration := time.Since(m.st.cycleStart)
	m.recorder.IncCycleOutcome(outcome)
	m.recorder.ObserveCycleDuration(outcome, duration)

	slog.Info("Dispatch cycle closed",
		logfields.CycleID(m.st.cycleID),
		logfields.ShipmentID(m.shipmentID()),
		slog.String("outcome", outcome),
		slog.Duration("duration", duration))

	m.publish(events.CycleClosed{
		CycleID:    m.st.cycleID,
		ShipmentID: m.shipmentID(),
		Outcome:    outcome,
		TagIDs:     m.st.tags.Values(),
		ClosedAt:   time.Now(),
	})
}

func (m *Monitor) shipmentID() string {
	if m.st.manifest == nil {
		return ""
	}
	return m.st.manifest.ShipmentID
}
