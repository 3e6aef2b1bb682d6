// Package monitor implements the shipment dispatch monitor: a six-state
// machine over {manifest, tag-read-set, countdown timer} driven by a periodic
// decision loop. All mutable state is owned by a single goroutine; intake,
// ingestion, timer ticks, decision ticks, and status queries are serialized
// through one command queue so no reader can ever observe a torn multi-field
// update.
package monitor

// State is the monitor's current position in the dispatch state machine.
type State string

const (
	// StateIdle means no cycle is active and no unexplained tags were seen.
	StateIdle State = "idle"
	// StateTruckDeparting means a manifest is installed and the countdown is
	// running; the read set does not yet match the expected set.
	StateTruckDeparting State = "truck_departing"
	// StateMissingTags means the countdown expired before the read set
	// matched the manifest.
	StateMissingTags State = "missing_tags"
	// StateExtraTags means tags were observed with no active cycle to
	// explain them.
	StateExtraTags State = "extra_tags"
	// StateShipmentComplete means the read set exactly matched the expected
	// set before the countdown expired.
	StateShipmentComplete State = "shipment_complete"
	// StateInvalid marks a protocol violation detected by the enforcer.
	StateInvalid State = "invalid"
)

// States lists all members of the enumeration.
func States() []State {
	return []State{
		StateIdle,
		StateTruckDeparting,
		StateMissingTags,
		StateExtraTags,
		StateShipmentComplete,
		StateInvalid,
	}
}
