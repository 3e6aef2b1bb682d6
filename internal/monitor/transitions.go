package monitor

import "git.home.luguber.info/inful/dispatchmon/internal/util/sets"

// transitionGraph maps each state to the set of states it may legally move
// to. Self-loops exist only for Idle and TruckDeparting: the terminal states
// must pass through a reset before they can be produced again, so reaching
// one of them twice without an intervening neutral state is a protocol
// violation and forces recovery.
var transitionGraph = map[State]sets.Set[State]{
	StateIdle:             sets.New(StateIdle, StateTruckDeparting, StateMissingTags, StateInvalid),
	StateTruckDeparting:   sets.New(StateTruckDeparting, StateMissingTags, StateExtraTags, StateShipmentComplete, StateInvalid),
	StateMissingTags:      sets.New(StateIdle, StateInvalid),
	StateExtraTags:        sets.New(StateIdle, StateInvalid),
	StateShipmentComplete: sets.New(StateIdle, StateInvalid),
	StateInvalid:          sets.New(StateIdle),
}

// IsLegal reports whether the machine may move from one state to another.
// Unknown states have no successors.
func IsLegal(from, to State) bool {
	allowed, ok := transitionGraph[from]
	if !ok {
		return false
	}
	return allowed.Has(to)
}
