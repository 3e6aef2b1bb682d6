package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// legalEdges is the authoritative transition table. Every pair not listed
// here must be rejected.
var legalEdges = map[State][]State{
	StateIdle:             {StateIdle, StateTruckDeparting, StateMissingTags, StateInvalid},
	StateTruckDeparting:   {StateTruckDeparting, StateMissingTags, StateExtraTags, StateShipmentComplete, StateInvalid},
	StateMissingTags:      {StateIdle, StateInvalid},
	StateExtraTags:        {StateIdle, StateInvalid},
	StateShipmentComplete: {StateIdle, StateInvalid},
	StateInvalid:          {StateIdle},
}

func TestIsLegal_MatchesTableExactly(t *testing.T) {
	for _, from := range States() {
		allowed := map[State]bool{}
		for _, to := range legalEdges[from] {
			allowed[to] = true
		}
		for _, to := range States() {
			got := IsLegal(from, to)
			assert.Equal(t, allowed[to], got, "IsLegal(%s, %s)", from, to)
		}
	}
}

func TestIsLegal_SelfLoops(t *testing.T) {
	assert.True(t, IsLegal(StateIdle, StateIdle))
	assert.True(t, IsLegal(StateTruckDeparting, StateTruckDeparting))
	for _, s := range []State{StateMissingTags, StateExtraTags, StateShipmentComplete, StateInvalid} {
		assert.False(t, IsLegal(s, s), "self-loop for %s must be illegal", s)
	}
}

func TestIsLegal_UnknownStates(t *testing.T) {
	assert.False(t, IsLegal(State("bogus"), StateIdle))
	assert.False(t, IsLegal(StateIdle, State("bogus")))
}
