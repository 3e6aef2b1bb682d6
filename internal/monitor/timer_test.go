package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdown_ArmAndTick(t *testing.T) {
	var c Countdown
	c.Arm(3)
	assert.Equal(t, int64(3), c.Starting)
	assert.Equal(t, int64(3), c.Current)
	assert.True(t, c.Running)
	assert.False(t, c.Expired())

	c.Tick()
	c.Tick()
	assert.Equal(t, int64(1), c.Current)
	c.Tick()
	assert.True(t, c.Expired())
}

func TestCountdown_DecrementsBelowZero(t *testing.T) {
	var c Countdown
	c.Arm(1)
	c.Tick()
	c.Tick()
	c.Tick()
	// No floor: negative values simply denote "timed out".
	assert.Equal(t, int64(-2), c.Current)
	assert.True(t, c.Expired())
}

func TestCountdown_ResetRearmsAndStops(t *testing.T) {
	var c Countdown
	c.Arm(5)
	c.Tick()
	c.Reset()
	assert.Equal(t, int64(5), c.Current)
	assert.False(t, c.Running)

	// Stopped countdowns ignore ticks.
	c.Tick()
	assert.Equal(t, int64(5), c.Current)
}

func TestCountdown_StopDoesNotRearm(t *testing.T) {
	var c Countdown
	c.Arm(5)
	c.Tick()
	c.Stop()
	assert.Equal(t, int64(4), c.Current)
	assert.False(t, c.Running)
}

func TestCountdown_Clear(t *testing.T) {
	var c Countdown
	c.Arm(7)
	c.Clear()
	assert.Equal(t, int64(0), c.Starting)
	assert.Equal(t, int64(0), c.Current)
	assert.False(t, c.Running)
	assert.True(t, c.Expired())
}
