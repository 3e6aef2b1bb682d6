package monitor

// Countdown is a decrementing clock with distinct reset and stop semantics.
// It holds values only; the ticking source lives in the monitor loop, which
// applies Tick through the same serialized queue as every other mutation.
//
// Invariant: Current <= Starting. Decrementing below zero is permitted (no
// floor) since the evaluator only checks the <= 0 boundary.
type Countdown struct {
	Starting int64
	Current  int64
	Running  bool
}

// Arm sets both values to starting and starts the countdown.
func (c *Countdown) Arm(starting int64) {
	c.Starting = starting
	c.Current = starting
	c.Running = true
}

// Reset cancels future decrements and restores Current to Starting.
func (c *Countdown) Reset() {
	c.Current = c.Starting
	c.Running = false
}

// Stop cancels future decrements without rearming.
func (c *Countdown) Stop() { c.Running = false }

// Clear zeroes the countdown entirely; used by resets that end a cycle.
func (c *Countdown) Clear() {
	c.Starting = 0
	c.Current = 0
	c.Running = false
}

// Tick applies one decrement if the countdown is running.
func (c *Countdown) Tick() {
	if c.Running {
		c.Current--
	}
}

// Expired reports whether the countdown has reached or passed zero.
func (c *Countdown) Expired() bool { return c.Current <= 0 }
