package clock

// Countdown is the locally ticking seconds-remaining value shown to the player.
//
// Strategy: the server sends time remaining, the client counts down on its own,
// the server's timeout stays authoritative. A zero value means "unset".
// Countdown is display only and must never gate a turn submission.
type Countdown struct {
	remaining int
}

// Remaining returns the seconds left, 0 when unset or expired.
func (c Countdown) Remaining() int {
	return c.remaining
}

// IsSet reports whether a non-zero value is being counted down.
func (c Countdown) IsSet() bool {
	return c.remaining > 0
}

// Sync overwrites the countdown with a server value. Zero or negative values
// are treated as "no update" so a spurious zero never clobbers a running clock.
func (c *Countdown) Sync(seconds int) bool {
	if seconds <= 0 {
		return false
	}
	c.remaining = seconds
	return true
}

// SeedIfUnset starts the countdown from seconds only if nothing is running.
func (c *Countdown) SeedIfUnset(seconds int) bool {
	if c.IsSet() {
		return false
	}
	return c.Sync(seconds)
}

// Tick decrements by one second, stopping at zero.
func (c *Countdown) Tick() bool {
	if c.remaining <= 0 {
		return false
	}
	c.remaining--
	return true
}

// Reset clears the countdown.
func (c *Countdown) Reset() {
	c.remaining = 0
}
