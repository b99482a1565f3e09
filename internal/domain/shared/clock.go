package shared

// TickClock reports the current world tick. The engine runs once per tick, so
// anything that records "when" records a tick number rather than a wall time.
type TickClock interface {
	Tick() int
}

// ManualTickClock is advanced explicitly by whoever drives the tick loop
type ManualTickClock struct {
	CurrentTick int
}

// Tick returns the current tick
func (c *ManualTickClock) Tick() int {
	return c.CurrentTick
}

// Advance moves the clock forward by n ticks
func (c *ManualTickClock) Advance(n int) {
	c.CurrentTick += n
}

// SetTick sets the clock to a specific tick
func (c *ManualTickClock) SetTick(tick int) {
	c.CurrentTick = tick
}

// NewManualTickClock creates a clock starting at the given tick
func NewManualTickClock(start int) *ManualTickClock {
	return &ManualTickClock{CurrentTick: start}
}
