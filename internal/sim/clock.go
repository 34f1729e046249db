package sim

// Clock is the server simulation clock in seconds.
type Clock struct {
	now      float64
	interval float64
}

// NewClock creates a clock that advances 1/tickRate seconds per tick.
func NewClock(tickRate int) *Clock {
	if tickRate <= 0 {
		tickRate = 64
	}
	return &Clock{interval: 1 / float64(tickRate)}
}

// CurrentTime implements host.GlobalVars.
func (c *Clock) CurrentTime() float64 {
	return c.now
}

// Interval returns the seconds between two ticks.
func (c *Clock) Interval() float64 {
	return c.interval
}

// Advance moves the clock forward by one tick.
func (c *Clock) Advance() float64 {
	c.now += c.interval
	return c.now
}

// Set jumps the clock to t.
func (c *Clock) Set(t float64) {
	c.now = t
}
