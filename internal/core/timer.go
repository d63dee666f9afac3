package core

// Clock advances simulated time in fixed increments.
type Clock struct {
	dt    float64
	now   float64
	steps int
}

// NewClock constructs a Clock starting at zero with the given step. A
// non-positive step falls back to 1.
func NewClock(dt float64) *Clock {
	if dt <= 0 {
		dt = 1
	}
	return &Clock{dt: dt}
}

// Dt returns the step length.
func (c *Clock) Dt() float64 { return c.dt }

// Now returns the current simulated time.
func (c *Clock) Now() float64 { return c.now }

// Steps returns how many ticks have elapsed.
func (c *Clock) Steps() int { return c.steps }

// Tick advances the clock by one step and returns the new time. Time is
// computed from the step count to avoid accumulating rounding error.
func (c *Clock) Tick() float64 {
	c.steps++
	c.now = float64(c.steps) * c.dt
	return c.now
}

// Reset rewinds the clock to zero.
func (c *Clock) Reset() {
	c.steps = 0
	c.now = 0
}
