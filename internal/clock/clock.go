// Package clock provides the frame-tick time source for graph execution.
package clock

import "sync"

// Clock converts a real frame delta into the pair of deltas the interpreter
// consumes: real elapsed seconds (used by gameplay-blocking cutscenes) and
// scaled elapsed seconds (used by background graphs, frozen while gameplay
// is paused).
type Clock struct {
	mu     sync.RWMutex
	scale  float64
	paused bool
}

func New() *Clock {
	return &Clock{scale: 1.0}
}

// SetScale sets the gameplay time scale. Values <= 0 freeze scaled time.
func (c *Clock) SetScale(scale float64) {
	c.mu.Lock()
	c.scale = scale
	c.mu.Unlock()
}

// Scale returns the current gameplay time scale.
func (c *Clock) Scale() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scale
}

// SetPaused freezes or resumes scaled time.
func (c *Clock) SetPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

// Step takes the real seconds elapsed since the previous frame and returns
// (real, scaled) deltas for this frame.
func (c *Clock) Step(realDt float64) (float64, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.paused || c.scale <= 0 {
		return realDt, 0
	}
	return realDt, realDt * c.scale
}
