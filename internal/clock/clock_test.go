package clock

import "testing"

func TestStepDefaultScale(t *testing.T) {
	c := New()
	real, scaled := c.Step(0.5)
	if real != 0.5 || scaled != 0.5 {
		t.Errorf("expected (0.5, 0.5), got (%v, %v)", real, scaled)
	}
}

func TestStepScaledTime(t *testing.T) {
	c := New()
	c.SetScale(2.0)
	real, scaled := c.Step(1.0)
	if real != 1.0 {
		t.Errorf("real time must not scale, got %v", real)
	}
	if scaled != 2.0 {
		t.Errorf("expected scaled 2.0, got %v", scaled)
	}
}

func TestStepPausedFreezesScaledTime(t *testing.T) {
	c := New()
	c.SetPaused(true)
	real, scaled := c.Step(1.0)
	if real != 1.0 {
		t.Errorf("real time must keep flowing while paused, got %v", real)
	}
	if scaled != 0 {
		t.Errorf("scaled time must freeze while paused, got %v", scaled)
	}

	c.SetPaused(false)
	if _, scaled := c.Step(1.0); scaled != 1.0 {
		t.Errorf("expected scaled time restored, got %v", scaled)
	}
}

func TestZeroScaleFreezesScaledTime(t *testing.T) {
	c := New()
	c.SetScale(0)
	if _, scaled := c.Step(1.0); scaled != 0 {
		t.Errorf("zero scale should freeze scaled time, got %v", scaled)
	}
}
