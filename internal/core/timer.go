package core

import "time"

// Interval reports when a fixed period has elapsed. The viewer uses it as a
// fixed-step tick source and search programs use it to time result flushes.
type Interval struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewInterval fires once every d.
func NewInterval(d time.Duration) *Interval {
	if d <= 0 {
		d = time.Second
	}
	return &Interval{step: d, now: time.Now}
}

// NewFixedStep fires tps times per second and is due immediately.
func NewFixedStep(tps int) *Interval {
	iv := NewInterval(time.Second)
	iv.SetTPS(tps)
	iv.accumulator = iv.step
	return iv
}

// SetTPS changes the rate to tps ticks per second.
func (i *Interval) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	i.step = time.Second / time.Duration(tps)
}

// Due reports whether another period has passed since the last true result.
func (i *Interval) Due() bool {
	now := i.now()
	if i.last.IsZero() {
		i.last = now
	}
	i.accumulator += now.Sub(i.last)
	i.last = now
	if i.accumulator >= i.step {
		i.accumulator -= i.step
		return true
	}
	return false
}
