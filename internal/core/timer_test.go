package core

import (
	"testing"
	"time"
)

func TestIntervalDue(t *testing.T) {
	now := time.Unix(0, 0)
	iv := NewInterval(time.Second)
	iv.now = func() time.Time { return now }

	if iv.Due() {
		t.Fatalf("interval should not fire before a period has passed")
	}
	now = now.Add(600 * time.Millisecond)
	if iv.Due() {
		t.Fatalf("interval fired early")
	}
	now = now.Add(600 * time.Millisecond)
	if !iv.Due() {
		t.Fatalf("interval should fire after a full period")
	}
	if iv.Due() {
		t.Fatalf("interval fired twice for one period")
	}
}

func TestFixedStepDueImmediately(t *testing.T) {
	fs := NewFixedStep(30)
	fs.now = func() time.Time { return time.Unix(5, 0) }
	if !fs.Due() {
		t.Fatalf("fixed step should fire on the first call")
	}
}
