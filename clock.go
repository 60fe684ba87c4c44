package sharpinspect

import (
	"time"

	"github.com/sharpinspect/sharpinspect/internal/clock"
)

// Clock abstracts time so embedders can inject a deterministic clock in
// tests that exercise SharpInspect end-to-end (spec.md §2).
type Clock = clock.Clock

// NewFixedClock returns a Clock that always reports t until its Advance
// method is called, for embedders writing deterministic tests against a
// live Controller.
func NewFixedClock(t time.Time) *clock.Fixed { return clock.NewFixed(t) }
