// Package engine implements the real-time typing measurement core: session
// state, metrics, per-mode correctness policy, anti-cheat heuristics, and
// content streaming. The engine never reads the wall clock itself; every
// event carries its own timestamp, so replaying an event sequence is
// deterministic.
package engine

import "time"

const (
	// DefaultMetricsEvery bounds how often metrics are recomputed,
	// independent of the host tick frequency.
	DefaultMetricsEvery = 80 * time.Millisecond
	// DefaultSampleEvery is the cadence of net-WPM samples used for the
	// consistency score.
	DefaultSampleEvery = 500 * time.Millisecond
)

// Clock tracks elapsed session time from a monotonic start point and gates
// the coarse sub-cadences (metrics recomputation, WPM sampling).
type Clock struct {
	metricsEvery time.Duration
	sampleEvery  time.Duration

	startedAt     time.Time
	started       bool
	lastMetricsAt time.Time
	lastSampleAt  time.Time
}

// NewClock returns a Clock with the given cadences. Non-positive values fall
// back to the defaults.
func NewClock(metricsEvery, sampleEvery time.Duration) *Clock {
	if metricsEvery <= 0 {
		metricsEvery = DefaultMetricsEvery
	}
	if sampleEvery <= 0 {
		sampleEvery = DefaultSampleEvery
	}
	return &Clock{metricsEvery: metricsEvery, sampleEvery: sampleEvery}
}

// Start records the session start. Subsequent calls are ignored; the start
// point is immutable once set.
func (c *Clock) Start(at time.Time) {
	if c.started {
		return
	}
	c.started = true
	c.startedAt = at
	c.lastMetricsAt = at
	c.lastSampleAt = at
}

// Started reports whether Start has been called since the last Reset.
func (c *Clock) Started() bool { return c.started }

// StartedAt returns the recorded start time, zero if not started.
func (c *Clock) StartedAt() time.Time { return c.startedAt }

// Elapsed returns the time since Start, never negative.
func (c *Clock) Elapsed(at time.Time) time.Duration {
	if !c.started {
		return 0
	}
	d := at.Sub(c.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Expired reports whether the configured time limit has been reached.
// A non-positive limit means the session is unbounded.
func (c *Clock) Expired(at time.Time, limit time.Duration) bool {
	if limit <= 0 || !c.started {
		return false
	}
	return c.Elapsed(at) >= limit
}

// MetricsDue reports whether a metrics recomputation is due at the given
// instant and, if so, advances the gate.
func (c *Clock) MetricsDue(at time.Time) bool {
	if !c.started || at.Sub(c.lastMetricsAt) < c.metricsEvery {
		return false
	}
	c.lastMetricsAt = at
	return true
}

// SampleDue reports whether a net-WPM sample is due at the given instant
// and, if so, advances the gate.
func (c *Clock) SampleDue(at time.Time) bool {
	if !c.started || at.Sub(c.lastSampleAt) < c.sampleEvery {
		return false
	}
	c.lastSampleAt = at
	return true
}

// Reset clears the start point and both cadence gates.
func (c *Clock) Reset() {
	c.started = false
	c.startedAt = time.Time{}
	c.lastMetricsAt = time.Time{}
	c.lastSampleAt = time.Time{}
}
