package engine

import (
	"fmt"
	"time"
)

// AntiCheatConfig holds the tunable thresholds for non-human input
// detection. All values are configuration so deployments can retune them
// without code changes.
type AntiCheatConfig struct {
	// MinInterval is the shortest humanly sustainable gap between two
	// accepted keystrokes. Faster arrivals count as suspicious.
	MinInterval time.Duration
	// IntervalWindow is how many recent inter-keystroke intervals are
	// retained for analysis.
	IntervalWindow int
	// MaxSuspicious is the suspicious-event count at which a one-time
	// warning is raised.
	MaxSuspicious int
	// MaxCharsPerSecond is the whole-session throughput bound checked at
	// session end (25 chars/s is roughly 300 WPM).
	MaxCharsPerSecond float64
	// MinTestDuration is the shortest session considered statistically
	// meaningful.
	MinTestDuration time.Duration
}

// DefaultAntiCheatConfig returns the standard thresholds.
func DefaultAntiCheatConfig() AntiCheatConfig {
	return AntiCheatConfig{
		MinInterval:       20 * time.Millisecond,
		IntervalWindow:    20,
		MaxSuspicious:     10,
		MaxCharsPerSecond: 25,
		MinTestDuration:   3000 * time.Millisecond,
	}
}

func (c AntiCheatConfig) withDefaults() AntiCheatConfig {
	d := DefaultAntiCheatConfig()
	if c.MinInterval <= 0 {
		c.MinInterval = d.MinInterval
	}
	if c.IntervalWindow <= 0 {
		c.IntervalWindow = d.IntervalWindow
	}
	if c.MaxSuspicious <= 0 {
		c.MaxSuspicious = d.MaxSuspicious
	}
	if c.MaxCharsPerSecond <= 0 {
		c.MaxCharsPerSecond = d.MaxCharsPerSecond
	}
	if c.MinTestDuration <= 0 {
		c.MinTestDuration = d.MinTestDuration
	}
	return c
}

// AntiCheat inspects inter-keystroke timing and whole-session throughput to
// flag statistically implausible input. Detection never blocks typing; it
// only affects the final flagged status.
type AntiCheat struct {
	cfg        AntiCheatConfig
	lastKeyAt  time.Time
	hasLastKey bool
	intervals  []time.Duration
	suspicious int
	warned     bool
}

// NewAntiCheat returns a monitor using cfg, filling zero fields with
// defaults.
func NewAntiCheat(cfg AntiCheatConfig) *AntiCheat {
	return &AntiCheat{cfg: cfg.withDefaults()}
}

// RecordKeystroke observes one accepted keystroke. It returns true exactly
// once, when the suspicious-event counter first reaches the warning
// threshold.
func (a *AntiCheat) RecordKeystroke(at time.Time) bool {
	if !a.hasLastKey {
		a.hasLastKey = true
		a.lastKeyAt = at
		return false
	}
	dt := at.Sub(a.lastKeyAt)
	a.lastKeyAt = at

	a.intervals = append(a.intervals, dt)
	if len(a.intervals) > a.cfg.IntervalWindow {
		a.intervals = a.intervals[len(a.intervals)-a.cfg.IntervalWindow:]
	}
	if dt < a.cfg.MinInterval {
		a.suspicious++
		if a.suspicious == a.cfg.MaxSuspicious && !a.warned {
			a.warned = true
			return true
		}
	}
	return false
}

// SuspiciousCount returns the number of too-fast keystrokes seen so far.
func (a *AntiCheat) SuspiciousCount() int { return a.suspicious }

// Intervals returns the retained inter-keystroke intervals, most recent
// last.
func (a *AntiCheat) Intervals() []time.Duration { return a.intervals }

// Evaluate performs the end-of-session checks and returns the flagged status
// plus the contributing reason.
func (a *AntiCheat) Evaluate(typedChars int, duration time.Duration) (bool, string) {
	if duration > 0 {
		cps := float64(typedChars) / duration.Seconds()
		if cps > a.cfg.MaxCharsPerSecond {
			return true, fmt.Sprintf("throughput %.1f chars/s exceeds %.1f", cps, a.cfg.MaxCharsPerSecond)
		}
	}
	if duration < a.cfg.MinTestDuration {
		return true, fmt.Sprintf("session shorter than %v", a.cfg.MinTestDuration)
	}
	if a.suspicious >= a.cfg.MaxSuspicious {
		return true, fmt.Sprintf("%d keystrokes faster than %v", a.suspicious, a.cfg.MinInterval)
	}
	return false, ""
}

// Reset clears all counters and the rolling interval buffer.
func (a *AntiCheat) Reset() {
	a.lastKeyAt = time.Time{}
	a.hasLastKey = false
	a.intervals = nil
	a.suspicious = 0
	a.warned = false
}
