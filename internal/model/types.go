// Package model defines shared data structures.
package model

import "time"

// Mode selects the correctness-tolerance policy for a session.
type Mode string

const (
	// ModeNormal lets mistakes stand; they count as errors but never block.
	ModeNormal Mode = "normal"
	// ModeExpert fails the session on the first mistyped character.
	ModeExpert Mode = "expert"
	// ModeMaster rejects any input that would introduce a mistake.
	ModeMaster Mode = "master"
)

// Valid reports whether the mode is one of the known policies.
func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeExpert, ModeMaster:
		return true
	}
	return false
}

// Config defines practice settings for one session. The engine treats it as
// read-only for the session's lifetime.
type Config struct {
	Lang             string
	Mode             Mode
	Source           string
	Difficulty       string
	TimeLimitSeconds int
	Words            int
	CapsPct          float64
	PunctPct         float64
	PunctSet         string
	FocusWeak        bool
	WeakTop          int
	WeakFactor       float64
	WeakWindow       int
	SoundEnabled     bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionResult is the immutable snapshot produced once when a session
// finishes. Flagged results are shown locally but never persisted.
type SessionResult struct {
	StartedAt   time.Time
	EndedAt     time.Time
	Lang        string
	Mode        Mode
	Source      string
	TimeLimitS  int
	NetWPM      int
	RawWPM      int
	Accuracy    int
	Consistency int
	Errors      int
	TypedChars  int
	DurationMs  int64
	Flagged     bool
	FlagReason  string
}

// CharStats stores per-character stats for one session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// ResultAggregate summarizes a stored result for reporting.
type ResultAggregate struct {
	ResultID    int64
	EndedAt     time.Time
	Mode        string
	NetWPM      int
	RawWPM      int
	Accuracy    int
	Consistency int
	Errors      int
	DurationMs  int64
}
