package engine

import "github.com/verte-zerg/keystride/internal/model"

// State is the tagged session state. Failed and Finished are terminal.
type State int

const (
	// StateIdle means no input has been accepted yet.
	StateIdle State = iota
	// StateActive means the first keystroke has been recorded.
	StateActive
	// StateFailed is terminal; only an explicit reset leaves it.
	StateFailed
	// StateFinished is terminal; the result has been emitted.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state permits no further transitions.
func (s State) Terminal() bool {
	return s == StateFailed || s == StateFinished
}

// Verdict is the policy decision for one accepted input value.
type Verdict int

const (
	// VerdictContinue keeps the session active.
	VerdictContinue Verdict = iota
	// VerdictFailed aborts the session (Expert mode mismatch).
	VerdictFailed
	// VerdictFinished completes the session.
	VerdictFinished
)

// Policy enforces the per-mode correctness rules from the session's
// configuration.
type Policy struct {
	mode model.Mode
}

// NewPolicy returns the policy for a mode.
func NewPolicy(mode model.Mode) Policy {
	return Policy{mode: mode}
}

// Mode returns the policy's mode.
func (p Policy) Mode() model.Mode { return p.mode }

// Admits reports whether a candidate value may be recorded at all. Master
// mode rejects any candidate containing a mismatch anywhere in its typed
// prefix, so a Master session never contains an error. Other modes admit
// everything the normalizer forwarded.
func (p Policy) Admits(reference, candidate []rune) bool {
	if p.mode != model.ModeMaster {
		return true
	}
	return CorrectChars(reference, candidate) == len(candidate)
}

// Judge evaluates an admitted value. prevLen is the accepted length before
// this value; Expert mode fails the instant any freshly typed character
// mismatches. streaming disables the length-based completion check, since a
// streamed reference has no stable end.
func (p Policy) Judge(reference, typed []rune, prevLen int, streaming bool) Verdict {
	if p.mode == model.ModeExpert {
		for i := prevLen; i < len(typed) && i < len(reference); i++ {
			if typed[i] != reference[i] {
				return VerdictFailed
			}
		}
	}
	if streaming || len(reference) == 0 {
		return VerdictContinue
	}
	switch p.mode {
	case model.ModeMaster:
		// Admits already guarantees a correct prefix; equality means the
		// whole reference was reproduced.
		if len(typed) == len(reference) {
			return VerdictFinished
		}
	default:
		if len(typed) >= len(reference) {
			return VerdictFinished
		}
	}
	return VerdictContinue
}
