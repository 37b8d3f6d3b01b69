package engine

// DefaultLowWatermark is the remaining untyped buffer length that triggers a
// content prefetch for timed sessions.
const DefaultLowWatermark = 100

// Supply decides when to request additional reference text and guards the
// single-outstanding-fetch rule. Fetches are sequence-numbered: a reset or
// configuration change bumps the sequence, so a completion carrying a stale
// sequence is ignored instead of appending to the wrong session.
type Supply struct {
	lowWatermark int
	seq          uint64
	inFlight     bool
}

// NewSupply returns a Supply with the given watermark; non-positive values
// use the default.
func NewSupply(lowWatermark int) *Supply {
	if lowWatermark <= 0 {
		lowWatermark = DefaultLowWatermark
	}
	return &Supply{lowWatermark: lowWatermark}
}

// Due reports whether a fetch should be issued for the given buffer state.
// It returns false while a fetch is in flight; a new watermark crossing then
// waits for the outstanding fetch to resolve.
func (s *Supply) Due(refLen, typedLen int) bool {
	if s.inFlight {
		return false
	}
	return refLen-typedLen <= s.lowWatermark
}

// Issue marks a fetch as outstanding and returns its sequence number.
func (s *Supply) Issue() uint64 {
	s.inFlight = true
	return s.seq
}

// Resolve records the completion of a fetch. It returns false when the
// sequence is stale (the session was reset while the fetch was in flight);
// stale completions must be discarded. A failed fetch resolves the same way
// and is retried only on the next watermark crossing.
func (s *Supply) Resolve(seq uint64) bool {
	if seq != s.seq {
		return false
	}
	s.inFlight = false
	return true
}

// InFlight reports whether a fetch is outstanding.
func (s *Supply) InFlight() bool { return s.inFlight }

// Reset invalidates any outstanding fetch and clears the in-flight state.
func (s *Supply) Reset() {
	s.seq++
	s.inFlight = false
}
