package engine

import (
	"time"

	"github.com/verte-zerg/keystride/internal/model"
)

// Event is one unit of work for a Session. Events must be applied strictly
// in arrival order from a single goroutine; the Bubble Tea update loop (or a
// test replay) provides that ordering.
type Event interface{ sessionEvent() }

// Keystrokes carries a raw input event with its arrival time.
type Keystrokes struct {
	Raw RawInput
	At  time.Time
}

// Tick is one clock tick with its monotonic timestamp.
type Tick struct {
	At time.Time
}

// ContentChunk is the completion of a content fetch, successful or not.
type ContentChunk struct {
	Seq  uint64
	Text string
	Err  error
}

func (Keystrokes) sessionEvent()   {}
func (Tick) sessionEvent()         {}
func (ContentChunk) sessionEvent() {}

// Effect is an instruction the Session hands back to its host.
type Effect interface{ sessionEffect() }

// FetchContent asks the host to request one reference-text chunk from the
// content provider and apply a ContentChunk event with the same sequence.
type FetchContent struct {
	Seq uint64
}

// Warn signals that the anti-cheat suspicion threshold was crossed. Emitted
// at most once per session.
type Warn struct {
	Suspicious int
}

// Failed signals an Expert-mode failure; the session must be explicitly
// reset before further use.
type Failed struct{}

// Finished carries the immutable session result.
type Finished struct {
	Result model.SessionResult
}

func (FetchContent) sessionEffect() {}
func (Warn) sessionEffect()         {}
func (Failed) sessionEffect()       {}
func (Finished) sessionEffect()     {}

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Session owns all mutable state for one typing attempt and orchestrates the
// clock, normalizer, anti-cheat monitor, metrics, mode policy, and content
// supply. It holds no global state and never reads the wall clock; all
// timing comes from applied events.
type Session struct {
	cfg    model.Config
	policy Policy
	clock  *Clock
	norm   *Normalizer
	cheat  *AntiCheat
	supply *Supply

	reference []rune
	state     State
	samples   []float64
	snapshot  Snapshot
	result    *model.SessionResult

	charStats     map[rune]*charStat
	prevCorrectAt time.Time
}

// NewSession builds a session over the given reference text. Content
// streaming is enabled iff the configuration carries a positive time limit.
func NewSession(cfg model.Config, referenceText string) *Session {
	s := &Session{
		clock:  NewClock(0, 0),
		norm:   NewNormalizer(),
		cheat:  NewAntiCheat(DefaultAntiCheatConfig()),
		supply: NewSupply(0),
	}
	s.Reset(cfg, referenceText)
	return s
}

// Reset cancels any in-flight fetch, discards all session state, and arms
// the session with a fresh reference text. Resetting twice in a row yields
// the same idle state as resetting once.
func (s *Session) Reset(cfg model.Config, referenceText string) {
	s.cfg = cfg
	s.policy = NewPolicy(cfg.Mode)
	s.clock.Reset()
	s.norm.Reset()
	s.cheat.Reset()
	s.supply.Reset()
	s.reference = []rune(referenceText)
	s.state = StateIdle
	s.samples = nil
	s.snapshot = Snapshot{Accuracy: 100, Consistency: 100}
	s.result = nil
	s.charStats = map[rune]*charStat{}
	s.prevCorrectAt = time.Time{}
}

// Apply processes one event and returns the effects it produced.
func (s *Session) Apply(ev Event) []Effect {
	switch ev := ev.(type) {
	case Keystrokes:
		return s.applyKeystrokes(ev)
	case Tick:
		return s.applyTick(ev)
	case ContentChunk:
		return s.applyContent(ev)
	default:
		return nil
	}
}

func (s *Session) applyKeystrokes(ev Keystrokes) []Effect {
	if s.state.Terminal() {
		return nil
	}
	s.norm.Offer(ev.Raw)
	candidate, ok := s.norm.Flush(len(s.reference))
	if !ok {
		return nil
	}
	if !s.policy.Admits(s.reference, candidate) {
		return nil
	}

	prev := s.norm.Value()
	prevLen := len(prev)
	s.norm.Commit(candidate)

	var effects []Effect
	if s.state == StateIdle && len(candidate) > 0 {
		s.state = StateActive
		s.clock.Start(ev.At)
	}
	if len(candidate) > prevLen {
		if s.cheat.RecordKeystroke(ev.At) {
			effects = append(effects, Warn{Suspicious: s.cheat.SuspiciousCount()})
		}
		for i := prevLen; i < len(candidate) && i < len(s.reference); i++ {
			s.updateCharStats(s.reference[i], candidate[i], ev.At)
		}
	}

	switch s.policy.Judge(s.reference, candidate, prevLen, s.streaming()) {
	case VerdictFailed:
		s.state = StateFailed
		return append(effects, Failed{})
	case VerdictFinished:
		return append(effects, s.finish(ev.At))
	}

	if s.state == StateActive && s.streaming() && s.supply.Due(len(s.reference), len(candidate)) {
		effects = append(effects, FetchContent{Seq: s.supply.Issue()})
	}
	return effects
}

func (s *Session) applyTick(ev Tick) []Effect {
	if s.state != StateActive {
		return nil
	}
	if s.clock.SampleDue(ev.At) {
		elapsed := s.clock.Elapsed(ev.At)
		correct := CorrectChars(s.reference, s.norm.Value())
		s.samples = append(s.samples, WPM(correct, elapsed))
	}
	if s.clock.Expired(ev.At, time.Duration(s.cfg.TimeLimitSeconds)*time.Second) {
		return []Effect{s.finish(ev.At)}
	}
	if s.clock.MetricsDue(ev.At) {
		s.snapshot = ComputeSnapshot(s.reference, s.norm.Value(), s.clock.Elapsed(ev.At), s.samples)
	}
	return nil
}

func (s *Session) applyContent(ev ContentChunk) []Effect {
	if !s.supply.Resolve(ev.Seq) {
		// Stale completion from before a reset.
		return nil
	}
	if ev.Err != nil || ev.Text == "" || s.state.Terminal() {
		return nil
	}
	chunk := []rune(ev.Text)
	if len(s.reference) > 0 && s.reference[len(s.reference)-1] != ' ' && chunk[0] != ' ' {
		s.reference = append(s.reference, ' ')
	}
	s.reference = append(s.reference, chunk...)
	return nil
}

func (s *Session) finish(at time.Time) Effect {
	typed := s.norm.Value()
	elapsed := s.clock.Elapsed(at)
	s.snapshot = ComputeSnapshot(s.reference, typed, elapsed, s.samples)
	flagged, reason := s.cheat.Evaluate(len(typed), elapsed)

	result := model.SessionResult{
		StartedAt:   s.clock.StartedAt(),
		EndedAt:     at,
		Lang:        s.cfg.Lang,
		Mode:        s.cfg.Mode,
		Source:      s.cfg.Source,
		TimeLimitS:  s.cfg.TimeLimitSeconds,
		NetWPM:      s.snapshot.NetWPM,
		RawWPM:      s.snapshot.RawWPM,
		Accuracy:    s.snapshot.Accuracy,
		Consistency: s.snapshot.Consistency,
		Errors:      s.snapshot.Errors,
		TypedChars:  len(typed),
		DurationMs:  elapsed.Milliseconds(),
		Flagged:     flagged,
		FlagReason:  reason,
	}
	s.state = StateFinished
	s.result = &result
	return Finished{Result: result}
}

func (s *Session) updateCharStats(expected, typed rune, at time.Time) {
	if expected == ' ' {
		return
	}
	entry, ok := s.charStats[expected]
	if !ok {
		entry = &charStat{}
		s.charStats[expected] = entry
	}
	if typed == expected {
		entry.correct++
		if !s.prevCorrectAt.IsZero() {
			entry.latencySumMs += at.Sub(s.prevCorrectAt).Milliseconds()
			entry.latencyCount++
		}
		s.prevCorrectAt = at
		return
	}
	entry.incorrect++
}

func (s *Session) streaming() bool {
	return s.cfg.TimeLimitSeconds > 0
}

// State returns the current session state.
func (s *Session) State() State { return s.state }

// Config returns the session configuration.
func (s *Session) Config() model.Config { return s.cfg }

// Reference returns the current reference text.
func (s *Session) Reference() []rune { return s.reference }

// Typed returns the accepted typed text.
func (s *Session) Typed() []rune { return s.norm.Value() }

// Metrics returns the most recently computed metrics snapshot.
func (s *Session) Metrics() Snapshot { return s.snapshot }

// Samples returns the net-WPM sample history.
func (s *Session) Samples() []float64 { return s.samples }

// Result returns the session result, nil before the session finishes.
func (s *Session) Result() *model.SessionResult { return s.result }

// CharStats returns per-character stats for the session, for persistence
// alongside the result.
func (s *Session) CharStats() []model.CharStats {
	out := make([]model.CharStats, 0, len(s.charStats))
	for ch, entry := range s.charStats {
		out = append(out, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return out
}
