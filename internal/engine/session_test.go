package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keystride/internal/model"
)

func normalConfig() model.Config {
	return model.Config{Lang: "en", Mode: model.ModeNormal}
}

// typeText applies one keystroke event per rune, step apart, starting at
// start. Candidates are full prefixes, as a host input buffer would send.
func typeText(t *testing.T, s *Session, text string, start time.Time, step time.Duration) []Effect {
	t.Helper()
	var effects []Effect
	runes := []rune(text)
	for i := 1; i <= len(runes); i++ {
		candidate := append([]rune(nil), runes[:i]...)
		at := start.Add(time.Duration(i-1) * step)
		effects = append(effects, s.Apply(Keystrokes{Raw: RawInput{Candidate: candidate}, At: at})...)
	}
	return effects
}

func finishedResult(t *testing.T, effects []Effect) model.SessionResult {
	t.Helper()
	for _, e := range effects {
		if f, ok := e.(Finished); ok {
			return f.Result
		}
	}
	t.Fatalf("no Finished effect in %v", effects)
	return model.SessionResult{}
}

func TestCleanRunProducesExpectedResult(t *testing.T) {
	s := NewSession(normalConfig(), "hello world")
	t0 := time.Now()
	// 11 chars over exactly 6 seconds.
	effects := typeText(t, s, "hello world", t0, 600*time.Millisecond)
	res := finishedResult(t, effects)

	if res.NetWPM != 22 || res.RawWPM != 22 {
		t.Fatalf("expected 22/22 WPM, got %d/%d", res.NetWPM, res.RawWPM)
	}
	if res.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %d", res.Accuracy)
	}
	if res.Flagged {
		t.Fatalf("clean run must not be flagged: %s", res.FlagReason)
	}
	if res.DurationMs != 6000 {
		t.Fatalf("expected 6000ms duration, got %d", res.DurationMs)
	}
	if s.State() != StateFinished {
		t.Fatalf("expected finished state, got %v", s.State())
	}
}

func TestSingleErrorRun(t *testing.T) {
	s := NewSession(normalConfig(), "hello world")
	effects := typeText(t, s, "hxllo world", time.Now(), 600*time.Millisecond)
	res := finishedResult(t, effects)

	if res.NetWPM != 20 {
		t.Fatalf("expected net WPM 20, got %d", res.NetWPM)
	}
	if res.Accuracy != 91 {
		t.Fatalf("expected accuracy 91, got %d", res.Accuracy)
	}
	if res.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", res.Errors)
	}
}

func TestRapidInputWarnsOnceAndFlags(t *testing.T) {
	ref := strings.Repeat("a", 20)
	s := NewSession(normalConfig(), ref)
	effects := typeText(t, s, ref, time.Now(), 5*time.Millisecond)

	warns := 0
	for _, e := range effects {
		if _, ok := e.(Warn); ok {
			warns++
		}
	}
	if warns != 1 {
		t.Fatalf("expected exactly one warning, got %d", warns)
	}
	res := finishedResult(t, effects)
	if !res.Flagged {
		t.Fatalf("expected flagged result")
	}
	if !strings.Contains(res.FlagReason, "chars/s") {
		t.Fatalf("expected throughput reason, got %q", res.FlagReason)
	}
}

func TestExpertFailsWithinSameStep(t *testing.T) {
	s := NewSession(model.Config{Lang: "en", Mode: model.ModeExpert}, "hello")
	t0 := time.Now()
	typeText(t, s, "he", t0, 100*time.Millisecond)

	effects := s.Apply(Keystrokes{Raw: RawInput{Candidate: []rune("hex")}, At: t0.Add(200 * time.Millisecond)})
	failed := false
	for _, e := range effects {
		if _, ok := e.(Failed); ok {
			failed = true
		}
	}
	if !failed {
		t.Fatalf("expected Failed effect in the same processing step")
	}
	if s.State() != StateFailed {
		t.Fatalf("expected failed state, got %v", s.State())
	}

	// Terminal states never transition; further input is ignored.
	if got := s.Apply(Keystrokes{Raw: RawInput{Candidate: []rune("hell")}, At: t0.Add(time.Second)}); len(got) != 0 {
		t.Fatalf("input after failure must be ignored, got %v", got)
	}
	if s.State() != StateFailed {
		t.Fatalf("terminal state transitioned to %v", s.State())
	}
}

func TestMasterNeverRecordsErrors(t *testing.T) {
	ref := "abc def"
	s := NewSession(model.Config{Lang: "en", Mode: model.ModeMaster}, ref)
	t0 := time.Now()

	attempts := []string{"a", "ax", "ab", "abd", "abc", "abc x", "abc ", "abc d"}
	for i, attempt := range attempts {
		s.Apply(Keystrokes{Raw: RawInput{Candidate: []rune(attempt)}, At: t0.Add(time.Duration(i) * 100 * time.Millisecond)})
		typed := s.Typed()
		refRunes := s.Reference()
		for j := range typed {
			if typed[j] != refRunes[j] {
				t.Fatalf("master session contains an error at %d after %q", j, attempt)
			}
		}
	}
	if string(s.Typed()) != "abc d" {
		t.Fatalf("expected valid prefixes to advance, got %q", string(s.Typed()))
	}
}

func TestTimeLimitExpiryFinishesMidText(t *testing.T) {
	cfg := model.Config{Lang: "en", Mode: model.ModeNormal, TimeLimitSeconds: 30}
	s := NewSession(cfg, strings.Repeat("word ", 200))
	t0 := time.Now()
	typeText(t, s, "word word", t0, 500*time.Millisecond)

	effects := s.Apply(Tick{At: t0.Add(30 * time.Second)})
	res := finishedResult(t, effects)
	if res.TypedChars != 9 {
		t.Fatalf("expected 9 typed chars, got %d", res.TypedChars)
	}
	if res.DurationMs != 30000 {
		t.Fatalf("expected the precise terminal elapsed time, got %d", res.DurationMs)
	}
}

func TestWatermarkIssuesSingleFetch(t *testing.T) {
	// 120-char reference, watermark 100: the 20th keystroke crosses.
	ref := strings.Repeat("a", 120)
	cfg := model.Config{Lang: "en", Mode: model.ModeNormal, TimeLimitSeconds: 30}
	s := NewSession(cfg, ref)
	t0 := time.Now()

	effects := typeText(t, s, strings.Repeat("a", 25), t0, 100*time.Millisecond)
	fetches := 0
	var seq uint64
	for _, e := range effects {
		if f, ok := e.(FetchContent); ok {
			fetches++
			seq = f.Seq
		}
	}
	if fetches != 1 {
		t.Fatalf("expected exactly one fetch while in flight, got %d", fetches)
	}

	// Resolution appends, and further crossings may fetch again.
	s.Apply(ContentChunk{Seq: seq, Text: strings.Repeat("b", 150)})
	if got := len(s.Reference()); got <= 120 {
		t.Fatalf("expected reference to grow, got %d", got)
	}
	more := s.Apply(Keystrokes{Raw: RawInput{Candidate: []rune(strings.Repeat("a", 26))}, At: t0.Add(3 * time.Second)})
	for _, e := range more {
		if _, ok := e.(FetchContent); ok {
			t.Fatalf("no fetch expected while buffer is replenished")
		}
	}
}

func TestStaleContentDiscardedAfterReset(t *testing.T) {
	ref := strings.Repeat("a", 110)
	cfg := model.Config{Lang: "en", Mode: model.ModeNormal, TimeLimitSeconds: 30}
	s := NewSession(cfg, ref)
	t0 := time.Now()

	effects := typeText(t, s, strings.Repeat("a", 15), t0, 100*time.Millisecond)
	var seq uint64
	found := false
	for _, e := range effects {
		if f, ok := e.(FetchContent); ok {
			seq = f.Seq
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fetch to be issued")
	}

	s.Reset(cfg, "fresh text for a fresh session plus padding to stay sane")
	before := len(s.Reference())
	s.Apply(ContentChunk{Seq: seq, Text: "stale stale stale"})
	if len(s.Reference()) != before {
		t.Fatalf("stale content appended to a reset session")
	}
}

func TestFailedFetchRetriedOnNextCrossing(t *testing.T) {
	ref := strings.Repeat("a", 110)
	cfg := model.Config{Lang: "en", Mode: model.ModeNormal, TimeLimitSeconds: 30}
	s := NewSession(cfg, ref)
	t0 := time.Now()

	effects := typeText(t, s, strings.Repeat("a", 12), t0, 100*time.Millisecond)
	var seq uint64
	for _, e := range effects {
		if f, ok := e.(FetchContent); ok {
			seq = f.Seq
		}
	}
	s.Apply(ContentChunk{Seq: seq, Err: errFetch})

	// Typing continues; the next crossing issues a retry.
	retry := s.Apply(Keystrokes{Raw: RawInput{Candidate: []rune(strings.Repeat("a", 13))}, At: t0.Add(2 * time.Second)})
	fetched := false
	for _, e := range retry {
		if _, ok := e.(FetchContent); ok {
			fetched = true
		}
	}
	if !fetched {
		t.Fatalf("expected a retry fetch after failure")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	cfg := normalConfig()
	s := NewSession(cfg, "hello world")
	typeText(t, s, "hel", time.Now(), 100*time.Millisecond)

	s.Reset(cfg, "hello world")
	s.Reset(cfg, "hello world")
	if s.State() != StateIdle {
		t.Fatalf("expected idle state, got %v", s.State())
	}
	if len(s.Typed()) != 0 || len(s.Samples()) != 0 || s.Result() != nil {
		t.Fatalf("expected a clean session after double reset")
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	cfg := model.Config{Lang: "en", Mode: model.ModeNormal, TimeLimitSeconds: 10}
	ref := strings.Repeat("the quick brown fox ", 20)
	t0 := time.Unix(1700000000, 0)

	var events []Event
	typed := []rune("the quick brown")
	for i := 1; i <= len(typed); i++ {
		events = append(events, Keystrokes{
			Raw: RawInput{Candidate: append([]rune(nil), typed[:i]...)},
			At:  t0.Add(time.Duration(i-1) * 300 * time.Millisecond),
		})
	}
	for ms := 0; ms <= 10000; ms += 100 {
		events = append(events, Tick{At: t0.Add(time.Duration(ms) * time.Millisecond)})
	}

	run := func() model.SessionResult {
		s := NewSession(cfg, ref)
		var res *model.SessionResult
		for _, ev := range events {
			for _, e := range s.Apply(ev) {
				if f, ok := e.(Finished); ok {
					r := f.Result
					res = &r
				}
			}
		}
		if res == nil {
			t.Fatalf("replay did not finish")
		}
		return *res
	}

	first := run()
	second := run()
	if first != second {
		t.Fatalf("replay diverged:\n%+v\n%+v", first, second)
	}
}

func TestSamplesAreOrderedAndNonNegative(t *testing.T) {
	cfg := model.Config{Lang: "en", Mode: model.ModeNormal, TimeLimitSeconds: 30}
	s := NewSession(cfg, strings.Repeat("abc ", 100))
	t0 := time.Now()
	typeText(t, s, "abc abc abc", t0, 200*time.Millisecond)
	for ms := 0; ms < 5000; ms += 33 {
		s.Apply(Tick{At: t0.Add(time.Duration(ms) * time.Millisecond)})
	}
	for _, v := range s.Samples() {
		if v < 0 {
			t.Fatalf("negative WPM sample %f", v)
		}
	}
	if len(s.Samples()) == 0 {
		t.Fatalf("expected samples after 5s of ticks")
	}
}

func TestTypedNeverExceedsReference(t *testing.T) {
	s := NewSession(normalConfig(), "abc")
	t0 := time.Now()
	typeText(t, s, "abc", t0, 100*time.Millisecond)
	s.Apply(Keystrokes{Raw: RawInput{Candidate: []rune("abcd")}, At: t0.Add(time.Second)})
	if len(s.Typed()) > len(s.Reference()) {
		t.Fatalf("typed text longer than reference")
	}
}

var errFetch = errTest("fetch failed")

type errTest string

func (e errTest) Error() string { return string(e) }
