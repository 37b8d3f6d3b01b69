package engine

import (
	"testing"

	"github.com/verte-zerg/keystride/internal/model"
)

func TestMasterAdmitsOnlyCorrectPrefixes(t *testing.T) {
	p := NewPolicy(model.ModeMaster)
	ref := []rune("hello")
	if !p.Admits(ref, []rune("hel")) {
		t.Fatalf("correct prefix must be admitted")
	}
	if p.Admits(ref, []rune("hex")) {
		t.Fatalf("mismatching prefix must be rejected")
	}
	if !p.Admits(ref, []rune("")) {
		t.Fatalf("empty input must be admitted")
	}
}

func TestNormalAdmitsMistakes(t *testing.T) {
	p := NewPolicy(model.ModeNormal)
	if !p.Admits([]rune("hello"), []rune("hex")) {
		t.Fatalf("normal mode must not block mistakes")
	}
}

func TestExpertFailsOnFreshMismatch(t *testing.T) {
	p := NewPolicy(model.ModeExpert)
	ref := []rune("hello")
	if got := p.Judge(ref, []rune("hex"), 2, false); got != VerdictFailed {
		t.Fatalf("expected failure on fresh mismatch, got %v", got)
	}
	// A mismatch that was already present before this value is not fresh.
	if got := p.Judge(ref, []rune("hexl"), 3, false); got != VerdictContinue {
		t.Fatalf("only fresh characters are judged, got %v", got)
	}
}

func TestExpertContinuesOnCorrectInput(t *testing.T) {
	p := NewPolicy(model.ModeExpert)
	if got := p.Judge([]rune("hello"), []rune("hel"), 2, false); got != VerdictContinue {
		t.Fatalf("expected continue, got %v", got)
	}
}

func TestCompletionByLength(t *testing.T) {
	p := NewPolicy(model.ModeNormal)
	ref := []rune("ab")
	if got := p.Judge(ref, []rune("ax"), 1, false); got != VerdictFinished {
		t.Fatalf("normal mode completes at full length even with errors, got %v", got)
	}
}

func TestMasterCompletionRequiresExactMatch(t *testing.T) {
	p := NewPolicy(model.ModeMaster)
	ref := []rune("ab")
	if got := p.Judge(ref, []rune("ab"), 1, false); got != VerdictFinished {
		t.Fatalf("expected finish on exact match, got %v", got)
	}
}

func TestStreamingDisablesLengthCompletion(t *testing.T) {
	p := NewPolicy(model.ModeNormal)
	ref := []rune("ab")
	if got := p.Judge(ref, []rune("ab"), 1, true); got != VerdictContinue {
		t.Fatalf("streamed reference has no stable end, got %v", got)
	}
}

func TestStateTerminal(t *testing.T) {
	if StateIdle.Terminal() || StateActive.Terminal() {
		t.Fatalf("idle and active are not terminal")
	}
	if !StateFailed.Terminal() || !StateFinished.Terminal() {
		t.Fatalf("failed and finished are terminal")
	}
}
