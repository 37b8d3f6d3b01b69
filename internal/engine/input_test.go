package engine

import "testing"

func TestNormalizerCoalescesBursts(t *testing.T) {
	n := NewNormalizer()
	n.Offer(RawInput{Candidate: []rune("h")})
	n.Offer(RawInput{Candidate: []rune("he")})
	n.Offer(RawInput{Candidate: []rune("hel")})
	got, ok := n.Flush(10)
	if !ok {
		t.Fatalf("expected a forwarded value")
	}
	if string(got) != "hel" {
		t.Fatalf("expected last pending value, got %q", string(got))
	}
	if _, ok := n.Flush(10); ok {
		t.Fatalf("expected nothing pending after flush")
	}
}

func TestNormalizerRejectsPaste(t *testing.T) {
	n := NewNormalizer()
	n.Offer(RawInput{Candidate: []rune("stolen text"), Paste: true})
	if _, ok := n.Flush(100); ok {
		t.Fatalf("pasted input must be dropped")
	}
	if len(n.Value()) != 0 {
		t.Fatalf("accepted value changed by paste")
	}
}

func TestNormalizerBuffersComposition(t *testing.T) {
	n := NewNormalizer()
	n.Offer(RawInput{Candidate: []rune("e"), Composing: true})
	if _, ok := n.Flush(10); ok {
		t.Fatalf("composition in progress must not forward")
	}
	n.Offer(RawInput{Candidate: []rune("é")})
	got, ok := n.Flush(10)
	if !ok {
		t.Fatalf("expected composed value after composition end")
	}
	if string(got) != "é" {
		t.Fatalf("expected composed rune, got %q", string(got))
	}
}

func TestNormalizerOverflowGuard(t *testing.T) {
	n := NewNormalizer()
	n.Commit([]rune("abc"))
	n.Offer(RawInput{Candidate: []rune("abcdef")})
	if _, ok := n.Flush(5); ok {
		t.Fatalf("overlong candidate must be rejected")
	}
	if string(n.Value()) != "abc" {
		t.Fatalf("previous value not restored, got %q", string(n.Value()))
	}
}

func TestNormalizerReset(t *testing.T) {
	n := NewNormalizer()
	n.Commit([]rune("abc"))
	n.Offer(RawInput{Candidate: []rune("abcd")})
	n.Reset()
	if len(n.Value()) != 0 {
		t.Fatalf("expected empty value after reset")
	}
	if _, ok := n.Flush(10); ok {
		t.Fatalf("expected no pending input after reset")
	}
}
