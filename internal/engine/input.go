package engine

// RawInput is one raw input event as observed by the host: the full
// candidate value of the typed buffer plus flags describing how it arrived.
type RawInput struct {
	Candidate []rune
	// Paste marks clipboard-originated input (paste or cut); it is always
	// rejected so timing data stays char-by-char.
	Paste bool
	// Composing marks an in-progress IME composition; the candidate is
	// buffered and not forwarded until the composition ends.
	Composing bool
}

// Normalizer converts raw, possibly-bursty input events into a single
// ordered stream of accepted values. Multiple raw events offered before a
// flush coalesce into the last one; intermediate states are dropped but the
// final value is never reordered.
type Normalizer struct {
	accepted   []rune
	pending    []rune
	hasPending bool
	composing  bool
}

// NewNormalizer returns a Normalizer with an empty accepted value.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Offer records a raw input event. Pasted input is dropped outright. While a
// composition is in progress the candidate is buffered; the event that ends
// the composition forwards the buffered final value once.
func (n *Normalizer) Offer(raw RawInput) {
	if raw.Paste {
		return
	}
	if raw.Composing {
		n.composing = true
		n.pending = raw.Candidate
		n.hasPending = false
		return
	}
	n.composing = false
	n.pending = raw.Candidate
	n.hasPending = true
}

// Flush returns the coalesced candidate value, applying the overflow guard
// against the given reference length. It returns false when there is nothing
// to forward (no pending value, composition still open, or the candidate was
// rejected and the previous accepted value restored).
func (n *Normalizer) Flush(limit int) ([]rune, bool) {
	if !n.hasPending || n.composing {
		return nil, false
	}
	n.hasPending = false
	candidate := n.pending
	n.pending = nil
	if len(candidate) > limit {
		return nil, false
	}
	return candidate, true
}

// Commit records an accepted value as the new baseline.
func (n *Normalizer) Commit(value []rune) {
	n.accepted = value
}

// Value returns the last accepted value.
func (n *Normalizer) Value() []rune { return n.accepted }

// Reset discards all accepted and pending input.
func (n *Normalizer) Reset() {
	n.accepted = nil
	n.pending = nil
	n.hasPending = false
	n.composing = false
}
