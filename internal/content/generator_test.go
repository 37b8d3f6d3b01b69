package content

import (
	"context"
	"strings"
	"testing"
)

func testWords() []string {
	return []string{"alpha", "bravo", "charlie", "delta", "echo"}
}

func TestGeneratorMeetsMinLength(t *testing.T) {
	g := NewGenerator(testWords(), GeneratorOptions{})
	chunk, err := g.Fetch(context.Background(), Request{MinLength: 300})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunk) < 300 {
		t.Fatalf("expected at least 300 chars, got %d", len(chunk))
	}
}

func TestGeneratorUsesWordList(t *testing.T) {
	g := NewGenerator(testWords(), GeneratorOptions{})
	chunk, err := g.Fetch(context.Background(), Request{MinLength: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	known := map[string]struct{}{}
	for _, w := range testWords() {
		known[w] = struct{}{}
	}
	for _, w := range strings.Fields(chunk) {
		if _, ok := known[w]; !ok {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestGeneratorWeakBias(t *testing.T) {
	// With an overwhelming factor, words containing the weak char dominate.
	g := NewGenerator([]string{"zzzz", "aaaa"}, GeneratorOptions{
		WeakSet:    map[rune]struct{}{'z': {}},
		WeakFactor: 1000,
	})
	chunk, err := g.Fetch(context.Background(), Request{MinLength: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zCount := strings.Count(chunk, "zzzz")
	aCount := strings.Count(chunk, "aaaa")
	if zCount <= aCount {
		t.Fatalf("expected weak-char words to dominate: %d vs %d", zCount, aCount)
	}
}

func TestGeneratorStressSource(t *testing.T) {
	g := NewGenerator(testWords(), GeneratorOptions{})
	chunk, err := g.Fetch(context.Background(), Request{Source: "stress", MinLength: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.ContainsAny(chunk, stressSymbolSet) {
		t.Fatalf("expected stress symbols in chunk: %q", chunk)
	}
}

func TestSnippetsFetchAndExclude(t *testing.T) {
	s, err := NewSnippets()
	if err != nil {
		t.Fatalf("failed to load snippets: %v", err)
	}
	names := s.Names()
	if len(names) < 2 {
		t.Fatalf("expected multiple embedded snippets, got %d", len(names))
	}

	chunk, err := s.Fetch(context.Background(), Request{MinLength: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunk) < 100 {
		t.Fatalf("expected at least 100 chars, got %d", len(chunk))
	}

	// Excluding all but one name pins the selection.
	s, err = NewSnippets()
	if err != nil {
		t.Fatalf("failed to load snippets: %v", err)
	}
	keep := names[0]
	chunk, err = s.Fetch(context.Background(), Request{MinLength: 1, ExcludeRecent: names[1:]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(chunk, firstWords(s.texts[keep])) {
		t.Fatalf("expected snippet %q to be served", keep)
	}

	// The snippet served last is never repeated as long as others remain.
	chunk, err = s.Fetch(context.Background(), Request{MinLength: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasPrefix(chunk, firstWords(s.texts[keep])) {
		t.Fatalf("expected a different snippet after %q", keep)
	}
}

func firstWords(text string) string {
	fields := strings.Fields(text)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}
