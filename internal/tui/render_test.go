package tui

import (
	"strings"
	"testing"
)

func TestBuildCellsCursorUnderlined(t *testing.T) {
	reference := []rune("ab")
	typed := []rune("a")
	cursor := len(typed)

	cells := buildCells(reference, typed, cursor)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first cell")
	}
	if cells[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected underlined current-word style at cursor")
	}
}

func TestBuildCellsNoCursorWhenComplete(t *testing.T) {
	reference := []rune("a")
	typed := []rune("a")

	cells := buildCells(reference, typed, -1)
	if len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cells))
	}
	if cells[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed cell")
	}
}

func TestBuildCellsKeepsReferenceOnMistype(t *testing.T) {
	reference := []rune("ab")
	typed := []rune("ax")

	cells := buildCells(reference, typed, len(typed))
	if cells[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style showing reference char")
	}
}

func TestBuildCellsWordHighlighting(t *testing.T) {
	reference := []rune("one two")
	typed := []rune("o")

	cells := buildCells(reference, typed, len(typed))
	if cells[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style inside the active word")
	}
	if cells[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for the next word")
	}
}

func TestBuildCellsWrongSpaceDot(t *testing.T) {
	reference := []rune("a b")
	typed := []rune("ax")

	cells := buildCells(reference, typed, len(typed))
	if cells[1].s != incorrectStyle.Render("•") {
		t.Fatalf("expected dot marker for wrong space")
	}
}

func TestCurrentWordBounds(t *testing.T) {
	reference := []rune("one two")
	start, end := currentWordBounds(reference, 5)
	if start != 4 || end != 7 {
		t.Fatalf("expected bounds [4, 7), got [%d, %d)", start, end)
	}
	start, end = currentWordBounds(reference, 3)
	if start != 4 || end != 7 {
		t.Fatalf("expected space cursor to target next word, got [%d, %d)", start, end)
	}
	start, end = currentWordBounds(reference, 10)
	if start != 0 || end != 0 {
		t.Fatalf("expected empty bounds past the end, got [%d, %d)", start, end)
	}
}

func TestWrapCellsBreaksAtSpaces(t *testing.T) {
	cells := buildCells([]rune("one two three"), nil, -1)
	wrapped := wrapCells(cells, 8)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), wrapped)
	}
	if lines[0] != renderCells(buildCells([]rune("one two"), nil, -1)) {
		t.Fatalf("expected first line to break after %q, got %q", "two", lines[0])
	}
	if lines[1] != renderCells(buildCells([]rune("three"), nil, -1)) {
		t.Fatalf("expected second line to hold %q, got %q", "three", lines[1])
	}
}
