// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cell is one reference character with its resolved style applied.
type cell struct {
	s       string
	width   int
	isSpace bool
}

// buildCells styles every reference character against the typed input:
// typed chars are correct/incorrect, the word under the cursor is
// highlighted, the cursor position is underlined. A wrongly typed space is
// shown as a dot so the mistake stays visible.
func buildCells(reference, typed []rune, cursor int) []cell {
	wordStart, wordEnd := currentWordBounds(reference, cursor)

	out := make([]cell, 0, len(reference))
	for i, target := range reference {
		displayed := target
		style := pendingStyle
		switch {
		case i < len(typed):
			switch {
			case target == ' ' && typed[i] != ' ':
				displayed = '•'
				style = incorrectStyle
			case typed[i] == target:
				style = correctStyle
			default:
				style = incorrectStyle
			}
		case target != ' ' && i >= wordStart && i < wordEnd:
			style = currentWordStyle
		}
		if i == cursor && i >= len(typed) {
			style = style.Underline(true)
		}
		out = append(out, cell{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: target == ' ',
		})
	}
	return out
}

// currentWordBounds returns the [start, end) range of the word containing
// the cursor, or the next word when the cursor sits on a space. Returns
// (0, 0) when there is no word at or after the cursor.
func currentWordBounds(reference []rune, cursor int) (int, int) {
	if cursor < 0 || cursor >= len(reference) {
		return 0, 0
	}
	start := cursor
	for start < len(reference) && reference[start] == ' ' {
		start++
	}
	if start == len(reference) {
		return 0, 0
	}
	// Walk back to the beginning of the word under the cursor.
	if start == cursor {
		for start > 0 && reference[start-1] != ' ' {
			start--
		}
	}
	end := start
	for end < len(reference) && reference[end] != ' ' {
		end++
	}
	return start, end
}

func renderCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}

// wrapCells breaks the styled cells into lines no wider than width,
// preferring to break at spaces.
func wrapCells(cells []cell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var out strings.Builder
	var line []cell
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(cells); {
		c := cells[i]
		if lineWidth+c.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				out.WriteString(renderCells(line[:lastSpace]))
				out.WriteRune('\n')
				line = append([]cell{}, line[lastSpace+1:]...)
			} else {
				out.WriteString(renderCells(line))
				out.WriteRune('\n')
				line = nil
			}
			lineWidth = 0
			lastSpace = -1
			for j, lc := range line {
				lineWidth += lc.width
				if lc.isSpace {
					lastSpace = j
				}
			}
			continue
		}
		line = append(line, c)
		lineWidth += c.width
		if c.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderCells(line))
	return out.String()
}
