package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisGutter          = 8
	terminalWidthBackup = 80
)

// PlotWidthFor derives a plot width from a total terminal width, leaving
// room for the axis gutter.
func PlotWidthFor(totalWidth int) int {
	width := totalWidth - axisGutter
	if width < minPlotWidth {
		return minPlotWidth
	}
	return width
}

// TerminalWidth returns the current terminal width, or a backup value when
// stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// PlotSeries renders a braille line plot for the provided series. Each
// series is scaled to its own min/max, which are printed below the plot.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	// Braille cells give a 2x4 dot grid per character.
	dotsX := width * 2
	dotsY := height * 4
	grid := make([][]uint8, height)
	for i := range grid {
		grid[i] = make([]uint8, width)
	}

	for _, s := range series {
		values := resample(s.Values, dotsX)
		minVal, maxVal := seriesMinMax(values)
		if math.Abs(maxVal-minVal) < 1e-9 {
			minVal--
			maxVal++
		}
		prevY := -1
		for x, v := range values {
			y := dotsY - 1 - int(math.Round((v-minVal)/(maxVal-minVal)*float64(dotsY-1)))
			if y < 0 {
				y = 0
			}
			if y >= dotsY {
				y = dotsY - 1
			}
			setDot(grid, x, y)
			// Connect vertical gaps so steep slopes stay contiguous.
			if prevY >= 0 {
				lo, hi := prevY, y
				if lo > hi {
					lo, hi = hi, lo
				}
				for yy := lo + 1; yy < hi; yy++ {
					setDot(grid, x, yy)
				}
			}
			prevY = y
		}
	}

	for _, row := range grid {
		var b strings.Builder
		for _, cell := range row {
			b.WriteRune(rune(0x2800 + int(cell)))
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}

	for _, s := range series {
		minVal, maxVal := seriesMinMax(s.Values)
		if _, err := fmt.Fprintf(w, "%s: min %.1f, max %.1f\n", s.Name, minVal, maxVal); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// Braille dot bit layout within one cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func setDot(grid [][]uint8, x, y int) {
	cellX, cellY := x/2, y/4
	if cellY < 0 || cellY >= len(grid) || cellX < 0 || cellX >= len(grid[cellY]) {
		return
	}
	grid[cellY][cellX] |= brailleBits[y%4][x%2]
}

func resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) == 1 {
		out := make([]float64, width)
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	out := make([]float64, width)
	for i := range out {
		pos := float64(i) / float64(width-1) * float64(len(values)-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		if hi >= len(values) {
			hi = len(values) - 1
		}
		frac := pos - float64(lo)
		out[i] = values[lo]*(1-frac) + values[hi]*frac
	}
	return out
}

func seriesMinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}
