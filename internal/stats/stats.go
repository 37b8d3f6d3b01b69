// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/keystride/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates stored results for display.
type Summary struct {
	Count          int
	AvgNetWPM      float64
	AvgRawWPM      float64
	BestNetWPM     int
	AvgAccuracy    float64
	AvgConsistency float64
	TotalDuration  int64
}

// Summarize computes averages and bests over the given results.
func Summarize(results []model.ResultAggregate) Summary {
	s := Summary{Count: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		s.AvgNetWPM += float64(r.NetWPM)
		s.AvgRawWPM += float64(r.RawWPM)
		s.AvgAccuracy += float64(r.Accuracy)
		s.AvgConsistency += float64(r.Consistency)
		s.TotalDuration += r.DurationMs
		if r.NetWPM > s.BestNetWPM {
			s.BestNetWPM = r.NetWPM
		}
	}
	n := float64(len(results))
	s.AvgNetWPM /= n
	s.AvgRawWPM /= n
	s.AvgAccuracy /= n
	s.AvgConsistency /= n
	return s
}

// ExtractSeries pulls one metric from results as a float series, oldest
// first.
func ExtractSeries(results []model.ResultAggregate, pick func(model.ResultAggregate) float64) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = pick(r)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
