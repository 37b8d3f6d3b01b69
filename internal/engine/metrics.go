package engine

import (
	"math"
	"time"
)

const (
	// maxDisplayWPM bounds surfaced WPM values so near-zero elapsed times
	// never produce a nonsensical reading.
	maxDisplayWPM = 300
	// warmupSamples is how many leading WPM samples are discarded before
	// computing consistency.
	warmupSamples = 2
)

// Snapshot holds the derived metrics for a session at one instant.
type Snapshot struct {
	RawWPM       int
	NetWPM       int
	Accuracy     int
	Consistency  int
	CorrectChars int
	Errors       int
	Elapsed      time.Duration
}

// CorrectChars counts the positions in the typed prefix where the typed
// character equals the reference character.
func CorrectChars(reference, typed []rune) int {
	n := len(typed)
	if len(reference) < n {
		n = len(reference)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if typed[i] == reference[i] {
			correct++
		}
	}
	return correct
}

// WPM converts a character count over an elapsed duration to words per
// minute using the standard five-characters-per-word convention. The result
// is unrounded and unclamped.
func WPM(chars int, elapsed time.Duration) float64 {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	return (float64(chars) / 5.0) / minutes
}

// ClampWPM rounds and bounds a WPM reading to the displayable 0-300 band.
func ClampWPM(wpm float64) int {
	v := int(math.Round(wpm))
	if v < 0 {
		return 0
	}
	if v > maxDisplayWPM {
		return maxDisplayWPM
	}
	return v
}

// AccuracyPct returns the rounded percentage of correct characters over
// typed characters. An empty typed buffer counts as 100.
func AccuracyPct(correct, typed int) int {
	if typed <= 0 {
		return 100
	}
	return int(math.Round(float64(correct) / float64(typed) * 100))
}

// ConsistencyPct derives the consistency score from the net-WPM sample
// history: the first two samples are warm-up and discarded, the coefficient
// of variation is computed over the rest, and the score is
// clamp(100 - CV*1.5, 0, 100). Fewer than two post-warm-up samples is
// insufficient data, not a penalty, and scores 100.
func ConsistencyPct(samples []float64) int {
	if len(samples) <= warmupSamples+1 {
		return 100
	}
	rest := samples[warmupSamples:]

	var sum float64
	for _, v := range rest {
		sum += v
	}
	mean := sum / float64(len(rest))
	if mean <= 0 {
		return 100
	}
	var sqDiff float64
	for _, v := range rest {
		d := v - mean
		sqDiff += d * d
	}
	stdDev := math.Sqrt(sqDiff / float64(len(rest)))
	cv := stdDev / mean * 100

	score := 100 - cv*1.5
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

// ComputeSnapshot derives all metrics for the typed prefix against the
// reference at the given elapsed time.
func ComputeSnapshot(reference, typed []rune, elapsed time.Duration, samples []float64) Snapshot {
	correct := CorrectChars(reference, typed)
	return Snapshot{
		RawWPM:       ClampWPM(WPM(len(typed), elapsed)),
		NetWPM:       ClampWPM(WPM(correct, elapsed)),
		Accuracy:     AccuracyPct(correct, len(typed)),
		Consistency:  ConsistencyPct(samples),
		CorrectChars: correct,
		Errors:       len(typed) - correct,
		Elapsed:      elapsed,
	}
}
