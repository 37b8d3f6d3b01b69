package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/keystride/internal/model"
	"github.com/verte-zerg/keystride/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Results        []model.ResultAggregate
	CharAggsAll    []model.CharAggregate
	CharAggsWindow []model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}

	allIDs := resultIDs(results)
	windowIDs := lastResultIDs(results, cfg.CurveWindow)
	charAggsAll, err := st.ListCharAggregatesForResults(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	charAggsWindow, err := st.ListCharAggregatesForResults(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Results:        results,
		CharAggsAll:    charAggsAll,
		CharAggsWindow: charAggsWindow,
	}, nil
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, results []model.ResultAggregate) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	s := Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Count),
		fmt.Sprintf("Avg Net WPM: %.1f", s.AvgNetWPM),
		fmt.Sprintf("Best Net WPM: %d", s.BestNetWPM),
		fmt.Sprintf("Avg Raw WPM: %.1f", s.AvgRawWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Avg Consistency: %.1f%%", s.AvgConsistency),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints learning curves for net WPM, accuracy, and
// consistency, smoothed with a moving average.
func RenderCurves(w io.Writer, results []model.ResultAggregate, window, totalWidth, height int) error {
	if len(results) == 0 {
		return nil
	}
	net := MovingAverage(ExtractSeries(results, func(r model.ResultAggregate) float64 { return float64(r.NetWPM) }), window)
	acc := MovingAverage(ExtractSeries(results, func(r model.ResultAggregate) float64 { return float64(r.Accuracy) }), window)
	cons := MovingAverage(ExtractSeries(results, func(r model.ResultAggregate) float64 { return float64(r.Consistency) }), window)

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "Net WPM", Values: net},
		{Name: "Accuracy", Values: acc},
		{Name: "Consistency", Values: cons},
	}, width, height)
}

// RenderCharTable prints per-character aggregates sorted by lowest accuracy.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	headers, rows := CharTableRows(aggs)
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	if _, err := fmt.Fprintln(w, "Per-Character (Windowed)"); err != nil {
		return err
	}
	for _, line := range FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func resultIDs(results []model.ResultAggregate) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ResultID
	}
	return ids
}

func lastResultIDs(results []model.ResultAggregate, window int) []int64 {
	if window <= 0 || len(results) <= window {
		return resultIDs(results)
	}
	return resultIDs(results[len(results)-window:])
}
