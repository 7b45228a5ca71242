// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuiano/internal/model"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// SessionMetrics computes correct notes per minute and the hit rate (0-1).
func SessionMetrics(correct, incorrect int, durationMs int64) (npm, hitRate float64) {
	if total := correct + incorrect; total > 0 {
		hitRate = float64(correct) / float64(total)
	}
	if durationMs <= 0 {
		return 0, hitRate
	}
	npm = float64(correct) / (float64(durationMs) / 60000.0)
	return npm, hitRate
}

// OnTimeRate is the share of correct notes played within half a beat.
func OnTimeRate(s model.SessionAggregate) float64 {
	if s.Correct == 0 {
		return 0
	}
	return float64(s.OnTime) / float64(s.Correct)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders values as a single line of block characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkBlocks[len(sparkBlocks)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		b.WriteRune(sparkBlocks[max(0, min(len(sparkBlocks)-1, idx))])
	}
	return b.String()
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalNPM, totalHit, totalOnTime float64
	bestNPM := 0.0
	scales := map[string]int{}
	for _, s := range sessions {
		npm, hit := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalNPM += npm
		totalHit += hit
		totalOnTime += OnTimeRate(s)
		bestNPM = math.Max(bestNPM, npm)
		scales[s.Root+" "+s.ScaleType]++
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Avg Notes/min: %.2f", totalNPM/count),
		fmt.Sprintf("Best Notes/min: %.2f", bestNPM),
		fmt.Sprintf("Avg Hit Rate: %.2f%%", totalHit/count*100),
		fmt.Sprintf("Avg On Time: %.2f%%", totalOnTime/count*100),
		fmt.Sprintf("Most Practiced: %s", mostPracticed(scales)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func mostPracticed(counts map[string]int) string {
	best, bestCount := "", 0
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return fmt.Sprintf("%s (%d)", best, bestCount)
}

// RenderCurves prints learning curves for notes per minute and hit rate.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	npms := make([]float64, len(sessions))
	hits := make([]float64, len(sessions))
	for i, s := range sessions {
		npm, hit := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		npms[i] = npm
		hits[i] = hit * 100
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Notes/min", Values: MovingAverage(npms, window)},
		{Name: "Hit Rate", Values: MovingAverage(hits, window)},
	}, width, height, useColor)
}

// RenderNoteTable prints per-note aggregates, weakest first.
func RenderNoteTable(w io.Writer, aggs []model.NoteAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No note stats found.")
		return err
	}
	sorted := SortWeakestFirst(aggs)

	if _, err := fmt.Fprintln(w, "Per-Note (Windowed)"); err != nil {
		return err
	}
	for _, line := range formatTable(NoteTableHeaders, NoteTableRows(sorted), map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// SortWeakestFirst returns a copy ordered by ascending hit rate.
func SortWeakestFirst(aggs []model.NoteAggregate) []model.NoteAggregate {
	sorted := make([]model.NoteAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := accuracy(sorted[i]), accuracy(sorted[j])
		if ai == aj {
			return sorted[i].Note < sorted[j].Note
		}
		return ai < aj
	})
	return sorted
}

// NoteTableHeaders are the columns of the per-note table.
var NoteTableHeaders = []string{"Note", "Hit Rate", "Avg Gap (ms)", "Correct", "Missed"}

// NoteTableRows formats aggregates as table cells in the given order.
func NoteTableRows(aggs []model.NoteAggregate) [][]string {
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			agg.Note,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%.1f", avgLatency(agg)),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	return rows
}

func avgLatency(agg model.NoteAggregate) float64 {
	if agg.LatencyCount == 0 {
		return 0
	}
	return float64(agg.LatencySumMs) / float64(agg.LatencyCount)
}

// RenderNoteCurves prints per-note learning curves.
func RenderNoteCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.NoteAggregate, notes []string, window int) error {
	return RenderNoteCurvesWithSize(w, sessions, perSession, notes, window, 0, defaultPlotHeight, false)
}

// RenderNoteCurvesWithSize prints per-note learning curves sized to a given total width.
func RenderNoteCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.NoteAggregate, notes []string, window, totalWidth, height int, useColor bool) error {
	if len(notes) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Note Curves"); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, note := range notes {
		hits := make([]float64, len(sessions))
		gaps := make([]float64, len(sessions))
		for i, s := range sessions {
			agg, ok := perSession[s.SessionID][note]
			if !ok {
				continue
			}
			if agg.Correct+agg.Incorrect > 0 {
				hits[i] = accuracy(agg) * 100
			}
			gaps[i] = avgLatency(agg)
		}
		if err := PlotSeriesWithColor(w, "Note "+note, []Series{
			{Name: "Hit Rate", Values: MovingAverage(hits, window)},
			{Name: "Gap", Values: MovingAverage(gaps, window)},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}
