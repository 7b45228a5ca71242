package stats

import (
	"sort"

	"github.com/verte-zerg/tuiano/internal/model"
)

// TopNotesByFrequency returns the n most played notes.
func TopNotesByFrequency(aggs []model.NoteAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.NoteAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Note < sorted[j].Note
		}
		return ti > tj
	})
	n = min(n, len(sorted))
	out := make([]string, n)
	for i := range out {
		out[i] = sorted[i].Note
	}
	return out
}
