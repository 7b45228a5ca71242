package stats

import (
	"sort"

	"github.com/verte-zerg/tuiano/internal/model"
)

// SelectWeakNotes selects the lowest hit-rate notes from aggregates. Notes
// that were never missed are not weak.
func SelectWeakNotes(aggs []model.NoteAggregate, top int) map[string]struct{} {
	weak := map[string]struct{}{}
	candidates := make([]model.NoteAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := accuracy(candidates[i]), accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Note < candidates[j].Note
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, agg := range candidates[:top] {
		weak[agg.Note] = struct{}{}
	}
	return weak
}

func accuracy(agg model.NoteAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
