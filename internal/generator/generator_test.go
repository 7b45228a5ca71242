package generator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiano/internal/theory"
)

func TestPickUsesInputs(t *testing.T) {
	g := NewWithSeed(1)
	roots := []string{"C", "G"}
	types := []theory.ScaleType{theory.Major, theory.Blues}
	for i := 0; i < 50; i++ {
		ex := g.Pick(roots, types)
		require.Contains(t, roots, ex.Root)
		require.Contains(t, types, ex.Type)
	}
	require.Equal(t, Exercise{}, g.Pick(nil, types))
}

func TestPickWeightedFavorsWeakNotes(t *testing.T) {
	g := NewWithSeed(42)
	roots := []string{"C", "F#"}
	types := []theory.ScaleType{theory.Major}
	// Five of the F# major pitch classes are weak; C major has none of them.
	weak := map[string]struct{}{"F#": {}, "G#": {}, "A#": {}, "C#": {}, "D#": {}}

	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[g.PickWeighted(roots, types, weak, 5).Root]++
	}
	require.Greater(t, counts["F#"], counts["C"]*5)
}

func TestPickWeightedWithoutWeakIsUniform(t *testing.T) {
	g := NewWithSeed(7)
	roots := []string{"D"}
	types := []theory.ScaleType{theory.NaturalMinor}
	ex := g.PickWeighted(roots, types, nil, 3)
	require.Equal(t, Exercise{Root: "D", Type: theory.NaturalMinor}, ex)
}

func TestPickWeightedSkipsUnknownRoots(t *testing.T) {
	g := NewWithSeed(3)
	ex := g.PickWeighted([]string{"H", "E"}, []theory.ScaleType{theory.PentatonicMinor}, map[string]struct{}{"G": {}}, 2)
	require.Equal(t, "E", ex.Root)
}
