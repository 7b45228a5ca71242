package stats

import (
	"testing"

	"github.com/verte-zerg/tuiano/internal/model"
)

func TestSelectWeakNotes(t *testing.T) {
	aggs := []model.NoteAggregate{
		{Note: "C", Correct: 10},
		{Note: "F#", Correct: 1, Incorrect: 3},
		{Note: "A#", Correct: 3, Incorrect: 1},
		{Note: "D#", Correct: 1, Incorrect: 1},
	}
	weak := SelectWeakNotes(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak notes, got %v", weak)
	}
	for _, n := range []string{"F#", "D#"} {
		if _, ok := weak[n]; !ok {
			t.Fatalf("expected %s to be weak, got %v", n, weak)
		}
	}

	all := SelectWeakNotes(aggs, 0)
	if _, ok := all["C"]; ok {
		t.Fatalf("never-missed note selected: %v", all)
	}
	if len(all) != 3 {
		t.Fatalf("expected every missed note, got %v", all)
	}
	if len(SelectWeakNotes(nil, 3)) != 0 {
		t.Fatalf("expected empty set")
	}
}
