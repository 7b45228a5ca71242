package tui

import (
	"testing"

	"github.com/verte-zerg/tuiano/internal/practice"
	"github.com/verte-zerg/tuiano/internal/theory"
)

func snapshotAt(index int, state practice.State) practice.Snapshot {
	return practice.Snapshot{
		State:            state,
		CurrentNoteIndex: index,
		CurrentLoop:      1,
		Sequence:         theory.GetScaleNotes("C", theory.PentatonicMajor, 4),
	}
}

func TestBuildSequenceCellsCursor(t *testing.T) {
	cells := buildSequenceCells(snapshotAt(1, practice.StatePlaying))
	if len(cells) != 9 {
		t.Fatalf("expected 5 notes and 4 separators, got %d cells", len(cells))
	}
	if cells[0].s != correctStyle.Render("C4") {
		t.Fatalf("expected correct style for played note")
	}
	if cells[2].s != cursorStyle.Render("D4") {
		t.Fatalf("expected cursor style for expected note")
	}
	if cells[4].s != pendingStyle.Render("E4") {
		t.Fatalf("expected pending style for upcoming note")
	}
	if !cells[1].isSpace || cells[2].width != 2 {
		t.Fatalf("unexpected cell layout: %+v", cells[:3])
	}
}

func TestBuildSequenceCellsMistake(t *testing.T) {
	snap := snapshotAt(2, practice.StatePlaying)
	snap.History = []practice.NotePlayedEvent{{IsCorrect: false, Position: 2, Loop: 1}}
	cells := buildSequenceCells(snap)
	if cells[4].s != incorrectStyle.Underline(true).Render("E4") {
		t.Fatalf("expected incorrect style after a wrong note")
	}
}

func TestBuildSequenceCellsCompleted(t *testing.T) {
	snap := snapshotAt(4, practice.StateCompleted)
	cells := buildSequenceCells(snap)
	for i, note := range snap.Sequence {
		if got := cells[2*i].s; got != correctStyle.Render(note.Label()) {
			t.Fatalf("expected %s styled as played, got %q", note.Label(), got)
		}
	}
}

func TestWrapCellsBreaksAtSeparators(t *testing.T) {
	plain := func(label string) styledCell { return styledCell{s: label, width: len(label)} }
	cells := []styledCell{plain("C4"), separatorCell, plain("D4"), separatorCell, plain("E4"), separatorCell, plain("F#4")}
	got := wrapCells(cells, 8)
	if got != "C4 D4 E4\nF#4" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if wrapCells(cells, 0) != "C4 D4 E4 F#4" {
		t.Fatalf("expected no wrap for zero width")
	}
}

func TestWrapCellsLongCell(t *testing.T) {
	cells := []styledCell{{s: "Bb4", width: 3}, {s: "Ab4", width: 3}}
	if got := wrapCells(cells, 3); got != "Bb4\nAb4" {
		t.Fatalf("unexpected hard wrap: %q", got)
	}
}
