package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuiano/internal/practice"
	"github.com/verte-zerg/tuiano/internal/theory"
)

func TestNoteStatsFromHistory(t *testing.T) {
	base := time.Unix(100, 0)
	history := []practice.NotePlayedEvent{
		{ExpectedNote: "F", IsCorrect: true, Timestamp: base},
		{ExpectedNote: "G", IsCorrect: false, Timestamp: base.Add(200 * time.Millisecond)},
		{ExpectedNote: "G", IsCorrect: true, Timestamp: base.Add(600 * time.Millisecond)},
		{ExpectedNote: "Bb", IsCorrect: true, Timestamp: base.Add(1100 * time.Millisecond)},
	}
	got := NoteStatsFromHistory(history)
	if len(got) != 3 {
		t.Fatalf("expected 3 notes, got %+v", got)
	}
	if got[0].Note != "F" || got[0].Correct != 1 || got[0].LatencyCount != 0 {
		t.Fatalf("unexpected first note: %+v", got[0])
	}
	if got[1].Note != "G" || got[1].Correct != 1 || got[1].Incorrect != 1 || got[1].LatencySumMs != 600 {
		t.Fatalf("unexpected G stats: %+v", got[1])
	}
	if got[2].Note != "A#" || got[2].LatencySumMs != 500 || got[2].LatencyCount != 1 {
		t.Fatalf("unexpected Bb stats: %+v", got[2])
	}
}

func TestRecordFromResult(t *testing.T) {
	start := time.Unix(0, 0)
	result := practice.Result{
		Session: practice.Session{
			ID:          "abc",
			Scale:       theory.NewScale("D", theory.Blues, 3),
			Tempo:       72,
			Direction:   practice.Both,
			Repetitions: 2,
		},
		History: []practice.NotePlayedEvent{
			{IsCorrect: true, OnTime: true},
			{IsCorrect: false},
			{IsCorrect: true, OnTime: false},
		},
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
	}
	rec := RecordFromResult(result)
	if rec.UUID != "abc" || rec.Root != "D" || rec.ScaleType != "blues" || rec.Direction != "both" {
		t.Fatalf("unexpected identity fields: %+v", rec)
	}
	if rec.Correct != 2 || rec.Incorrect != 1 || rec.OnTime != 1 {
		t.Fatalf("unexpected counts: %+v", rec)
	}
	if rec.DurationMs != 90000 || rec.Tempo != 72 || rec.Repetitions != 2 {
		t.Fatalf("unexpected timing fields: %+v", rec)
	}
}

func TestParseNotes(t *testing.T) {
	got := ParseNotes("C, Db c#  H bb")
	want := []string{"C", "C#", "A#"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
