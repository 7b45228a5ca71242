package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tuiano.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		rec := model.SessionRecord{
			UUID:        "s",
			StartedAt:   start,
			EndedAt:     end,
			Root:        "C",
			ScaleType:   "major",
			Direction:   "ascending",
			Tempo:       80,
			Repetitions: 1,
			Correct:     10,
			Incorrect:   1,
			OnTime:      8,
			DurationMs:  end.Sub(start).Milliseconds(),
		}
		noteStats := []model.NoteStats{
			{Note: "C", Correct: 5, Incorrect: 0},
			{Note: "D", Correct: 4, Incorrect: 1},
			{Note: "E", Correct: 1, Incorrect: 0},
		}
		id, err := st.InsertSession(ctx, rec, noteStats)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		ScaleType:   "major",
		Last:        2,
		CurveWindow: 2,
		Notes:       "C,Eb",
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 2 {
		t.Fatalf("expected 2 window session ids, got %d", len(report.WindowSessionIDs))
	}
	if len(report.NoteAggsAll) != 3 {
		t.Fatalf("expected 3 note aggregates, got %d", len(report.NoteAggsAll))
	}
	if len(report.NoteAggsWindow) == 0 {
		t.Fatalf("expected note aggregates for window sessions")
	}
	if len(report.CurveNotes) != 2 || report.CurveNotes[0] != "C" || report.CurveNotes[1] != "D#" {
		t.Fatalf("unexpected curve notes: %v", report.CurveNotes)
	}
	if report.PerSession[ids[2]]["C"].Correct != 5 {
		t.Fatalf("expected per-session stats for C, got %+v", report.PerSession)
	}

	cfg.Notes = ""
	report, err = BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.CurveNotes) != 3 || report.CurveNotes[0] != "C" {
		t.Fatalf("expected most played notes, got %v", report.CurveNotes)
	}
}
