package stats

import (
	"strings"

	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/practice"
	"github.com/verte-zerg/tuiano/internal/theory"
)

// NormalizeNote returns the sharp spelling of a pitch class, so Bb and A#
// share one row.
func NormalizeNote(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	chroma, ok := theory.Chroma(strings.ToUpper(name[:1]) + name[1:])
	if !ok {
		return "", false
	}
	note, _ := theory.NoteFromMIDI(60 + chroma)
	return note, true
}

// ParseNotes reads a comma or space separated note list. Unknown names are
// dropped.
func ParseNotes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	seen := map[string]struct{}{}
	var out []string
	for _, f := range fields {
		note, ok := NormalizeNote(strings.TrimSpace(f))
		if !ok {
			continue
		}
		if _, dup := seen[note]; dup {
			continue
		}
		seen[note] = struct{}{}
		out = append(out, note)
	}
	return out
}

// NoteStatsFromHistory groups graded events by expected pitch class. A
// correct note's latency is the gap since the previous correct note.
func NoteStatsFromHistory(history []practice.NotePlayedEvent) []model.NoteStats {
	byNote := map[string]*model.NoteStats{}
	var order []string
	var lastCorrect *practice.NotePlayedEvent
	for i := range history {
		ev := &history[i]
		note, ok := NormalizeNote(ev.ExpectedNote)
		if !ok {
			continue
		}
		ns, exists := byNote[note]
		if !exists {
			ns = &model.NoteStats{Note: note}
			byNote[note] = ns
			order = append(order, note)
		}
		if !ev.IsCorrect {
			ns.Incorrect++
			continue
		}
		ns.Correct++
		if lastCorrect != nil {
			ns.LatencySumMs += ev.Timestamp.Sub(lastCorrect.Timestamp).Milliseconds()
			ns.LatencyCount++
		}
		lastCorrect = ev
	}
	out := make([]model.NoteStats, 0, len(order))
	for _, note := range order {
		out = append(out, *byNote[note])
	}
	return out
}

// RecordFromResult converts a finished practice run into a session row.
func RecordFromResult(r practice.Result) model.SessionRecord {
	rec := model.SessionRecord{
		UUID:        r.Session.ID,
		StartedAt:   r.StartedAt,
		EndedAt:     r.EndedAt,
		Root:        r.Session.Scale.Root,
		ScaleType:   string(r.Session.Scale.Type),
		Direction:   r.Session.Direction.String(),
		Tempo:       r.Session.Tempo,
		Repetitions: r.Session.Repetitions,
		DurationMs:  r.EndedAt.Sub(r.StartedAt).Milliseconds(),
	}
	for _, ev := range r.History {
		if !ev.IsCorrect {
			rec.Incorrect++
			continue
		}
		rec.Correct++
		if ev.OnTime {
			rec.OnTime++
		}
	}
	return rec
}
