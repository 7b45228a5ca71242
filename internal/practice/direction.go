package practice

import "github.com/verte-zerg/tuiano/internal/theory"

// NotesForDirection orders scale notes for a direction. Both plays the scale
// up and back down without repeating the peak note.
func NotesForDirection(notes []theory.ScaleNote, dir Direction) []theory.ScaleNote {
	if len(notes) == 0 {
		return nil
	}
	out := make([]theory.ScaleNote, 0, 2*len(notes)-1)
	switch dir {
	case Descending:
		for i := len(notes) - 1; i >= 0; i-- {
			out = append(out, notes[i])
		}
	case Both:
		out = append(out, notes...)
		for i := len(notes) - 2; i >= 0; i-- {
			out = append(out, notes[i])
		}
	default:
		out = append(out, notes...)
	}
	return out
}
