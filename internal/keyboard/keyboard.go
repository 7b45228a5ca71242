// Package keyboard maps computer keys to piano keys.
package keyboard

import "github.com/verte-zerg/tuiano/internal/theory"

type (
	// Key is one playable piano key.
	Key struct {
		// MIDI note number, C4=60.
		MIDI int
		// Sharp spelling, ex: "C", "F#".
		Name   string
		Octave int
		// Black key.
		IsAccidental bool
		// qwerty key that plays it.
		Binding string
	}

	Keys []Key

	BindingMap map[string]Key
)

const (
	MinOctave = 1
	MaxOctave = 7
)

// qwerty keys ordered so the home row holds the naturals and the q-row the
// accidentals, close to real piano fingering.
var bindings = []string{"a", "w", "s", "e", "d", "f", "t", "g", "y", "h", "u", "j", "k", "o", "l", "p", ";", "'"}

// Layout returns the 18 keys starting at C of octave.
func Layout(octave int) Keys {
	base := 12 * (octave + 1)
	keys := make(Keys, 0, len(bindings))
	for i, b := range bindings {
		midi := base + i
		name, oct := theory.NoteFromMIDI(midi)
		keys = append(keys, Key{
			MIDI:         midi,
			Name:         name,
			Octave:       oct,
			IsAccidental: len(name) > 1,
			Binding:      b,
		})
	}
	return keys
}

func (keys Keys) BindingMap() BindingMap {
	m := make(BindingMap, len(keys))
	for _, k := range keys {
		m[k.Binding] = k
	}
	return m
}

// InRange reports whether midi is on an 88-key piano or above it.
func InRange(midi int) bool {
	return midi > 20 && midi < 128
}

// Board is the virtual keyboard with a movable octave.
type Board struct {
	octave int
	keys   Keys
	byKey  BindingMap
}

func NewBoard(octave int) *Board {
	b := &Board{}
	b.setOctave(octave)
	return b
}

// Press resolves a key binding. Keys outside the playable range are ignored.
func (b *Board) Press(binding string) (Key, bool) {
	k, ok := b.byKey[binding]
	if !ok || !InRange(k.MIDI) {
		return Key{}, false
	}
	return k, true
}

// ShiftOctave moves the board by delta octaves, clamped to MinOctave..MaxOctave.
func (b *Board) ShiftOctave(delta int) {
	b.setOctave(b.octave + delta)
}

func (b *Board) Octave() int {
	return b.octave
}

func (b *Board) Keys() Keys {
	return b.keys
}

func (b *Board) setOctave(octave int) {
	if octave < MinOctave {
		octave = MinOctave
	}
	if octave > MaxOctave {
		octave = MaxOctave
	}
	b.octave = octave
	b.keys = Layout(octave)
	b.byKey = b.keys.BindingMap()
}
