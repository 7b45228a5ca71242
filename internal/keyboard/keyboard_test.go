package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiano/internal/keyboard"
)

func TestLayout(t *testing.T) {
	got := keyboard.Layout(4)
	want := []keyboard.Key{
		{MIDI: 60, Binding: "a", Name: "C", Octave: 4},
		{MIDI: 61, Binding: "w", Name: "C#", Octave: 4, IsAccidental: true},
		{MIDI: 62, Binding: "s", Name: "D", Octave: 4},
		{MIDI: 63, Binding: "e", Name: "D#", Octave: 4, IsAccidental: true},
		{MIDI: 64, Binding: "d", Name: "E", Octave: 4},
		{MIDI: 65, Binding: "f", Name: "F", Octave: 4},
		{MIDI: 66, Binding: "t", Name: "F#", Octave: 4, IsAccidental: true},
		{MIDI: 67, Binding: "g", Name: "G", Octave: 4},
		{MIDI: 68, Binding: "y", Name: "G#", Octave: 4, IsAccidental: true},
		{MIDI: 69, Binding: "h", Name: "A", Octave: 4},
		{MIDI: 70, Binding: "u", Name: "A#", Octave: 4, IsAccidental: true},
		{MIDI: 71, Binding: "j", Name: "B", Octave: 4},
		{MIDI: 72, Binding: "k", Name: "C", Octave: 5},
		{MIDI: 73, Binding: "o", Name: "C#", Octave: 5, IsAccidental: true},
		{MIDI: 74, Binding: "l", Name: "D", Octave: 5},
		{MIDI: 75, Binding: "p", Name: "D#", Octave: 5, IsAccidental: true},
		{MIDI: 76, Binding: ";", Name: "E", Octave: 5},
		{MIDI: 77, Binding: "'", Name: "F", Octave: 5},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		require.Equal(t, w, got[i])
	}
}

func TestBoardPressAndShift(t *testing.T) {
	b := keyboard.NewBoard(4)
	k, ok := b.Press("g")
	require.True(t, ok)
	require.Equal(t, 67, k.MIDI)

	_, ok = b.Press("q")
	require.False(t, ok)

	b.ShiftOctave(-1)
	require.Equal(t, 3, b.Octave())
	k, _ = b.Press("a")
	require.Equal(t, "C", k.Name)
	require.Equal(t, 3, k.Octave)
	require.Equal(t, 48, k.MIDI)

	b.ShiftOctave(-10)
	require.Equal(t, keyboard.MinOctave, b.Octave())
	b.ShiftOctave(10)
	require.Equal(t, keyboard.MaxOctave, b.Octave())
	require.Len(t, b.Keys(), 18)
}

func TestInRange(t *testing.T) {
	require.False(t, keyboard.InRange(20))
	require.True(t, keyboard.InRange(21))
	require.True(t, keyboard.InRange(127))
	require.False(t, keyboard.InRange(128))
}
