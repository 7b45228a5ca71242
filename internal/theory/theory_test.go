package theory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiano/internal/theory"
)

func TestGenerateScale(t *testing.T) {
	tests := []struct {
		name      string
		root      string
		scaleType theory.ScaleType
		want      []string
	}{
		{name: "C major", root: "C", scaleType: theory.Major, want: []string{"C", "D", "E", "F", "G", "A", "B"}},
		{name: "F major uses flats", root: "F", scaleType: theory.Major, want: []string{"F", "G", "A", "Bb", "C", "D", "E"}},
		{name: "Gb major spells Cb", root: "Gb", scaleType: theory.Major, want: []string{"Gb", "Ab", "Bb", "Cb", "Db", "Eb", "F"}},
		{name: "C# major spells E# and B#", root: "C#", scaleType: theory.Major, want: []string{"C#", "D#", "E#", "F#", "G#", "A#", "B#"}},
		{name: "A natural minor", root: "A", scaleType: theory.NaturalMinor, want: []string{"A", "B", "C", "D", "E", "F", "G"}},
		{name: "C pentatonic major", root: "C", scaleType: theory.PentatonicMajor, want: []string{"C", "D", "E", "G", "A"}},
		{name: "A pentatonic minor", root: "A", scaleType: theory.PentatonicMinor, want: []string{"A", "C", "D", "E", "G"}},
		{name: "C blues", root: "C", scaleType: theory.Blues, want: []string{"C", "Eb", "F", "Gb", "G", "Bb"}},
		{name: "lowercase root", root: "d", scaleType: theory.Major, want: []string{"D", "E", "F#", "G", "A", "B", "C#"}},
		{name: "double sharp falls back", root: "G#", scaleType: theory.Major, want: []string{"G#", "A#", "B#", "C#", "D#", "E#", "G"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, theory.GenerateScale(tt.root, tt.scaleType))
		})
	}
}

func TestGenerateScaleInvalidInputIsEmpty(t *testing.T) {
	require.Empty(t, theory.GenerateScale("H", theory.Major))
	require.Empty(t, theory.GenerateScale("", theory.Major))
	require.Empty(t, theory.GenerateScale("C", theory.ScaleType("lydian")))
}

func TestGetScaleNotesCMajor(t *testing.T) {
	notes := theory.GetScaleNotes("C", theory.Major, 4)
	require.Len(t, notes, 7)
	require.Equal(t, theory.ScaleNote{Note: "C", Octave: 4, MIDI: 60, Degree: 1, IsRoot: true}, notes[0])
	require.Equal(t, theory.ScaleNote{Note: "B", Octave: 4, MIDI: 71, Degree: 7}, notes[6])
}

func TestGetScaleNotesWrapsOctave(t *testing.T) {
	notes := theory.GetScaleNotes("A", theory.NaturalMinor, 3)
	want := []struct {
		note   string
		octave int
		midi   int
	}{
		{"A", 3, 57}, {"B", 3, 59}, {"C", 4, 60}, {"D", 4, 62}, {"E", 4, 64}, {"F", 4, 65}, {"G", 4, 67},
	}
	require.Len(t, notes, len(want))
	for i, w := range want {
		require.Equal(t, w.note, notes[i].Note)
		require.Equal(t, w.octave, notes[i].Octave)
		require.Equal(t, w.midi, notes[i].MIDI)
		require.Equal(t, i+1, notes[i].Degree)
		require.Equal(t, i == 0, notes[i].IsRoot)
	}
}

func TestGetScaleNotesStrictlyIncreasing(t *testing.T) {
	for _, root := range theory.Roots() {
		for _, st := range theory.ScaleTypes() {
			notes := theory.GetScaleNotes(root, st, 4)
			require.NotEmpty(t, notes, "%s %s", root, st)
			for i := 1; i < len(notes); i++ {
				require.Greater(t, notes[i].MIDI, notes[i-1].MIDI, "%s %s at degree %d", root, st, i+1)
			}
		}
	}
}

func TestGetScaleNotesOutOfMIDIRange(t *testing.T) {
	require.Empty(t, theory.GetScaleNotes("B", theory.Major, 9))
	require.Empty(t, theory.GetScaleNotes("C", theory.Major, -2))
}

func TestEnharmonic(t *testing.T) {
	alt, ok := theory.Enharmonic("C#")
	require.True(t, ok)
	require.Equal(t, "Db", alt)

	alt, ok = theory.Enharmonic("Db")
	require.True(t, ok)
	require.Equal(t, "C#", alt)

	alt, ok = theory.Enharmonic("B")
	require.True(t, ok)
	require.Equal(t, "Cb", alt)

	_, ok = theory.Enharmonic("C##")
	require.False(t, ok)
}

func TestNoteFromMIDI(t *testing.T) {
	name, octave := theory.NoteFromMIDI(60)
	require.Equal(t, "C", name)
	require.Equal(t, 4, octave)

	name, octave = theory.NoteFromMIDI(70)
	require.Equal(t, "A#", name)
	require.Equal(t, 4, octave)

	name, octave = theory.NoteFromMIDI(21)
	require.Equal(t, "A", name)
	require.Equal(t, 0, octave)
}

func TestTransposeKeepsSpelling(t *testing.T) {
	require.Equal(t, "C#", theory.Transpose("C", 1))
	require.Equal(t, "Ab", theory.Transpose("Bb", -2))
	require.Equal(t, "B", theory.Transpose("C", -1))
}

func TestParseScaleType(t *testing.T) {
	st, ok := theory.ParseScaleType("Minor")
	require.True(t, ok)
	require.Equal(t, theory.NaturalMinor, st)

	st, ok = theory.ParseScaleType("blues")
	require.True(t, ok)
	require.Equal(t, theory.Blues, st)

	_, ok = theory.ParseScaleType("dorian")
	require.False(t, ok)

	require.Equal(t, theory.Major, theory.Blues.Next())
}
