// Package theory spells scales and maps pitch names to MIDI numbers.
package theory

import (
	"strconv"
	"strings"
)

// ScaleType names a supported scale.
type ScaleType string

const (
	Major           ScaleType = "major"
	NaturalMinor    ScaleType = "natural-minor"
	PentatonicMajor ScaleType = "pentatonic-major"
	PentatonicMinor ScaleType = "pentatonic-minor"
	Blues           ScaleType = "blues"
)

// ScaleNote is one pitch of a generated scale.
type ScaleNote struct {
	Note   string
	Octave int
	MIDI   int
	// 1-based position within the scale.
	Degree int
	IsRoot bool
}

// Scale is an ordered set of notes built from a root and a scale type.
type Scale struct {
	Root  string
	Type  ScaleType
	Notes []ScaleNote
}

// interval is a scale step: how many letters above the root and how many
// semitones above it.
type interval struct {
	steps     int
	semitones int
}

var scaleIntervals = map[ScaleType][]interval{
	Major:           {{0, 0}, {1, 2}, {2, 4}, {3, 5}, {4, 7}, {5, 9}, {6, 11}},
	NaturalMinor:    {{0, 0}, {1, 2}, {2, 3}, {3, 5}, {4, 7}, {5, 8}, {6, 10}},
	PentatonicMajor: {{0, 0}, {1, 2}, {2, 4}, {4, 7}, {5, 9}},
	PentatonicMinor: {{0, 0}, {2, 3}, {3, 5}, {4, 7}, {6, 10}},
	Blues:           {{0, 0}, {2, 3}, {3, 5}, {4, 6}, {4, 7}, {6, 10}},
}

var scaleTypeOrder = []ScaleType{Major, NaturalMinor, PentatonicMajor, PentatonicMinor, Blues}

const letters = "CDEFGAB"

var letterChroma = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

var (
	sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = []string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

var roots = []string{"C", "C#", "Db", "D", "D#", "Eb", "E", "F", "F#", "Gb", "G", "G#", "Ab", "A", "A#", "Bb", "B"}

var enharmonics = map[string]string{
	"C#": "Db", "Db": "C#",
	"D#": "Eb", "Eb": "D#",
	"F#": "Gb", "Gb": "F#",
	"G#": "Ab", "Ab": "G#",
	"A#": "Bb", "Bb": "A#",
	"E#": "F", "F": "E#",
	"B#": "C", "C": "B#",
	"Cb": "B", "B": "Cb",
	"Fb": "E", "E": "Fb",
}

// ScaleTypes lists the supported scale types.
func ScaleTypes() []ScaleType {
	return append([]ScaleType(nil), scaleTypeOrder...)
}

// ParseScaleType resolves a scale type name. "minor" is accepted for
// natural-minor.
func ParseScaleType(s string) (ScaleType, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "minor" {
		return NaturalMinor, true
	}
	st := ScaleType(name)
	if _, ok := scaleIntervals[st]; !ok {
		return "", false
	}
	return st, true
}

// Next returns the scale type following t, wrapping around.
func (t ScaleType) Next() ScaleType {
	for i, st := range scaleTypeOrder {
		if st == t {
			return scaleTypeOrder[(i+1)%len(scaleTypeOrder)]
		}
	}
	return scaleTypeOrder[0]
}

// Roots lists the accepted root spellings.
func Roots() []string {
	return append([]string(nil), roots...)
}

// NormalizeRoot canonicalizes user input such as "c#" or "bb".
func NormalizeRoot(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	name := strings.ToUpper(s[:1]) + s[1:]
	for _, r := range roots {
		if r == name {
			return r, true
		}
	}
	return "", false
}

// Chroma returns the chromatic position (0-11, C=0) of a pitch name.
func Chroma(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	base, ok := letterChroma[name[0]]
	if !ok {
		return 0, false
	}
	for i := 1; i < len(name); i++ {
		switch name[i] {
		case '#':
			base++
		case 'b':
			base--
		default:
			return 0, false
		}
	}
	return mod12(base), true
}

// Enharmonic returns the single-step alternate spelling of a pitch name.
func Enharmonic(name string) (string, bool) {
	alt, ok := enharmonics[name]
	return alt, ok
}

// MIDI returns the MIDI number for a pitch name in an octave (C4 = 60).
func MIDI(name string, octave int) (int, bool) {
	chroma, ok := Chroma(name)
	if !ok {
		return 0, false
	}
	midi := (octave+1)*12 + chroma
	if midi < 0 || midi > 127 {
		return 0, false
	}
	return midi, true
}

// NoteFromMIDI returns the sharp spelling and octave of a MIDI number.
func NoteFromMIDI(midi int) (string, int) {
	octave := midi/12 - 1
	return sharpNames[mod12(midi)], octave
}

// Transpose moves a root by semitones, keeping flat spelling for flat roots.
func Transpose(root string, semitones int) string {
	chroma, ok := Chroma(root)
	if !ok {
		return root
	}
	target := mod12(chroma + semitones)
	if strings.Contains(root[1:], "b") {
		return flatNames[target]
	}
	return sharpNames[target]
}

// GenerateScale returns the pitch classes of a scale, or nil when root or
// type is not supported.
func GenerateScale(root string, scaleType ScaleType) []string {
	steps, ok := scaleIntervals[scaleType]
	if !ok {
		return nil
	}
	root, ok = NormalizeRoot(root)
	if !ok {
		return nil
	}
	rootChroma, _ := Chroma(root)
	rootLetter := strings.IndexByte(letters, root[0])
	preferFlat := strings.HasSuffix(root, "b")

	names := make([]string, 0, len(steps))
	for _, iv := range steps {
		names = append(names, spell(rootLetter, rootChroma, iv, preferFlat))
	}
	return names
}

// GetScaleNotes lays a scale out from startOctave so that pitch never
// decreases. Notes whose chroma is below the root's move up one octave.
func GetScaleNotes(root string, scaleType ScaleType, startOctave int) []ScaleNote {
	names := GenerateScale(root, scaleType)
	if len(names) == 0 {
		return nil
	}
	rootChroma, _ := Chroma(names[0])
	notes := make([]ScaleNote, 0, len(names))
	for i, name := range names {
		chroma, _ := Chroma(name)
		octave := startOctave
		if chroma < rootChroma {
			octave++
		}
		midi, ok := MIDI(name, octave)
		if !ok {
			return nil
		}
		notes = append(notes, ScaleNote{
			Note:   name,
			Octave: octave,
			MIDI:   midi,
			Degree: i + 1,
			IsRoot: i == 0,
		})
	}
	return notes
}

// NewScale builds a Scale. Notes is empty for unsupported input.
func NewScale(root string, scaleType ScaleType, startOctave int) Scale {
	if normalized, ok := NormalizeRoot(root); ok {
		root = normalized
	}
	return Scale{
		Root:  root,
		Type:  scaleType,
		Notes: GetScaleNotes(root, scaleType, startOctave),
	}
}

// Label renders a scale name such as "C major".
func (s Scale) Label() string {
	return s.Root + " " + string(s.Type)
}

// Label renders a note with its octave, for example "C#4".
func (n ScaleNote) Label() string {
	return n.Note + strconv.Itoa(n.Octave)
}

func spell(rootLetter, rootChroma int, iv interval, preferFlat bool) string {
	letter := letters[(rootLetter+iv.steps)%len(letters)]
	target := mod12(rootChroma + iv.semitones)
	diff := mod12(target - letterChroma[letter])
	if diff > 6 {
		diff -= 12
	}
	switch diff {
	case 0:
		return string(letter)
	case 1:
		return string(letter) + "#"
	case -1:
		return string(letter) + "b"
	}
	if preferFlat {
		return flatNames[target]
	}
	return sharpNames[target]
}

func mod12(v int) int {
	return ((v % 12) + 12) % 12
}
