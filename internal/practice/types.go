// Package practice runs a scale practice session: count-in, note grading,
// looping and completion.
package practice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/tuiano/internal/theory"
)

// State is the lifecycle position of the practice engine.
type State int

const (
	StateIdle State = iota
	StateCountIn
	StatePlaying
	StatePaused
	StateGrading
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountIn:
		return "count-in"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGrading:
		return "grading"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Direction controls the order in which scale notes are practiced.
type Direction int

const (
	Ascending Direction = iota
	Descending
	Both
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection resolves "ascending", "descending" or "both".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "up":
		return Ascending, nil
	case "descending", "down":
		return Descending, nil
	case "both", "up-down":
		return Both, nil
	default:
		return Ascending, fmt.Errorf("unknown direction %q (want ascending, descending or both)", s)
	}
}

var (
	ErrNoSession          = errors.New("no practice session selected")
	ErrEmptyScale         = errors.New("scale has no notes")
	ErrInvalidTempo       = errors.New("tempo must be greater than 0")
	ErrInvalidRepetitions = errors.New("repetitions must be at least 1")
	ErrInvalidTransition  = errors.New("invalid state transition")
)

// Session is the configuration of one practice run.
type Session struct {
	ID          string
	Scale       theory.Scale
	Tempo       int
	Direction   Direction
	Repetitions int
}

// NotePlayedEvent records one graded note.
type NotePlayedEvent struct {
	Note         string
	Octave       int
	MIDI         int
	Timestamp    time.Time
	IsCorrect    bool
	ExpectedNote string
	// 100 for a correct note, 0 otherwise.
	Accuracy int
	Position int
	Loop     int
	// Deviation from the tempo-derived expected time; positive means late.
	Deviation time.Duration
	OnTime    bool
}

// Stats are derived from the session and its history.
type Stats struct {
	TotalNotes     int
	CorrectNotes   int
	IncorrectNotes int
	Accuracy       int
	Progress       int
}

// Snapshot is a copy of every observable engine output.
type Snapshot struct {
	State            State
	Session          *Session
	CurrentNoteIndex int
	CurrentLoop      int
	History          []NotePlayedEvent
	Stats            Stats
	ExpectedNote     *theory.ScaleNote
	NextNote         *theory.ScaleNote
	Sequence         []theory.ScaleNote
	Countdown        string
	CountdownActive  bool
	Err              error
}

// Result summarizes a completed session.
type Result struct {
	Session   Session
	History   []NotePlayedEvent
	Stats     Stats
	StartedAt time.Time
	EndedAt   time.Time
}
