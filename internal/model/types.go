// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Root        string
	ScaleType   string
	Direction   string
	Tempo       int
	Repetitions int
	Octave      int
	Random      bool
	FocusWeak   bool
	WeakTop     int
	WeakFactor  float64
	WeakWindow  int
	CountInMs   int
	SoundFont   string
	SampleRate  int
	NoAudio     bool
	MIDIPort    string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	ScaleType   string
	Since       *time.Time
	Last        int
	CurveWindow int
	Notes       string
}

// SessionRecord captures a completed practice session.
type SessionRecord struct {
	UUID        string
	StartedAt   time.Time
	EndedAt     time.Time
	Root        string
	ScaleType   string
	Direction   string
	Tempo       int
	Repetitions int
	Correct     int
	Incorrect   int
	OnTime      int
	DurationMs  int64
}

// NoteStats stores per-pitch-class stats for a session. Note uses sharp
// spelling so enharmonic scales aggregate together.
type NoteStats struct {
	Note         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// NoteAggregate aggregates note stats across sessions.
type NoteAggregate struct {
	Note         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Root       string
	ScaleType  string
	Tempo      int
	Correct    int
	Incorrect  int
	OnTime     int
	DurationMs int64
}
