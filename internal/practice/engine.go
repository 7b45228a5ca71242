package practice

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuiano/internal/clock"
	"github.com/verte-zerg/tuiano/internal/theory"
)

const (
	// DefaultCountIn is the delay between starting and scoring.
	DefaultCountIn = 2000 * time.Millisecond
	// DefaultCountdownStep is the interval between countdown labels.
	DefaultCountdownStep = 800 * time.Millisecond
)

var countdownLabels = []string{"3", "2", "1", "GO!"}

// Config wires an Engine to its clock, logger and hooks. Zero values get
// defaults.
type Config struct {
	Clock         clock.Clock
	CountIn       time.Duration
	CountdownStep time.Duration
	Logger        *slog.Logger
	// OnChange runs after any observable change, outside the engine lock.
	OnChange func()
	// OnComplete runs once per finished session while the state is grading.
	OnComplete func(Result)
}

// Engine owns the single practice session and its timers.
type Engine struct {
	mu sync.Mutex

	clock         clock.Clock
	countIn       time.Duration
	countdownStep time.Duration
	logger        *slog.Logger
	onChange      func()
	onComplete    func(Result)

	state    State
	session  *Session
	sequence []theory.ScaleNote
	index    int
	loop     int
	history  []NotePlayedEvent
	err      error

	// run is bumped whenever timers are invalidated; callbacks compare it.
	run            uint64
	countInTimer   clock.Timer
	countdownTimer clock.Timer
	countdownIdx   int

	startedAt time.Time
	nextDue   time.Time
	pausedAt  time.Time
	closed    bool
}

// New returns an idle Engine without a session.
func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.CountIn <= 0 {
		cfg.CountIn = DefaultCountIn
	}
	if cfg.CountdownStep <= 0 {
		cfg.CountdownStep = DefaultCountdownStep
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		clock:         cfg.Clock,
		countIn:       cfg.CountIn,
		countdownStep: cfg.CountdownStep,
		logger:        cfg.Logger,
		onChange:      cfg.OnChange,
		onComplete:    cfg.OnComplete,
		loop:          1,
		countdownIdx:  -1,
	}
}

// SelectScale replaces the session and resets progress. It never starts
// practice.
func (e *Engine) SelectScale(scale theory.Scale, tempo int, dir Direction, repetitions int) error {
	if len(scale.Notes) == 0 {
		return ErrEmptyScale
	}
	if tempo <= 0 {
		return ErrInvalidTempo
	}
	if repetitions < 1 {
		return ErrInvalidRepetitions
	}

	e.mu.Lock()
	e.session = &Session{
		ID:          uuid.NewString(),
		Scale:       scale,
		Tempo:       tempo,
		Direction:   dir,
		Repetitions: repetitions,
	}
	e.resetProgressLocked()
	e.logger.Debug("practice: scale selected",
		"session", e.session.ID,
		"scale", scale.Label(),
		"tempo", tempo,
		"direction", dir.String(),
		"repetitions", repetitions,
	)
	e.mu.Unlock()
	e.notify()
	return nil
}

// StartPractice enters the count-in. A completed session may be restarted;
// each restart is a new run and gets a fresh session ID.
func (e *Engine) StartPractice() error {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return ErrNoSession
	}
	if len(e.sequence) == 0 {
		e.mu.Unlock()
		return ErrEmptyScale
	}
	if e.closed || (e.state != StateIdle && e.state != StateCompleted) {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	if e.state == StateCompleted {
		e.session.ID = uuid.NewString()
	}
	e.resetProgressLocked()
	e.startedAt = e.clock.Now()
	e.setStateLocked(StateCountIn)

	run := e.run
	e.countInTimer = e.clock.AfterFunc(e.countIn, func() { e.finishCountIn(run) })
	e.countdownIdx = 0
	e.countdownTimer = e.clock.AfterFunc(e.countdownStep, func() { e.tickCountdown(run) })
	e.mu.Unlock()
	e.notify()
	return nil
}

// PausePractice suspends grading.
func (e *Engine) PausePractice() error {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.pausedAt = e.clock.Now()
	e.setStateLocked(StatePaused)
	e.mu.Unlock()
	e.notify()
	return nil
}

// ResumePractice continues a paused session. The expected timing window is
// shifted by the time spent paused.
func (e *Engine) ResumePractice() error {
	e.mu.Lock()
	if e.state != StatePaused {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.nextDue = e.nextDue.Add(e.clock.Now().Sub(e.pausedAt))
	e.pausedAt = time.Time{}
	e.setStateLocked(StatePlaying)
	e.mu.Unlock()
	e.notify()
	return nil
}

// StopPractice returns to idle, keeping the selected session.
func (e *Engine) StopPractice() {
	e.mu.Lock()
	e.resetProgressLocked()
	e.mu.Unlock()
	e.notify()
}

// ResetPractice returns to idle and drops the session.
func (e *Engine) ResetPractice() {
	e.mu.Lock()
	e.resetProgressLocked()
	e.session = nil
	e.sequence = nil
	e.mu.Unlock()
	e.notify()
}

// Close cancels every timer. Callbacks that were already scheduled become
// no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopTimersLocked()
	e.closed = true
	e.mu.Unlock()
}

// Fail moves the engine into the error state.
func (e *Engine) Fail(err error) {
	e.mu.Lock()
	e.stopTimersLocked()
	e.err = err
	e.setStateLocked(StateError)
	e.logger.Error("practice: session failed", "err", err)
	e.mu.Unlock()
	e.notify()
}

// RecordNotePlayed grades a played note against the expected one. It
// returns false when the engine is not playing.
func (e *Engine) RecordNotePlayed(note string, octave, midi int) (NotePlayedEvent, bool) {
	e.mu.Lock()
	if e.state != StatePlaying || e.session == nil || len(e.sequence) == 0 {
		e.mu.Unlock()
		return NotePlayedEvent{}, false
	}

	now := e.clock.Now()
	expected := e.sequence[e.index]
	beat := e.beatLocked()
	deviation := now.Sub(e.nextDue)
	event := NotePlayedEvent{
		Note:         note,
		Octave:       octave,
		MIDI:         midi,
		Timestamp:    now,
		IsCorrect:    matches(note, octave, expected),
		ExpectedNote: expected.Note,
		Position:     e.index,
		Loop:         e.loop,
		Deviation:    deviation,
		OnTime:       absDuration(deviation) <= beat/2,
	}
	if event.IsCorrect {
		event.Accuracy = 100
	}
	e.history = append(e.history, event)

	if !event.IsCorrect {
		e.logger.Debug("practice: wrong note", "played", note, "octave", octave, "expected", expected.Label())
		e.mu.Unlock()
		e.notify()
		return event, true
	}

	e.nextDue = now.Add(beat)
	if e.index+1 < len(e.sequence) {
		e.index++
		e.mu.Unlock()
		e.notify()
		return event, true
	}
	if e.loop < e.session.Repetitions {
		e.loop++
		e.index = 0
		e.logger.Debug("practice: loop", "loop", e.loop, "of", e.session.Repetitions)
		e.mu.Unlock()
		e.notify()
		return event, true
	}

	e.setStateLocked(StateGrading)
	result := Result{
		Session:   *e.session,
		History:   append([]NotePlayedEvent(nil), e.history...),
		Stats:     e.statsLocked(),
		StartedAt: e.startedAt,
		EndedAt:   now,
	}
	run := e.run
	e.mu.Unlock()
	e.notify()

	if e.onComplete != nil {
		e.onComplete(result)
	}

	e.mu.Lock()
	if e.run == run && e.state == StateGrading {
		e.setStateLocked(StateCompleted)
	}
	e.mu.Unlock()
	e.notify()
	return event, true
}

// GoToNote moves the expected position. Out-of-range indexes are ignored.
func (e *Engine) GoToNote(index int) bool {
	e.mu.Lock()
	if e.session == nil || index < 0 || index >= len(e.sequence) {
		e.mu.Unlock()
		return false
	}
	switch e.state {
	case StateGrading, StateCompleted, StateError:
		e.mu.Unlock()
		return false
	}
	e.index = index
	e.mu.Unlock()
	e.notify()
	return true
}

// HandleRootChange rebuilds the session scale with a new root.
func (e *Engine) HandleRootChange(root string) error {
	return e.rebuildScale(func(s theory.Scale) (string, theory.ScaleType) {
		return root, s.Type
	})
}

// HandleScaleTypeChange rebuilds the session scale with a new type.
func (e *Engine) HandleScaleTypeChange(scaleType theory.ScaleType) error {
	return e.rebuildScale(func(s theory.Scale) (string, theory.ScaleType) {
		return s.Root, scaleType
	})
}

// HandleTempoChange updates the tempo without resetting progress. Once a
// correct note has been played, the next note is due one new beat after it.
func (e *Engine) HandleTempoChange(bpm int) error {
	if bpm <= 0 {
		return ErrInvalidTempo
	}
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return ErrNoSession
	}
	oldBeat := e.beatLocked()
	e.session.Tempo = bpm
	if e.hasCorrectLocked() {
		e.nextDue = e.nextDue.Add(e.beatLocked() - oldBeat)
	}
	e.mu.Unlock()
	e.notify()
	return nil
}

func (e *Engine) rebuildScale(next func(theory.Scale) (string, theory.ScaleType)) error {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return ErrNoSession
	}
	root, scaleType := next(e.session.Scale)
	octave := e.session.Scale.Notes[0].Octave
	scale := theory.NewScale(root, scaleType, octave)
	if len(scale.Notes) == 0 {
		e.mu.Unlock()
		return ErrEmptyScale
	}
	e.session.Scale = scale
	e.resetProgressLocked()
	e.logger.Debug("practice: scale changed", "session", e.session.ID, "scale", scale.Label())
	e.mu.Unlock()
	e.notify()
	return nil
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns the derived session statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

// ExpectedNote returns the note to play next, if any.
func (e *Engine) ExpectedNote() (theory.ScaleNote, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.expectedLocked()
	if n == nil {
		return theory.ScaleNote{}, false
	}
	return *n, true
}

// NextNote returns the note after the expected one, if any.
func (e *Engine) NextNote() (theory.ScaleNote, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.nextLocked()
	if n == nil {
		return theory.ScaleNote{}, false
	}
	return *n, true
}

// Countdown returns the countdown label and whether it is showing.
func (e *Engine) Countdown() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.countdownLocked()
}

// BeatInterval returns the time per beat at the session tempo.
func (e *Engine) BeatInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.beatLocked()
}

// Snapshot copies all observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		State:            e.state,
		CurrentNoteIndex: e.index,
		CurrentLoop:      e.loop,
		History:          append([]NotePlayedEvent(nil), e.history...),
		Stats:            e.statsLocked(),
		Sequence:         append([]theory.ScaleNote(nil), e.sequence...),
		Err:              e.err,
	}
	if e.session != nil {
		session := *e.session
		snap.Session = &session
	}
	if n := e.expectedLocked(); n != nil {
		expected := *n
		snap.ExpectedNote = &expected
	}
	if n := e.nextLocked(); n != nil {
		next := *n
		snap.NextNote = &next
	}
	snap.Countdown, snap.CountdownActive = e.countdownLocked()
	return snap
}

func (e *Engine) finishCountIn(run uint64) {
	e.mu.Lock()
	if e.closed || run != e.run || e.state != StateCountIn {
		e.mu.Unlock()
		return
	}
	e.countInTimer = nil
	e.nextDue = e.clock.Now()
	e.setStateLocked(StatePlaying)
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) tickCountdown(run uint64) {
	e.mu.Lock()
	if e.closed || run != e.run || e.countdownIdx < 0 {
		e.mu.Unlock()
		return
	}
	e.countdownIdx++
	if e.countdownIdx < len(countdownLabels) {
		e.countdownTimer = e.clock.AfterFunc(e.countdownStep, func() { e.tickCountdown(run) })
	} else {
		e.countdownIdx = -1
		e.countdownTimer = nil
	}
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) resetProgressLocked() {
	e.stopTimersLocked()
	e.index = 0
	e.loop = 1
	e.history = nil
	e.err = nil
	e.startedAt = time.Time{}
	e.nextDue = time.Time{}
	e.pausedAt = time.Time{}
	if e.session != nil {
		e.sequence = NotesForDirection(e.session.Scale.Notes, e.session.Direction)
	}
	e.setStateLocked(StateIdle)
}

func (e *Engine) stopTimersLocked() {
	e.run++
	if e.countInTimer != nil {
		e.countInTimer.Stop()
		e.countInTimer = nil
	}
	if e.countdownTimer != nil {
		e.countdownTimer.Stop()
		e.countdownTimer = nil
	}
	e.countdownIdx = -1
}

func (e *Engine) setStateLocked(next State) {
	if e.state == next {
		return
	}
	e.logger.Debug("practice: state", "from", e.state.String(), "to", next.String())
	e.state = next
}

func (e *Engine) statsLocked() Stats {
	if e.session == nil || len(e.sequence) == 0 {
		return Stats{}
	}
	stats := Stats{TotalNotes: len(e.sequence) * e.session.Repetitions}
	for _, ev := range e.history {
		if ev.IsCorrect {
			stats.CorrectNotes++
		} else {
			stats.IncorrectNotes++
		}
	}
	position := (e.loop-1)*len(e.sequence) + e.index
	if e.state == StateGrading || e.state == StateCompleted {
		position = stats.TotalNotes
	}
	stats.Accuracy = percent(stats.CorrectNotes, stats.TotalNotes)
	stats.Progress = percent(position, stats.TotalNotes)
	return stats
}

func (e *Engine) expectedLocked() *theory.ScaleNote {
	if e.session == nil || len(e.sequence) == 0 {
		return nil
	}
	if e.state == StateGrading || e.state == StateCompleted {
		return nil
	}
	return &e.sequence[e.index]
}

func (e *Engine) nextLocked() *theory.ScaleNote {
	if e.expectedLocked() == nil {
		return nil
	}
	if e.index+1 < len(e.sequence) {
		return &e.sequence[e.index+1]
	}
	if e.loop < e.session.Repetitions {
		return &e.sequence[0]
	}
	return nil
}

func (e *Engine) countdownLocked() (string, bool) {
	if e.countdownIdx < 0 || e.countdownIdx >= len(countdownLabels) {
		return "", false
	}
	return countdownLabels[e.countdownIdx], true
}

// hasCorrectLocked reports whether nextDue is anchored to a played note.
func (e *Engine) hasCorrectLocked() bool {
	for _, ev := range e.history {
		if ev.IsCorrect {
			return true
		}
	}
	return false
}

func (e *Engine) beatLocked() time.Duration {
	if e.session == nil || e.session.Tempo <= 0 {
		return 0
	}
	return time.Minute / time.Duration(e.session.Tempo)
}

func (e *Engine) notify() {
	if e.onChange != nil {
		e.onChange()
	}
}

func matches(note string, octave int, expected theory.ScaleNote) bool {
	if octave != expected.Octave {
		return false
	}
	if note == expected.Note {
		return true
	}
	alt, ok := theory.Enharmonic(note)
	return ok && alt == expected.Note
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
