// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiano/internal/audio"
	"github.com/verte-zerg/tuiano/internal/clock"
	"github.com/verte-zerg/tuiano/internal/generator"
	"github.com/verte-zerg/tuiano/internal/keyboard"
	"github.com/verte-zerg/tuiano/internal/midiin"
	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/practice"
	statsPkg "github.com/verte-zerg/tuiano/internal/stats"
	"github.com/verte-zerg/tuiano/internal/store"
	"github.com/verte-zerg/tuiano/internal/theory"
)

const (
	MinTempo  = 20
	MaxTempo  = 300
	TempoStep = 5
)

// Options wires the practice screen. Store, Player and Notes may be nil.
type Options struct {
	Config  model.Config
	Store   *store.Store
	Gen     *generator.Generator
	Player  audio.Player
	Clock   clock.Clock
	Logger  *slog.Logger
	WeakSet map[string]struct{}
	// Notes delivers MIDI keyboard input.
	Notes <-chan midiin.NoteEvent
}

type (
	wakeMsg struct{}
	noteMsg struct {
		event midiin.NoteEvent
		ok    bool
	}
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	config  model.Config
	store   *store.Store
	gen     *generator.Generator
	player  audio.Player
	clock   clock.Clock
	logger  *slog.Logger
	weakSet map[string]struct{}
	notes   <-chan midiin.NoteEvent

	engine *practice.Engine
	board  *keyboard.Board
	keys   keyMap
	help   help.Model
	wake   chan struct{}

	exercise    generator.Exercise
	direction   practice.Direction
	tempo       int
	repetitions int
	startOctave int

	width  int
	height int

	hasPressed     bool
	pressedMIDI    int
	pressedCorrect bool
	status         string

	lastNPM float64
	lastHit float64
	hasLast bool

	allNPM       float64
	allHit       float64
	allCorrect   int
	allIncorrect int
	allDuration  int64
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle    = accentStyle.Underline(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	countdownStyle = accentStyle.Bold(true)
)

// NewModel constructs the practice model and selects the first exercise.
func NewModel(opts Options) (*Model, error) {
	cfg := opts.Config
	root, ok := theory.NormalizeRoot(cfg.Root)
	if !ok {
		return nil, fmt.Errorf("unknown root %q", cfg.Root)
	}
	scaleType, ok := theory.ParseScaleType(cfg.ScaleType)
	if !ok {
		return nil, fmt.Errorf("unknown scale type %q", cfg.ScaleType)
	}
	dir, err := practice.ParseDirection(cfg.Direction)
	if err != nil {
		return nil, err
	}
	if opts.Gen == nil {
		opts.Gen = generator.New()
	}
	if opts.Player == nil {
		opts.Player = audio.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := &Model{
		config:      cfg,
		store:       opts.Store,
		gen:         opts.Gen,
		player:      opts.Player,
		clock:       opts.Clock,
		logger:      opts.Logger,
		weakSet:     opts.WeakSet,
		notes:       opts.Notes,
		board:       keyboard.NewBoard(cfg.Octave),
		keys:        keys,
		help:        help.New(),
		wake:        make(chan struct{}, 1),
		exercise:    generator.Exercise{Root: root, Type: scaleType},
		direction:   dir,
		tempo:       clampTempo(cfg.Tempo),
		repetitions: cfg.Repetitions,
		startOctave: cfg.Octave,
	}
	m.engine = practice.New(practice.Config{
		Clock:      opts.Clock,
		CountIn:    time.Duration(cfg.CountInMs) * time.Millisecond,
		Logger:     opts.Logger,
		OnChange:   m.wakeUp,
		OnComplete: m.finishSession,
	})
	if cfg.Random {
		m.exercise = m.pickExercise()
	}
	if err := m.selectExercise(); err != nil {
		return nil, err
	}
	m.loadFooterStats()
	return m, nil
}

// Fail moves the session into the error state. Safe from any goroutine.
func (m *Model) Fail(err error) {
	m.engine.Fail(err)
}

// Close stops all engine timers.
func (m *Model) Close() {
	m.engine.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForWake(m.wake), waitForNote(m.notes))
}

func waitForWake(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return wakeMsg{}
	}
}

func waitForNote(ch <-chan midiin.NoteEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		return noteMsg{event: ev, ok: ok}
	}
}

// wakeUp never blocks: one pending wake is enough to redraw.
func (m *Model) wakeUp() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case wakeMsg:
		return m, waitForWake(m.wake)
	case noteMsg:
		if !msg.ok {
			m.status = "MIDI input closed"
			return m, nil
		}
		m.play(msg.event.Note, msg.event.Octave, msg.event.MIDI, msg.event.Velocity)
		return m, waitForNote(m.notes)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		m.start()
	case key.Matches(msg, m.keys.Pause):
		m.togglePause()
	case key.Matches(msg, m.keys.Stop):
		m.engine.StopPractice()
	case key.Matches(msg, m.keys.Reset):
		m.engine.ResetPractice()
	case key.Matches(msg, m.keys.OctaveDown):
		m.board.ShiftOctave(-1)
	case key.Matches(msg, m.keys.OctaveUp):
		m.board.ShiftOctave(1)
	case key.Matches(msg, m.keys.RootDown):
		m.changeRoot(-1)
	case key.Matches(msg, m.keys.RootUp):
		m.changeRoot(1)
	case key.Matches(msg, m.keys.NextType):
		m.changeScaleType()
	case key.Matches(msg, m.keys.TempoUp):
		m.changeTempo(TempoStep)
	case key.Matches(msg, m.keys.TempoDown):
		m.changeTempo(-TempoStep)
	case key.Matches(msg, m.keys.PrevNote):
		m.engine.GoToNote(m.engine.Snapshot().CurrentNoteIndex - 1)
	case key.Matches(msg, m.keys.NextNote):
		m.engine.GoToNote(m.engine.Snapshot().CurrentNoteIndex + 1)
	case key.Matches(msg, m.keys.Random):
		m.exercise = m.pickExercise()
		m.reportErr("select exercise", m.selectExercise())
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
		if k, ok := m.board.Press(string(msg.Runes)); ok {
			m.play(k.Name, k.Octave, k.MIDI, audio.DefaultVelocity)
		}
	}
	return m, nil
}

func (m *Model) start() {
	if m.engine.Snapshot().Session == nil {
		if err := m.selectExercise(); err != nil {
			m.reportErr("select exercise", err)
			return
		}
	}
	switch m.engine.State() {
	case practice.StateIdle, practice.StateCompleted:
		m.reportErr("start practice", m.engine.StartPractice())
	}
}

func (m *Model) togglePause() {
	switch m.engine.State() {
	case practice.StatePlaying:
		m.reportErr("pause practice", m.engine.PausePractice())
	case practice.StatePaused:
		m.reportErr("resume practice", m.engine.ResumePractice())
	}
}

func (m *Model) changeRoot(delta int) {
	roots := theory.Roots()
	idx := 0
	for i, r := range roots {
		if r == m.exercise.Root {
			idx = i
			break
		}
	}
	m.exercise.Root = roots[(idx+delta+len(roots))%len(roots)]
	m.applyExercise(m.engine.HandleRootChange(m.exercise.Root))
}

func (m *Model) changeScaleType() {
	m.exercise.Type = m.exercise.Type.Next()
	m.applyExercise(m.engine.HandleScaleTypeChange(m.exercise.Type))
}

// applyExercise handles a rebuild result; without a session the new
// exercise is selected on the next start.
func (m *Model) applyExercise(err error) {
	if errors.Is(err, practice.ErrNoSession) {
		return
	}
	m.reportErr("change scale", err)
}

func (m *Model) changeTempo(delta int) {
	m.tempo = clampTempo(m.tempo + delta)
	if err := m.engine.HandleTempoChange(m.tempo); err != nil && !errors.Is(err, practice.ErrNoSession) {
		m.reportErr("change tempo", err)
	}
}

func (m *Model) play(note string, octave, midi, velocity int) {
	if keyboard.InRange(midi) {
		audio.Strike(m.player, m.clock, midi, velocity, audio.DefaultHold)
	}
	m.hasPressed = true
	m.pressedMIDI = midi
	m.pressedCorrect = false
	if ev, ok := m.engine.RecordNotePlayed(note, octave, midi); ok {
		m.pressedCorrect = ev.IsCorrect
	}
}

func (m *Model) pickExercise() generator.Exercise {
	roots := theory.Roots()
	types := theory.ScaleTypes()
	if m.config.FocusWeak && len(m.weakSet) > 0 {
		return m.gen.PickWeighted(roots, types, m.weakSet, m.config.WeakFactor)
	}
	return m.gen.Pick(roots, types)
}

func (m *Model) selectExercise() error {
	scale := theory.NewScale(m.exercise.Root, m.exercise.Type, m.startOctave)
	if err := m.engine.SelectScale(scale, m.tempo, m.direction, m.repetitions); err != nil {
		return fmt.Errorf("failed to select %s: %w", scale.Label(), err)
	}
	m.logger.Info("exercise selected", "scale", scale.Label(), "tempo", m.tempo)
	return nil
}

func (m *Model) reportErr(action string, err error) {
	if err == nil {
		return
	}
	m.status = fmt.Sprintf("%s: %v", action, err)
	m.logger.Warn("tui: "+action, "err", err)
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.engine.Snapshot()
	contentWidth := m.width
	if contentWidth > 0 {
		contentWidth = int(float64(m.width) * 0.70)
		if contentWidth < 1 {
			contentWidth = 1
		}
	}

	parts := []string{
		m.renderHeader(snap),
		m.renderStatus(snap),
		wrapCells(buildSequenceCells(snap), contentWidth),
		renderPiano(m.board.Keys(), m.pianoRoles(snap)),
	}
	if hint := m.offBoardHint(snap); hint != "" {
		parts = append(parts, footerStyle.Render(hint))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, withGaps(parts)...)
	footer := m.renderFooter(snap)
	helpView := m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer + "\n" + helpView
	}
	if m.height < 6 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpView)
	return body + "\n" + footerLine + "\n" + helpLine
}

func withGaps(parts []string) []string {
	out := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, p)
	}
	return out
}

func (m *Model) renderHeader(snap practice.Snapshot) string {
	label := theory.Scale{Root: m.exercise.Root, Type: m.exercise.Type}.Label()
	tempo := m.tempo
	loop := fmt.Sprintf("loop -/%d", m.repetitions)
	if snap.Session != nil {
		label = snap.Session.Scale.Label()
		tempo = snap.Session.Tempo
		loop = fmt.Sprintf("loop %d/%d", snap.CurrentLoop, snap.Session.Repetitions)
	}
	segments := []string{
		headerStyle.Render(label),
		m.direction.String(),
		fmt.Sprintf("%d bpm", tempo),
		loop,
		fmt.Sprintf("octave %d", m.board.Octave()),
	}
	return strings.Join(segments, "  ·  ")
}

func (m *Model) renderStatus(snap practice.Snapshot) string {
	if m.status != "" {
		return incorrectStyle.Render(m.status)
	}
	switch snap.State {
	case practice.StateCountIn:
		if snap.CountdownActive {
			return countdownStyle.Render(snap.Countdown)
		}
		return countdownStyle.Render("Get ready")
	case practice.StateIdle:
		if snap.Session == nil {
			return pendingStyle.Render("Reset. Press enter to start")
		}
		return pendingStyle.Render("Press enter to start")
	case practice.StatePaused:
		return accentStyle.Render("Paused")
	case practice.StateGrading, practice.StateCompleted:
		return correctStyle.Render(fmt.Sprintf("Done! %d%% accuracy. Press enter to go again", snap.Stats.Accuracy))
	case practice.StateError:
		return incorrectStyle.Render(fmt.Sprintf("Error: %v (esc to clear)", snap.Err))
	default:
		if snap.ExpectedNote != nil {
			return accentStyle.Render("Play " + snap.ExpectedNote.Label())
		}
		return ""
	}
}

func (m *Model) pianoRoles(snap practice.Snapshot) pianoState {
	st := pianoState{}
	if snap.State == practice.StatePlaying && snap.ExpectedNote != nil {
		st.expected = snap.ExpectedNote.MIDI
		st.hasExpected = true
	}
	if m.hasPressed {
		st.pressed = m.pressedMIDI
		st.pressedCorrect = m.pressedCorrect
		st.hasPressed = true
	}
	return st
}

func (m *Model) offBoardHint(snap practice.Snapshot) string {
	if snap.State != practice.StatePlaying || snap.ExpectedNote == nil {
		return ""
	}
	keys := m.board.Keys()
	if len(keys) == 0 {
		return ""
	}
	midi := snap.ExpectedNote.MIDI
	if midi >= keys[0].MIDI && midi <= keys[len(keys)-1].MIDI {
		return ""
	}
	return fmt.Sprintf("%s is off the keyboard, z/x shift octave", snap.ExpectedNote.Label())
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	sessions, err := m.store.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		m.logger.Error("failed to load session stats", "err", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastNPM, m.lastHit = statsPkg.SessionMetrics(last.Correct, last.Incorrect, last.DurationMs)
	m.hasLast = true

	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allIncorrect += s.Incorrect
		m.allDuration += s.DurationMs
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	m.allNPM, m.allHit = statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, m.allDuration)
}

func (m *Model) renderFooter(snap practice.Snapshot) string {
	segments := []string{
		strings.ToUpper(snap.State.String()[:1]) + snap.State.String()[1:],
		fmt.Sprintf("Progress %d%%", snap.Stats.Progress),
		fmt.Sprintf("Accuracy %d%%", snap.Stats.Accuracy),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f NPM · %.1f%%", m.lastNPM, m.lastHit*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f NPM · %.1f%%", m.allNPM, m.allHit*100))
	return footerStyle.Render(strings.Join(segments, "  "))
}

// finishSession persists a graded result. It runs inside RecordNotePlayed,
// so on the Bubble Tea goroutine.
func (m *Model) finishSession(result practice.Result) {
	rec := statsPkg.RecordFromResult(result)
	notes := statsPkg.NoteStatsFromHistory(result.History)
	m.logger.Info("session completed",
		"session", rec.UUID,
		"scale", result.Session.Scale.Label(),
		"correct", rec.Correct,
		"incorrect", rec.Incorrect,
		"duration_ms", rec.DurationMs,
	)

	if m.store != nil {
		ctx := context.Background()
		if _, err := m.store.InsertSession(ctx, rec, notes); err != nil {
			m.logger.Error("failed to save session", "err", err)
			m.status = "failed to save session"
		}
	}
	m.lastNPM, m.lastHit = statsPkg.SessionMetrics(rec.Correct, rec.Incorrect, rec.DurationMs)
	m.hasLast = true
	m.allCorrect += rec.Correct
	m.allIncorrect += rec.Incorrect
	m.allDuration += rec.DurationMs
	m.recomputeAllTime()

	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) refreshWeakSet() {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	aggs, err := m.store.GetWeakNotes(ctx, m.config.WeakWindow, "")
	if err != nil {
		m.logger.Error("failed to load weak notes", "err", err)
		return
	}
	m.weakSet = statsPkg.SelectWeakNotes(aggs, m.config.WeakTop)
	m.logger.Debug("weak notes refreshed", "count", len(m.weakSet))
}

func clampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}
