package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiano/internal/clock"
	"github.com/verte-zerg/tuiano/internal/generator"
	"github.com/verte-zerg/tuiano/internal/midiin"
	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/practice"
	"github.com/verte-zerg/tuiano/internal/store"
)

type recordingPlayer struct {
	on  []int
	off []int
}

func (p *recordingPlayer) NoteOn(midi, _ int) { p.on = append(p.on, midi) }
func (p *recordingPlayer) NoteOff(midi int)   { p.off = append(p.off, midi) }
func (p *recordingPlayer) Close() error       { return nil }

func testConfig() model.Config {
	return model.Config{
		Root:        "C",
		ScaleType:   "major",
		Direction:   "ascending",
		Tempo:       80,
		Repetitions: 1,
		Octave:      4,
		WeakTop:     3,
		WeakFactor:  2,
		WeakWindow:  10,
		CountInMs:   100,
	}
}

func newTestModel(t *testing.T, cfg model.Config, st *store.Store) (*Model, *clock.Fake, *recordingPlayer) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	player := &recordingPlayer{}
	m, err := NewModel(Options{
		Config: cfg,
		Store:  st,
		Gen:    generator.NewWithSeed(1),
		Player: player,
		Clock:  clk,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	t.Cleanup(m.Close)
	return m, clk, player
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		switch k {
		case "enter":
			m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		case "space":
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		case "ctrl+r":
			m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
		case "tab":
			m.Update(tea.KeyMsg{Type: tea.KeyTab})
		case "up":
			m.Update(tea.KeyMsg{Type: tea.KeyUp})
		case "down":
			m.Update(tea.KeyMsg{Type: tea.KeyDown})
		case "right":
			m.Update(tea.KeyMsg{Type: tea.KeyRight})
		default:
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

func startPlaying(t *testing.T, m *Model, clk *clock.Fake) {
	t.Helper()
	press(m, "enter")
	clk.Advance(100 * time.Millisecond)
	if got := m.engine.State(); got != practice.StatePlaying {
		t.Fatalf("expected playing after count-in, got %s", got)
	}
}

func TestNewModelRejectsUnknownValues(t *testing.T) {
	for _, mutate := range []func(*model.Config){
		func(c *model.Config) { c.Root = "H" },
		func(c *model.Config) { c.ScaleType = "lydian" },
		func(c *model.Config) { c.Direction = "sideways" },
	} {
		cfg := testConfig()
		mutate(&cfg)
		if _, err := NewModel(Options{Config: cfg}); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestPianoKeysGradeAndStrike(t *testing.T) {
	m, clk, player := newTestModel(t, testConfig(), nil)
	startPlaying(t, m, clk)

	press(m, "a")
	if len(player.on) != 1 || player.on[0] != 60 {
		t.Fatalf("expected C4 strike, got %v", player.on)
	}
	if !m.pressedCorrect {
		t.Fatalf("expected C4 graded correct")
	}
	press(m, "d")
	if m.pressedCorrect {
		t.Fatalf("expected E4 graded wrong while D4 is expected")
	}
	if idx := m.engine.Snapshot().CurrentNoteIndex; idx != 1 {
		t.Fatalf("expected to stay on D4, got index %d", idx)
	}
	clk.Advance(time.Second)
	if len(player.off) != 2 {
		t.Fatalf("expected scheduled note-offs, got %v", player.off)
	}
}

func TestCompletionPersistsAndUpdatesFooter(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiano.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	m, clk, _ := newTestModel(t, testConfig(), st)
	startPlaying(t, m, clk)
	for _, k := range []string{"a", "s", "w", "d", "f", "g", "h", "j"} {
		clk.Advance(750 * time.Millisecond)
		press(m, k)
	}
	if got := m.engine.State(); got != practice.StateCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	if !m.hasLast || m.lastHit < 0.87 || m.lastHit > 0.88 {
		t.Fatalf("expected last hit rate 7/8, got %v (has %v)", m.lastHit, m.hasLast)
	}

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected one saved session, got %d", len(sessions))
	}
	if sessions[0].Correct != 7 || sessions[0].Incorrect != 1 {
		t.Fatalf("unexpected saved counts: %+v", sessions[0])
	}
	if !strings.Contains(m.renderFooter(m.engine.Snapshot()), "Last") {
		t.Fatalf("expected footer to show last session")
	}

	reloaded, _, _ := newTestModel(t, testConfig(), st)
	if !reloaded.hasLast || reloaded.allCorrect != 7 {
		t.Fatalf("expected footer stats loaded from store, got %+v", reloaded.allCorrect)
	}
}

func TestFocusWeakRefreshesWeakSet(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiano.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := testConfig()
	cfg.ScaleType = "pentatonic-major"
	cfg.FocusWeak = true
	m, clk, _ := newTestModel(t, cfg, st)
	startPlaying(t, m, clk)
	for _, k := range []string{"a", "s", "a", "d", "g", "h"} {
		press(m, k)
	}
	if _, ok := m.weakSet["E"]; !ok {
		t.Fatalf("expected E in weak set after a miss, got %v", m.weakSet)
	}
}

func TestPauseStopAndReset(t *testing.T) {
	m, clk, _ := newTestModel(t, testConfig(), nil)
	startPlaying(t, m, clk)

	press(m, "space")
	if got := m.engine.State(); got != practice.StatePaused {
		t.Fatalf("expected paused, got %s", got)
	}
	press(m, "a")
	if m.engine.Snapshot().CurrentNoteIndex != 0 {
		t.Fatalf("expected notes ignored while paused")
	}
	press(m, "space")
	if got := m.engine.State(); got != practice.StatePlaying {
		t.Fatalf("expected playing after resume, got %s", got)
	}
	press(m, "esc")
	if got := m.engine.State(); got != practice.StateIdle {
		t.Fatalf("expected idle after stop, got %s", got)
	}

	press(m, "ctrl+r")
	if m.engine.Snapshot().Session != nil {
		t.Fatalf("expected reset to drop the session")
	}
	press(m, "enter")
	if got := m.engine.State(); got != practice.StateCountIn {
		t.Fatalf("expected enter to reselect and start, got %s", got)
	}
}

func TestExerciseControls(t *testing.T) {
	m, _, _ := newTestModel(t, testConfig(), nil)

	press(m, "]")
	if got := m.engine.Snapshot().Session.Scale.Root; got != m.exercise.Root || got == "C" {
		t.Fatalf("expected root to move up from C, got %q", got)
	}
	press(m, "[")
	if m.exercise.Root != "C" {
		t.Fatalf("expected root back to C, got %q", m.exercise.Root)
	}
	press(m, "tab")
	if got := m.engine.Snapshot().Session.Scale.Type; got != m.exercise.Type || got == "major" {
		t.Fatalf("expected next scale type, got %q", got)
	}

	press(m, "up")
	if m.engine.Snapshot().Session.Tempo != 85 {
		t.Fatalf("expected tempo 85, got %d", m.engine.Snapshot().Session.Tempo)
	}
	for i := 0; i < 100; i++ {
		press(m, "up")
	}
	if m.tempo != MaxTempo {
		t.Fatalf("expected tempo clamped to %d, got %d", MaxTempo, m.tempo)
	}

	press(m, "x")
	if m.board.Octave() != 5 {
		t.Fatalf("expected octave 5, got %d", m.board.Octave())
	}
	press(m, "z", "z")
	if m.board.Octave() != 3 {
		t.Fatalf("expected octave 3, got %d", m.board.Octave())
	}

	press(m, "right")
	if m.engine.Snapshot().CurrentNoteIndex != 1 {
		t.Fatalf("expected go-to-note to move forward")
	}
}

func TestMIDINotesArriveThroughChannel(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	notes := make(chan midiin.NoteEvent, 1)
	m, err := NewModel(Options{Config: testConfig(), Clock: clk, Player: &recordingPlayer{}, Notes: notes})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	t.Cleanup(m.Close)
	startPlaying(t, m, clk)

	notes <- midiin.NoteEvent{Note: "C", Octave: 4, MIDI: 60, Velocity: 90}
	msg := waitForNote(notes)()
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("expected the note command to be re-armed")
	}
	if m.engine.Snapshot().CurrentNoteIndex != 1 {
		t.Fatalf("expected MIDI note graded correct")
	}

	close(notes)
	_, cmd = m.Update(waitForNote(notes)())
	if cmd != nil {
		t.Fatalf("expected no command after the channel closed")
	}
}

func TestWakeChannelCoalesces(t *testing.T) {
	m, clk, _ := newTestModel(t, testConfig(), nil)
	<-m.wake
	press(m, "enter")
	clk.Advance(100 * time.Millisecond)
	if len(m.wake) != 1 {
		t.Fatalf("expected a single pending wake, got %d", len(m.wake))
	}
	if _, ok := waitForWake(m.wake)().(wakeMsg); !ok {
		t.Fatalf("expected wake message")
	}
}

func TestFailShowsError(t *testing.T) {
	m, clk, _ := newTestModel(t, testConfig(), nil)
	startPlaying(t, m, clk)
	m.Fail(midiin.ErrNoPorts)
	if got := m.engine.State(); got != practice.StateError {
		t.Fatalf("expected error state, got %s", got)
	}
	if !strings.Contains(m.View(), midiin.ErrNoPorts.Error()) {
		t.Fatalf("expected error in view")
	}
}

func TestViewShowsHeaderAndSequence(t *testing.T) {
	m, _, _ := newTestModel(t, testConfig(), nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	out := m.View()
	if !containsAll(out, []string{"C major", "ascending", "80 bpm", "loop 1/1", "C4", "B4", "Press enter"}) {
		t.Fatalf("view missing expected content:\n%s", out)
	}
}
