// Package main provides the CLI entrypoint for tuiano.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuiano/internal/audio"
	"github.com/verte-zerg/tuiano/internal/config"
	"github.com/verte-zerg/tuiano/internal/generator"
	"github.com/verte-zerg/tuiano/internal/logging"
	"github.com/verte-zerg/tuiano/internal/midiin"
	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/stats"
	"github.com/verte-zerg/tuiano/internal/store"
	"github.com/verte-zerg/tuiano/internal/tui"
)

const (
	defaultRoot        = "C"
	defaultScale       = "major"
	defaultDirection   = "ascending"
	defaultTempo       = 80
	defaultReps        = 1
	defaultOctave      = 4
	defaultCountInMs   = 2000
	defaultWeakTop     = 3
	defaultWeakFactor  = 1.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20

	// autoPort selects the first MIDI input.
	autoPort = "auto"
	// midiBuffer absorbs bursts such as chords while the UI redraws.
	midiBuffer = 64
)

var (
	practiceRoot       string
	practiceScale      string
	practiceDirection  string
	practiceTempo      int
	practiceReps       int
	practiceOctave     int
	practiceRandom     bool
	practiceCountInMs  int
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practiceSoundFont  string
	practiceNoAudio    bool
	practiceMIDIPort   string

	logDebug bool
	logFile  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiano",
		Short:         "TUI piano scale trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&practiceRoot, "root", defaultRoot, "scale root, ex: C, F#, Bb")
	flags.StringVar(&practiceScale, "scale", defaultScale, "scale type (major, natural-minor, pentatonic-major, pentatonic-minor, blues)")
	flags.StringVar(&practiceDirection, "direction", defaultDirection, "ascending, descending or both")
	flags.IntVar(&practiceTempo, "tempo", defaultTempo, "tempo in BPM")
	flags.IntVar(&practiceReps, "repetitions", defaultReps, "times to play the sequence")
	flags.IntVar(&practiceOctave, "octave", defaultOctave, "start octave of the scale and keyboard")
	flags.BoolVar(&practiceRandom, "random", false, "start with a random exercise")
	flags.IntVar(&practiceCountInMs, "count-in", defaultCountInMs, "count-in before scoring (ms)")
	flags.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias random exercises toward weak notes")
	flags.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak notes to focus on")
	flags.Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak notes")
	flags.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak notes")
	flags.StringVar(&practiceSoundFont, "soundfont", "", "SoundFont (.sf2) used for audio")
	flags.BoolVar(&practiceNoAudio, "no-audio", false, "disable audio")
	flags.StringVar(&practiceMIDIPort, "midi-port", "", "MIDI input port name, or \"auto\" for the first port")
	flags.BoolVar(&logDebug, "debug", false, "enable debug logging")
	flags.StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newScalesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newMIDICmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := resolvePracticeConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := logging.Init(logging.Options{Path: logFile, Debug: logDebug})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			// Best-effort log file close.
			_ = cerr
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	weakSet := map[string]struct{}{}
	if cfg.FocusWeak {
		aggs, err := st.GetWeakNotes(context.Background(), cfg.WeakWindow, "")
		if err != nil {
			logErrf("failed to load weak notes: %v\n", err)
		} else {
			weakSet = stats.SelectWeakNotes(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logErrln("no stats available for weak-note focus yet; using uniform exercises")
			}
		}
	}

	player := openPlayer(cfg, logger)
	defer func() {
		if cerr := player.Close(); cerr != nil {
			// Best-effort audio shutdown.
			_ = cerr
		}
	}()

	var notes chan midiin.NoteEvent
	if cfg.MIDIPort != "" {
		notes = make(chan midiin.NoteEvent, midiBuffer)
	}
	m, err := tui.NewModel(tui.Options{
		Config:  cfg,
		Store:   st,
		Gen:     generator.New(),
		Player:  player,
		Logger:  logger,
		WeakSet: weakSet,
		Notes:   notes,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	if notes != nil {
		listener, err := openMIDI(cfg.MIDIPort, notes, m, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := listener.Close(); cerr != nil {
				_ = cerr
			}
			midiin.CloseDriver()
		}()
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// openPlayer falls back to silence when the SoundFont cannot be used.
func openPlayer(cfg model.Config, logger *slog.Logger) audio.Player {
	if cfg.NoAudio || cfg.SoundFont == "" {
		return audio.Nop()
	}
	player, err := audio.NewSynthPlayer(cfg.SoundFont, cfg.SampleRate)
	if err != nil {
		logger.Warn("audio disabled", "soundfont", cfg.SoundFont, "err", err)
		logErrf("audio disabled: %v\n", err)
		return audio.Nop()
	}
	logger.Info("audio ready", "soundfont", cfg.SoundFont, "sample_rate", cfg.SampleRate)
	return player
}

// openMIDI forwards note events to the UI without blocking the driver
// callback; events beyond the buffer are dropped.
func openMIDI(port string, notes chan<- midiin.NoteEvent, m *tui.Model, logger *slog.Logger) (*midiin.Listener, error) {
	name := port
	if name == autoPort {
		name = ""
	}
	listener, err := midiin.Open(name, func(ev midiin.NoteEvent) {
		select {
		case notes <- ev:
		default:
			logger.Warn("midi: note dropped", "note", ev.Note, "octave", ev.Octave)
		}
	}, func(err error) {
		logger.Error("midi: input failed", "err", err)
		m.Fail(fmt.Errorf("MIDI input: %w", err))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI input: %w", err)
	}
	logger.Info("midi: listening", "port", listener.Port())
	return listener, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
