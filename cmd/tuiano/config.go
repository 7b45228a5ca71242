package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuiano/internal/audio"
	"github.com/verte-zerg/tuiano/internal/config"
	"github.com/verte-zerg/tuiano/internal/keyboard"
	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/practice"
	"github.com/verte-zerg/tuiano/internal/theory"
	"github.com/verte-zerg/tuiano/internal/tui"
)

// resolvePracticeConfig merges file values into flags that were not set on
// the command line.
func resolvePracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.Config {
	p := fileCfg.Practice
	applyStringConfig(cmd, "root", &practiceRoot, p.Root)
	applyStringConfig(cmd, "scale", &practiceScale, p.Scale)
	applyStringConfig(cmd, "direction", &practiceDirection, p.Direction)
	applyIntConfig(cmd, "tempo", &practiceTempo, p.Tempo)
	applyIntConfig(cmd, "repetitions", &practiceReps, p.Repetitions)
	applyIntConfig(cmd, "octave", &practiceOctave, p.Octave)
	applyBoolConfig(cmd, "random", &practiceRandom, p.Random)
	applyIntConfig(cmd, "count-in", &practiceCountInMs, p.CountInMs)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)
	applyStringConfig(cmd, "soundfont", &practiceSoundFont, fileCfg.Audio.SoundFont)
	applyBoolConfig(cmd, "no-audio", &practiceNoAudio, fileCfg.Audio.Disabled)
	applyStringConfig(cmd, "midi-port", &practiceMIDIPort, fileCfg.MIDI.Port)
	applyBoolConfig(cmd, "debug", &logDebug, fileCfg.Log.Debug)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	sampleRate := audio.DefaultSampleRate
	if fileCfg.Audio.SampleRate != nil {
		sampleRate = *fileCfg.Audio.SampleRate
	}

	return model.Config{
		Root:        practiceRoot,
		ScaleType:   practiceScale,
		Direction:   practiceDirection,
		Tempo:       practiceTempo,
		Repetitions: practiceReps,
		Octave:      practiceOctave,
		Random:      practiceRandom,
		FocusWeak:   practiceFocusWeak,
		WeakTop:     practiceWeakTop,
		WeakFactor:  practiceWeakFactor,
		WeakWindow:  practiceWeakWindow,
		CountInMs:   practiceCountInMs,
		SoundFont:   practiceSoundFont,
		SampleRate:  sampleRate,
		NoAudio:     practiceNoAudio,
		MIDIPort:    practiceMIDIPort,
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if _, ok := theory.NormalizeRoot(cfg.Root); !ok {
		return fmt.Errorf("--root %q is not a supported root (%v)", cfg.Root, theory.Roots())
	}
	if _, ok := theory.ParseScaleType(cfg.ScaleType); !ok {
		return fmt.Errorf("--scale %q is not a supported scale type (%v)", cfg.ScaleType, theory.ScaleTypes())
	}
	if _, err := practice.ParseDirection(cfg.Direction); err != nil {
		return fmt.Errorf("--direction: %w", err)
	}
	if cfg.Tempo < tui.MinTempo || cfg.Tempo > tui.MaxTempo {
		return fmt.Errorf("--tempo must be between %d and %d", tui.MinTempo, tui.MaxTempo)
	}
	if cfg.Repetitions < 1 {
		return fmt.Errorf("--repetitions must be >= 1")
	}
	if cfg.Octave < keyboard.MinOctave || cfg.Octave > keyboard.MaxOctave {
		return fmt.Errorf("--octave must be between %d and %d", keyboard.MinOctave, keyboard.MaxOctave)
	}
	if cfg.CountInMs < 0 {
		return fmt.Errorf("--count-in must be >= 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}
