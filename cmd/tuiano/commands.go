package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuiano/internal/config"
	"github.com/verte-zerg/tuiano/internal/midiin"
	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/stats"
	"github.com/verte-zerg/tuiano/internal/statsui"
	"github.com/verte-zerg/tuiano/internal/store"
	"github.com/verte-zerg/tuiano/internal/theory"
)

var (
	statsScale       string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsNotes       string
	statsPlain       bool

	scalesOctave int
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if _, err := config.WriteTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newScalesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scales [root]",
		Short: "Print the notes of every scale type for a root",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScalesCmd,
	}
	cmd.Flags().IntVar(&scalesOctave, "octave", defaultOctave, "start octave")
	return cmd
}

func runScalesCmd(cmd *cobra.Command, args []string) error {
	root := defaultRoot
	if len(args) == 1 {
		root = args[0]
	}
	normalized, ok := theory.NormalizeRoot(root)
	if !ok {
		return fmt.Errorf("unknown root %q (available: %s)", root, strings.Join(theory.Roots(), ", "))
	}
	return writeScales(cmd.OutOrStdout(), normalized, scalesOctave)
}

func writeScales(w io.Writer, root string, octave int) error {
	for _, st := range theory.ScaleTypes() {
		scale := theory.NewScale(root, st, octave)
		labels := make([]string, len(scale.Notes))
		for i, n := range scale.Notes {
			labels[i] = n.Label()
		}
		if _, err := fmt.Fprintf(w, "%-22s %s\n", scale.Label(), strings.Join(labels, " ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newMIDICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "midi",
		Short: "List MIDI input ports",
		Args:  cobra.NoArgs,
		RunE:  runMIDICmd,
	}
}

func runMIDICmd(cmd *cobra.Command, _ []string) error {
	defer midiin.CloseDriver()
	ports, err := midiin.Ports()
	if err != nil {
		return fmt.Errorf("failed to list MIDI ports: %w", err)
	}
	if len(ports) == 0 {
		logErrln("No MIDI input ports found. Connect a keyboard and retry.")
		return midiin.ErrNoPorts
	}
	for _, p := range ports {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsScale, "scale", "", "scale type filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsNotes, "notes", "", "notes for per-note curves, ex: C,F#,Bb")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the UI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return writeReport(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}
	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Notes:       statsNotes,
	}
	if statsScale != "" {
		st, ok := theory.ParseScaleType(statsScale)
		if !ok {
			return cfg, fmt.Errorf("invalid --scale value %q", statsScale)
		}
		cfg.ScaleType = string(st)
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return cfg, errors.New("--last must be >= 0")
	}
	if cfg.CurveWindow < 1 {
		return cfg, errors.New("--curve-window must be >= 1")
	}
	return cfg, nil
}

func writeReport(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	if err := stats.RenderNoteTable(w, report.NoteAggsWindow); err != nil {
		return err
	}
	return stats.RenderNoteCurves(w, report.Sessions, report.PerSession, report.CurveNotes, cfg.CurveWindow)
}
