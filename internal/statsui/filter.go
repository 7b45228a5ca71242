package statsui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/stats"
	"github.com/verte-zerg/tuiano/internal/theory"
)

const sinceLayout = "2006-01-02"

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	modalTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) renderFilterSummary() string {
	scaleType := m.cfg.ScaleType
	if scaleType == "" {
		scaleType = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(sinceLayout)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: scale=%s  since=%s  last=%s  window=%d", scaleType, since, last, m.cfg.CurveWindow)
	return mutedStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) startFilter() tea.Cmd {
	m.filterMode = true
	m.filterError = ""
	m.filterInputs[0].SetValue(m.cfg.ScaleType)
	m.filterInputs[1].SetValue("")
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format(sinceLayout))
	}
	m.filterInputs[2].SetValue("")
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	}
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	return m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// parseFilter validates the settings form. Notes carry over unchanged.
func (m *Model) parseFilter() (model.StatsConfig, error) {
	cfg := m.cfg

	scaleType := strings.TrimSpace(m.filterInputs[0].Value())
	if scaleType != "" {
		st, ok := theory.ParseScaleType(scaleType)
		if !ok {
			return cfg, fmt.Errorf("unknown scale type %q", scaleType)
		}
		scaleType = string(st)
	}
	cfg.ScaleType = scaleType

	cfg.Since = nil
	if in := strings.TrimSpace(m.filterInputs[1].Value()); in != "" {
		parsed, err := time.ParseInLocation(sinceLayout, in, time.Local)
		if err != nil {
			return cfg, errors.New("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}

	cfg.Last = 0
	if in := strings.TrimSpace(m.filterInputs[2].Value()); in != "" {
		parsed, err := strconv.Atoi(in)
		if err != nil || parsed < 0 {
			return cfg, errors.New("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}

	if in := strings.TrimSpace(m.filterInputs[3].Value()); in != "" {
		parsed, err := strconv.Atoi(in)
		if err != nil || parsed < 1 {
			return cfg, errors.New("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = parsed
	}
	return cfg, nil
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) startNoteInput() tea.Cmd {
	m.noteInputMode = true
	m.noteInput.SetValue(strings.Join(m.report.CurveNotes, ", "))
	return m.noteInput.Focus()
}

func (m *Model) updateNoteInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.noteInputMode = false
		return m, nil
	case tea.KeyEnter:
		notes := stats.ParseNotes(m.noteInput.Value())
		m.customNote = len(notes) > 0
		m.cfg.Notes = strings.Join(notes, ",")
		m.noteInputMode = false
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

func (m *Model) renderNoteModal() string {
	body := []string{
		modalTitleStyle.Render("Select Notes"),
		m.noteInput.View(),
		mutedStyle.Render("Comma or space separated. Flats and sharps share a row."),
		mutedStyle.Render("Empty for the most practiced notes. Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	// 2 border + 4 padding
	return max(10, modalWidth(width)-6)
}
