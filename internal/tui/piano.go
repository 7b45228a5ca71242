package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiano/internal/keyboard"
)

const pianoCellWidth = 4

type keyRole int

const (
	roleWhite keyRole = iota
	roleBlack
	roleExpected
	roleCorrect
	roleWrong
)

type pianoState struct {
	expected       int
	hasExpected    bool
	pressed        int
	pressedCorrect bool
	hasPressed     bool
}

var (
	pianoCell      = lipgloss.NewStyle().Width(pianoCellWidth).Align(lipgloss.Center)
	whiteKeyStyle  = pianoCell.Background(lipgloss.Color("#E8E8E8")).Foreground(lipgloss.Color("#202020"))
	blackKeyStyle  = pianoCell.Background(lipgloss.Color("#202020")).Foreground(lipgloss.Color("#BFBFBF"))
	expectedStyle  = pianoCell.Background(lipgloss.Color("#C89A3A")).Foreground(lipgloss.Color("#101010")).Bold(true)
	correctKey     = pianoCell.Background(lipgloss.Color("#3F8F4F")).Foreground(lipgloss.Color("#F0F0F0"))
	wrongKey       = pianoCell.Background(lipgloss.Color("#FF4D4F")).Foreground(lipgloss.Color("#F0F0F0"))
	bindingStyle   = pianoCell.Foreground(lipgloss.Color("#6E6E6E"))
	pianoRoleStyle = map[keyRole]lipgloss.Style{
		roleWhite:    whiteKeyStyle,
		roleBlack:    blackKeyStyle,
		roleExpected: expectedStyle,
		roleCorrect:  correctKey,
		roleWrong:    wrongKey,
	}
)

// roleFor picks a key's highlight. The last pressed key wins over the
// expected one so feedback stays visible until the next press.
func roleFor(k keyboard.Key, st pianoState) keyRole {
	switch {
	case st.hasPressed && st.pressed == k.MIDI && st.pressedCorrect:
		return roleCorrect
	case st.hasPressed && st.pressed == k.MIDI:
		return roleWrong
	case st.hasExpected && st.expected == k.MIDI:
		return roleExpected
	case k.IsAccidental:
		return roleBlack
	default:
		return roleWhite
	}
}

// renderPiano draws one row of note cells above their key bindings.
func renderPiano(keys keyboard.Keys, st pianoState) string {
	var notes, binds strings.Builder
	for _, k := range keys {
		notes.WriteString(pianoRoleStyle[roleFor(k, st)].Render(k.Name))
		binds.WriteString(bindingStyle.Render(k.Binding))
	}
	return notes.String() + "\n" + binds.String()
}
