package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuiano/internal/practice"
	"github.com/verte-zerg/tuiano/internal/theory"
)

type styledCell struct {
	s       string
	width   int
	isSpace bool
}

var separatorCell = styledCell{s: " ", width: 1, isSpace: true}

// buildSequenceCells styles the practice sequence: played notes, the
// expected note (red after a mistake) and the notes still to come.
func buildSequenceCells(snap practice.Snapshot) []styledCell {
	out := make([]styledCell, 0, 2*len(snap.Sequence))
	finished := snap.State == practice.StateGrading || snap.State == practice.StateCompleted
	missed := lastWasMistake(snap)
	for i, note := range snap.Sequence {
		if i > 0 {
			out = append(out, separatorCell)
		}
		label := noteLabel(note)
		style := pendingStyle
		switch {
		case finished || i < snap.CurrentNoteIndex:
			style = correctStyle
		case i == snap.CurrentNoteIndex && missed:
			style = incorrectStyle.Underline(true)
		case i == snap.CurrentNoteIndex:
			style = cursorStyle
		}
		out = append(out, styledCell{
			s:     style.Render(label),
			width: runewidth.StringWidth(label),
		})
	}
	return out
}

func noteLabel(n theory.ScaleNote) string {
	return n.Label()
}

func lastWasMistake(snap practice.Snapshot) bool {
	if len(snap.History) == 0 {
		return false
	}
	last := snap.History[len(snap.History)-1]
	return !last.IsCorrect && last.Position == snap.CurrentNoteIndex && last.Loop == snap.CurrentLoop
}

func renderCells(cells []styledCell) string {
	var b strings.Builder
	for _, item := range cells {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapCells breaks lines at separators so a note label is never split.
func wrapCells(cells []styledCell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var out strings.Builder
	line := make([]styledCell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderCells(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledCell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderCells(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderCells(line))
	return out.String()
}

func lineWidthOf(line []styledCell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledCell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
