package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

type seriesGlyph struct {
	point rune
	trail rune
	color string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelBottom     = "min"
	axisSeparator       = " ┤ "
	scaleNote           = "Each series is scaled to its own range."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var glyphs = []seriesGlyph{
	{point: '●', trail: '·', color: "\x1b[36m"},
	{point: '◆', trail: '˙', color: "\x1b[35m"},
	{point: '▲', trail: '.', color: "\x1b[33m"},
	{point: '■', trail: ':', color: "\x1b[32m"},
}

// PlotSeries renders a multi-line text plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plotSeries(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a text plot, forcing ANSI color when forceColor is set.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, width, height, forceColor)
}

func plotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	grid := newGrid(height, width)
	ranges := make([][2]float64, len(series))
	for si, s := range series {
		values := resample(s.Values, width)
		lo, hi := bounds(s.Values)
		ranges[si] = [2]float64{lo, hi}
		if hi-lo < 1e-9 {
			lo, hi = lo-1, hi+1
		}
		prev := -1
		for x, v := range values {
			row := rowFor(v, lo, hi, height)
			if prev >= 0 {
				for _, y := range between(prev, row) {
					grid.set(x, y, si, false)
				}
			}
			grid.set(x, row, si, true)
			prev = row
		}
	}

	useColor := colorEnabled(w, forceColor)
	var out strings.Builder
	if title != "" {
		out.WriteString(title + "\n")
	}
	out.WriteString(scaleNote + "\n")
	for i, s := range series {
		fmt.Fprintf(&out, "%s: min=%.2f max=%.2f\n", s.Name, ranges[i][0], ranges[i][1])
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = axisLabelTop
		case height - 1:
			label = axisLabelBottom
		}
		out.WriteString(runewidth.FillLeft(label, runewidth.StringWidth(axisLabelTop)))
		out.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			out.WriteString(grid.render(x, y, useColor))
		}
		out.WriteString("\n")
	}
	out.WriteString(legend(series, useColor) + "\n\n")
	_, err := io.WriteString(w, out.String())
	return err
}

// cell holds the first series that claimed it; points beat trails.
type cell struct {
	series int
	point  bool
}

type grid [][]cell

func newGrid(height, width int) grid {
	g := make(grid, height)
	for y := range g {
		g[y] = make([]cell, width)
		for x := range g[y] {
			g[y][x].series = -1
		}
	}
	return g
}

func (g grid) set(x, y, series int, point bool) {
	c := &g[y][x]
	if c.series == -1 || (point && !c.point) {
		c.series = series
		c.point = point
	}
}

func (g grid) render(x, y int, useColor bool) string {
	c := g[y][x]
	if c.series < 0 {
		return " "
	}
	gl := glyphs[c.series%len(glyphs)]
	ch := gl.trail
	if c.point {
		ch = gl.point
	}
	if useColor {
		return gl.color + string(ch) + colorReset
	}
	return string(ch)
}

// between returns the rows strictly between a and b.
func between(a, b int) []int {
	if a > b {
		a, b = b, a
	}
	var rows []int
	for y := a + 1; y < b; y++ {
		rows = append(rows, y)
	}
	return rows
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - runewidth.StringWidth(axisLabelTop) - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		return minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func colorEnabled(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// resample stretches or averages values into exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx] + (values[idx+1]-values[idx])*frac
		}
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 0
	}
	return lo, hi
}

func rowFor(v, lo, hi float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(height-1)))
	return max(0, min(height-1, row))
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		gl := glyphs[i%len(glyphs)]
		label := fmt.Sprintf("%c %s", gl.point, s.Name)
		if useColor {
			label = gl.color + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
