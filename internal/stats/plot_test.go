package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "NPM", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "Hit Rate", Values: []float64{1, 1, 2, 3, 4}},
	}, 10, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Test Plot", scaleNote, "NPM: min=1.00 max=3.00", "Legend: ● NPM  ◆ Hit Rate"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expected := 1 + 1 + 2 + 4 + 1
	if len(lines) != expected {
		t.Fatalf("expected %d lines of output, got %d", expected, len(lines))
	}
	if !strings.HasPrefix(lines[4], "max ┤ ") || !strings.HasPrefix(lines[7], "min ┤ ") {
		t.Fatalf("unexpected axis labels:\n%s", out)
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Nothing", []Series{{Name: "A"}}, 10, 4); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotSeriesRisingLine(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "", []Series{{Name: "A", Values: []float64{0, 10}}}, 10, 3); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	top := strings.TrimPrefix(lines[2], "max ┤ ")
	bottom := strings.TrimPrefix(lines[4], "min ┤ ")
	if !strings.HasSuffix(top, "●") {
		t.Fatalf("expected last point on top row, got %q", top)
	}
	if !strings.HasPrefix(bottom, "●") {
		t.Fatalf("expected first point on bottom row, got %q", bottom)
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{0, 10}, 3)
	if got[0] != 0 || got[1] != 5 || got[2] != 10 {
		t.Fatalf("unexpected stretch: %v", got)
	}
	got = resample([]float64{1, 3, 5, 7}, 2)
	if got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected average: %v", got)
	}
}
