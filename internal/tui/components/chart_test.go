package components

import (
	"fmt"
	"strings"
	"testing"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/projection"

	"github.com/charmbracelet/lipgloss"
)

func defaultHorizon(months, interval int) model.Series {
	res := projection.Horizon(model.Params{
		InitialBalance:      15000,
		MonthlyContribution: 1000,
		AnnualGrowthRate:    0.10,
		AnnualYieldRate:     0.069,
		DurationMonths:      months,
		SampleInterval:      interval,
	})
	return res.Series
}

func labelsFor(s model.Series) []string {
	out := make([]string, s.Len())
	for i, m := range s.Months {
		if m%12 == 0 {
			out[i] = fmt.Sprintf("Y%d", m/12)
		} else {
			out[i] = fmt.Sprintf("%dy%dm", m/12, m%12)
		}
	}
	return out
}

func TestStackedBarChartEmpty(t *testing.T) {
	if got := StackedBarChart(model.Series{}, ChartOptions{Width: 80, Height: 12}); got != "" {
		t.Fatalf("empty series rendered %q", got)
	}
}

func TestStackedBarChartFallsBackToSparkline(t *testing.T) {
	got := StackedBarChart(defaultHorizon(120, 12), ChartOptions{Width: 10, Height: 12})
	if got == "" || strings.Contains(got, "└") {
		t.Fatalf("narrow chart should be a sparkline, got %q", got)
	}
}

func TestStackedBarChartLayout(t *testing.T) {
	s := defaultHorizon(120, 12)
	out := StackedBarChart(s, ChartOptions{Width: 80, Height: 12, Labels: labelsFor(s)})

	lines := strings.Split(out, "\n")
	axis := -1
	for i, line := range lines {
		if strings.Contains(line, "└") {
			axis = i
			break
		}
	}
	if axis < 2 {
		t.Fatalf("x-axis not found in %d lines", len(lines))
	}

	want := lipgloss.Width(lines[axis])
	if want > 80 {
		t.Errorf("axis width %d exceeds 80", want)
	}
	for i := 0; i < axis; i++ {
		if w := lipgloss.Width(lines[i]); w != want {
			t.Errorf("row %d width = %d, want %d", i, w, want)
		}
	}

	if len(lines) != axis+3 {
		t.Fatalf("got %d lines after the axis, want label and income rows", len(lines)-axis-1)
	}
	for _, s := range []string{"Y0", "9y11m", "/mo", "2.2k", "400k"} {
		if !strings.Contains(out, s) {
			t.Errorf("chart is missing %q", s)
		}
	}
}

func TestStackedBarChartDownsamples(t *testing.T) {
	s := defaultHorizon(121, 1)
	out := StackedBarChart(s, ChartOptions{Width: 40, Height: 8})

	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line %d width = %d, want <= 40", i, w)
		}
	}
}

func TestStackedCellRegions(t *testing.T) {
	plain := cellStyles{
		principal: lipgloss.NewStyle(),
		yield:     lipgloss.NewStyle(),
		split:     lipgloss.NewStyle(),
		blank:     lipgloss.NewStyle(),
	}

	cases := []struct {
		name   string
		lo, hi float64
		want   string
	}{
		{"principal below", 0, 5, "██"},
		{"principal ends mid-cell", 8, 12, "▄▄"},
		{"yield full", 12, 16, "██"},
		{"yield ends mid-cell", 18, 22, "▄▄"},
		{"above total", 24, 28, "  "},
	}
	for _, tc := range cases {
		if got := stackedCell(10, 20, tc.lo, tc.hi, 2, plain); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestPlaceLabelsSkipsCollisions(t *testing.T) {
	got := placeLabels([]string{"Y0", "Y1", "Y2"}, 2, 1, 8)
	if got != "Y0    Y2" {
		t.Fatalf("placeLabels = %q", got)
	}
	if placeLabels(nil, 2, 1, 8) != "" {
		t.Fatal("no labels should render empty")
	}
}

func TestFormatChartLabel(t *testing.T) {
	cases := map[float64]string{
		400000:  "400k",
		2193.96: "2.2k",
		1.5e6:   "1.5M",
		92.73:   "93",
		0.5:     "0.50",
	}
	for in, want := range cases {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestStackedBarChartNonFinite(t *testing.T) {
	res := projection.Horizon(model.Params{
		InitialBalance:      15000,
		MonthlyContribution: 1000,
		AnnualGrowthRate:    -2,
		AnnualYieldRate:     0.069,
		DurationMonths:      24,
	})
	got := StackedBarChart(res.Series, ChartOptions{Width: 60, Height: 10})
	if !strings.Contains(got, "no chart") {
		t.Errorf("non-finite series should render a notice, got:\n%s", got)
	}
}
