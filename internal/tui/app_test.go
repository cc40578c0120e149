package tui

import (
	"strings"
	"testing"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp() App {
	return NewApp(Options{
		Params: model.Params{
			InitialBalance:      15000,
			MonthlyContribution: 1100,
			AnnualGrowthRate:    0.105,
			AnnualYieldRate:     0.069,
			TargetIncome:        1320,
			BenchmarkRate:       0.1365,
		},
		Format:        cli.NewFormatter("en", "R$"),
		BenchmarkName: "CDI",
	})
}

func press(a App, keys ...string) App {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestNewAppRunsProjection(t *testing.T) {
	a := newTestApp()
	res := a.Result()
	if res.Months != 85 {
		t.Fatalf("Months = %d, want 85", res.Months)
	}
	if !res.ReachedTarget {
		t.Fatal("target should be reached")
	}
}

func TestContributionKeys(t *testing.T) {
	a := press(newTestApp(), "+")
	if got := a.Result().Params.MonthlyContribution; got != 1200 {
		t.Fatalf("contribution after + = %v, want 1200", got)
	}
	if a.Result().Months >= 85 {
		t.Fatalf("higher contribution should reach the target sooner, got %d months", a.Result().Months)
	}

	a = press(a, "-", "-")
	if got := a.Result().Params.MonthlyContribution; got != 1000 {
		t.Fatalf("contribution after - - = %v, want 1000", got)
	}

	for i := 0; i < 20; i++ {
		a = press(a, "-")
	}
	if got := a.Result().Params.MonthlyContribution; got != 0 {
		t.Fatalf("contribution should clamp at 0, got %v", got)
	}
}

func TestTargetKeysAndModeToggle(t *testing.T) {
	a := press(newTestApp(), "]")
	if got := a.Result().Params.TargetIncome; got != 1420 {
		t.Fatalf("target after ] = %v, want 1420", got)
	}

	a = press(a, "m")
	res := a.Result()
	if res.Mode != model.ModeHorizon || res.Months != defaultDuration {
		t.Fatalf("after m: mode=%s months=%d, want horizon/%d", res.Mode, res.Months, defaultDuration)
	}

	a = press(a, "]")
	if got := a.Result().Months; got != defaultDuration+durationStep {
		t.Fatalf("horizon after ] = %d months, want %d", got, defaultDuration+durationStep)
	}

	a = press(a, "m")
	res = a.Result()
	if res.Mode != model.ModeGoal || res.Params.TargetIncome != 1420 {
		t.Fatalf("after second m: mode=%s target=%v, want goal/1420", res.Mode, res.Params.TargetIncome)
	}
}

func TestTabNavigation(t *testing.T) {
	a := press(newTestApp(), "s")
	if a.activeTab != 1 {
		t.Fatalf("activeTab after s = %d, want 1", a.activeTab)
	}
	a = press(a, "right")
	if a.activeTab != 0 {
		t.Fatalf("activeTab after right = %d, want 0 (wraps)", a.activeTab)
	}
	a = press(a, "left")
	if a.activeTab != 1 {
		t.Fatalf("activeTab after left = %d, want 1", a.activeTab)
	}
}

func TestHelpToggle(t *testing.T) {
	a := press(newTestApp(), "?")
	if !a.showHelp {
		t.Fatal("? should open help")
	}
	a = press(a, "+")
	if a.showHelp {
		t.Fatal("any key should close help")
	}
	if got := a.Result().Params.MonthlyContribution; got != 1100 {
		t.Fatalf("closing help should not change params, contribution = %v", got)
	}
}

func TestViewRendersTabs(t *testing.T) {
	m, _ := newTestApp().Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	a := m.(App)

	view := a.View()
	for _, want := range []string{"Overview", "Balance", "CDI at 13.65%", "Contributed"} {
		if !strings.Contains(view, want) {
			t.Errorf("overview is missing %q", want)
		}
	}

	a = press(a, "s")
	view = a.View()
	if !strings.Contains(view, "Samples (") || !strings.Contains(view, "Income/mo") {
		t.Error("samples tab is missing its table")
	}
}

func TestViewTooNarrow(t *testing.T) {
	m, _ := newTestApp().Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if view := m.(App).View(); !strings.Contains(view, "too narrow") {
		t.Fatalf("narrow view = %q", view)
	}
	if view := newTestApp().View(); view != "" {
		t.Fatalf("view before sizing = %q, want empty", view)
	}
}

func TestSetupValuesRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	if vals.Growth != "10" || vals.Yield != "6.9" || vals.BenchmarkRate != "13.65" {
		t.Fatalf("percent fields = %q %q %q", vals.Growth, vals.Yield, vals.BenchmarkRate)
	}

	vals.Contribution = "1,100"
	vals.Target = "1320"
	vals.Theme = "tokyo-night"
	if err := vals.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Plan.MonthlyContribution != 1100 || cfg.Plan.TargetIncome != 1320 {
		t.Fatalf("plan = %+v", cfg.Plan)
	}
	if cfg.Plan.AnnualYieldRate != 0.069 {
		t.Fatalf("yield = %v, want 0.069", cfg.Plan.AnnualYieldRate)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Fatalf("theme = %q", cfg.Appearance.Theme)
	}
}

func TestSetupValuesRejectsGarbage(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	vals.Yield = "lots"
	if err := vals.Apply(&cfg); err == nil {
		t.Fatal("expected an error for a non-numeric yield")
	}
	if cfg.Plan.AnnualYieldRate != 0.069 {
		t.Fatal("failed Apply must not modify the config")
	}
	if NewSetupForm(&vals) == nil {
		t.Fatal("NewSetupForm returned nil")
	}
}
