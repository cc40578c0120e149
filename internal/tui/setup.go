package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

// SetupValues holds the text the setup form edits. Rates are entered as
// percentages ("6.9" means 6.9% a year).
type SetupValues struct {
	Initial       string
	Contribution  string
	Growth        string
	Yield         string
	Target        string
	BenchmarkRate string
	Locale        string
	Currency      string
	Theme         string
}

// SetupValuesFrom fills the form fields from cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Initial:       formatAmount(cfg.Plan.InitialBalance),
		Contribution:  formatAmount(cfg.Plan.MonthlyContribution),
		Growth:        formatPercent(cfg.Plan.AnnualGrowthRate),
		Yield:         formatPercent(cfg.Plan.AnnualYieldRate),
		Target:        formatAmount(cfg.Plan.TargetIncome),
		BenchmarkRate: formatPercent(cfg.Benchmark.AnnualRate),
		Locale:        cfg.Output.Locale,
		Currency:      cfg.Output.CurrencySymbol,
		Theme:         cfg.Appearance.Theme,
	}
}

// Apply parses the form fields into cfg. cfg is left untouched on error.
func (v SetupValues) Apply(cfg *config.Config) error {
	next := *cfg

	fields := []struct {
		name    string
		in      string
		out     *float64
		percent bool
	}{
		{"initial balance", v.Initial, &next.Plan.InitialBalance, false},
		{"monthly contribution", v.Contribution, &next.Plan.MonthlyContribution, false},
		{"growth rate", v.Growth, &next.Plan.AnnualGrowthRate, true},
		{"yield rate", v.Yield, &next.Plan.AnnualYieldRate, true},
		{"target income", v.Target, &next.Plan.TargetIncome, false},
		{"benchmark rate", v.BenchmarkRate, &next.Benchmark.AnnualRate, true},
	}
	for _, f := range fields {
		d, err := parseDecimal(f.in)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		if f.percent {
			d = d.Div(decimal.NewFromInt(100))
		}
		*f.out = d.InexactFloat64()
	}

	if s := strings.TrimSpace(v.Locale); s != "" {
		next.Output.Locale = s
	}
	next.Output.CurrencySymbol = strings.TrimSpace(v.Currency)
	if v.Theme != "" {
		next.Appearance.Theme = v.Theme
	}

	*cfg = next
	return nil
}

// NewSetupForm builds the huh form that edits vals in place.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to snowball").
				Description("Set the defaults used when no flags are given.\nRates are yearly percentages."),
			huh.NewInput().Title("Initial balance").Value(&vals.Initial).Validate(validateNumber),
			huh.NewInput().Title("Monthly contribution").Value(&vals.Contribution).Validate(validateNumber),
			huh.NewInput().Title("Target monthly income").
				Description("0 stops after the first month").
				Value(&vals.Target).Validate(validateNumber),
		),
		huh.NewGroup(
			huh.NewInput().Title("Annual growth rate (%)").Value(&vals.Growth).Validate(validateNumber),
			huh.NewInput().Title("Annual yield rate (%)").Value(&vals.Yield).Validate(validateNumber),
			huh.NewInput().Title("Benchmark rate (%)").Value(&vals.BenchmarkRate).Validate(validateNumber),
		),
		huh.NewGroup(
			huh.NewInput().Title("Number locale").Placeholder("en, pt-BR, de").Value(&vals.Locale),
			huh.NewInput().Title("Currency symbol").Value(&vals.Currency),
			huh.NewSelect[string]().Title("Color theme").Options(themeOpts...).Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateNumber(s string) error {
	_, err := parseDecimal(s)
	return err
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	return d, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).String()
}
