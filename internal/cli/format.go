// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders money amounts with locale-aware thousands separators.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter returns a formatter for a BCP 47 locale such as "en" or "pt-BR".
// Unknown locales fall back to English.
func NewFormatter(locale, symbol string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Amount formats v with two decimals and grouping, rounding half away from zero.
// e.g., 1234567.891 -> "1,234,567.89" in English, "1.234.567,89" in pt-BR
func (f Formatter) Amount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	cents := decimal.NewFromFloat(v).Round(2)
	return f.printer.Sprintf("%.2f", cents.InexactFloat64())
}

// Money formats v as an amount prefixed with the currency symbol.
func (f Formatter) Money(v float64) string {
	if v < 0 {
		return "-" + f.withSymbol(f.Amount(-v))
	}
	return f.withSymbol(f.Amount(v))
}

// SignedMoney formats v with an explicit leading sign.
func (f Formatter) SignedMoney(v float64) string {
	if v < 0 {
		return f.Money(v)
	}
	return "+" + f.Money(v)
}

func (f Formatter) withSymbol(amount string) string {
	if f.symbol == "" {
		return amount
	}
	return f.symbol + " " + amount
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRate formats an annual rate with two decimals, e.g. 0.1365 -> "13.65%".
func FormatRate(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// FormatElapsed spells out a month count.
// e.g., 85 -> "7 years and 1 month", 12 -> "1 year and 0 months"
func FormatElapsed(months int) string {
	years := months / 12
	rest := months % 12
	return fmt.Sprintf("%d %s and %d %s",
		years, plural(years, "year", "years"),
		rest, plural(rest, "month", "months"))
}

// FormatElapsedShort formats a month count compactly.
// e.g., 85 -> "7y 1m", 24 -> "2y", 5 -> "5m"
func FormatElapsedShort(months int) string {
	years := months / 12
	rest := months % 12
	switch {
	case years > 0 && rest > 0:
		return fmt.Sprintf("%dy %dm", years, rest)
	case years > 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dm", rest)
	}
}

// SampleLabel names a sample by its zero-based month index: "Y0", "Y3" on
// year boundaries, "7y4m" otherwise.
func SampleLabel(month int) string {
	if month%12 == 0 {
		return fmt.Sprintf("Y%d", month/12)
	}
	return fmt.Sprintf("%dy%dm", month/12, month%12)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
