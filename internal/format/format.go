// Package format renders amounts, dates and labels for reports and notifications.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrencySymbol is used when no symbol is configured.
const DefaultCurrencySymbol = "₹"

var printer = message.NewPrinter(language.English)

// Amount renders d as a whole currency amount with thousands grouping, e.g. ₹1,200.
func Amount(d decimal.Decimal, symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + symbol + printer.Sprint(number.Decimal(d.Round(0).InexactFloat64(), number.MaxFractionDigits(0)))
}

// Grouped renders d with thousands grouping and at most two fraction digits.
func Grouped(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// ParseAmount parses a user supplied amount, tolerating grouping commas.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric string %q: %w", s, err)
	}
	return d, nil
}

// Date renders t as YYYY-MM-DD in loc.
func Date(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(time.DateOnly)
}

// DateTime renders t like "15 Aug 2025, 11:13 AM" in loc.
func DateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("02 Jan 2006, 03:04 PM")
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Compact renders large values with K/M/B suffixes, e.g. 1500 -> 1.5K, 2000000 -> 2M.
func Compact(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return trimZeroSuffix(v/1_000_000_000, "B")
	case v >= 1_000_000:
		return trimZeroSuffix(v/1_000_000, "M")
	case v >= 1_000:
		return trimZeroSuffix(v/1_000, "K")
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func trimZeroSuffix(v float64, suffix string) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + suffix
}
