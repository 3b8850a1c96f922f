// Package numfmt renders numbers for display: compact notation (1.2K, 3.4M),
// currency and fixed-precision values, with locale-aware digits.
//
// Formatting is applied at render time only; inputs are never modified.
// Every function accepts any float64, including zero, negatives, very large
// magnitudes and non-finite values, and never panics.
package numfmt

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NoFractionCap selects the default compact rounding: two significant digits
// or integer precision, whichever keeps more digits.
const NoFractionCap = -1

// DefaultCurrencySymbol is used when none is configured.
const DefaultCurrencySymbol = "$"

// compact suffixes for thousands, millions, billions, trillions (short scale).
var suffixes = []string{"", "K", "M", "B", "T"}

var (
	thousand   = decimal.NewFromInt(1000)
	thresholds = []decimal.Decimal{decimal.New(1, 3), decimal.New(1, 6), decimal.New(1, 9), decimal.New(1, 12)}
)

// Formatter is an immutable number formatting policy.
type Formatter struct {
	tag               language.Tag
	printer           *message.Printer
	maxFractionDigits int
	currencySymbol    string
}

// New creates a formatter for the given BCP 47 locale. An empty or
// unparseable locale falls back to English.
func New(locale string, maxFractionDigits int) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	if maxFractionDigits < NoFractionCap {
		maxFractionDigits = NoFractionCap
	}
	return &Formatter{
		tag:               tag,
		printer:           message.NewPrinter(tag),
		maxFractionDigits: maxFractionDigits,
		currencySymbol:    DefaultCurrencySymbol,
	}
}

// NewChart returns the chart policy: compact notation with no fraction cap,
// used for axis ticks and tooltips.
func NewChart(locale string) *Formatter { return New(locale, NoFractionCap) }

// NewSummary returns the summary policy: compact notation capped at two
// fraction digits, used for summary tables.
func NewSummary(locale string) *Formatter { return New(locale, 2) }

// WithCurrencySymbol returns a copy of f that prefixes currency values with symbol.
func (f *Formatter) WithCurrencySymbol(symbol string) *Formatter {
	cp := *f
	cp.currencySymbol = symbol
	return &cp
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag { return f.tag }

// Compact renders v in compact short notation, e.g. 1234 -> "1.2K".
func (f *Formatter) Compact(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	r, tier := f.scale(decimal.NewFromFloat(math.Abs(v)))
	sign := ""
	if v < 0 && !r.IsZero() {
		sign = "-"
	}
	return sign + f.digits(r) + suffixes[tier]
}

// Currency renders v as a compact currency amount, e.g. -1500 -> "-$1.5K".
func (f *Formatter) Currency(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	body := f.Compact(math.Abs(v))
	if v < 0 && body != "0" {
		return "-" + f.currencySymbol + body
	}
	return f.currencySymbol + body
}

// Money renders v as a currency amount with exactly two fraction digits.
func (f *Formatter) Money(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	m := NewMoney(v).Round()
	body := f.fixed(m.Abs().Decimal, 2)
	if m.IsNegative() {
		return "-" + f.currencySymbol + body
	}
	return f.currencySymbol + body
}

// Fixed renders v with exactly n fraction digits, rounding half away from zero.
func (f *Formatter) Fixed(v float64, n int) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	if n < 0 {
		n = 0
	}
	d := decimal.NewFromFloat(v).Round(int32(n))
	if d.IsZero() {
		return f.fixed(d, n)
	}
	if d.IsNegative() {
		return "-" + f.fixed(d.Abs(), n)
	}
	return f.fixed(d, n)
}

// Integer renders v rounded to a whole number with locale grouping.
func (f *Formatter) Integer(v float64) string { return f.Fixed(v, 0) }

// scale picks the compact tier for a non-negative value and rounds the scaled
// mantissa, promoting to the next tier when rounding reaches 1000.
func (f *Formatter) scale(d decimal.Decimal) (decimal.Decimal, int) {
	tier := 0
	for tier < len(thresholds) && d.GreaterThanOrEqual(thresholds[tier]) {
		tier++
	}
	for {
		r := f.round(d.Shift(int32(-3 * tier)))
		if tier < len(suffixes)-1 && r.GreaterThanOrEqual(thousand) {
			tier++
			continue
		}
		return r, tier
	}
}

func (f *Formatter) round(scaled decimal.Decimal) decimal.Decimal {
	if f.maxFractionDigits >= 0 {
		return scaled.Round(int32(f.maxFractionDigits))
	}
	if scaled.IsZero() {
		return scaled
	}
	intDigits := int(math.Floor(math.Log10(scaled.InexactFloat64()))) + 1
	places := 2 - intDigits
	if places < 0 {
		places = 0
	}
	return scaled.Round(int32(places))
}

// digits prints a rounded non-negative decimal with as many fraction digits
// as it needs (trailing zeros dropped).
func (f *Formatter) digits(d decimal.Decimal) string {
	s := d.String()
	frac := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac = len(s) - i - 1
	}
	return f.fixed(d, frac)
}

func (f *Formatter) fixed(d decimal.Decimal, frac int) string {
	return f.printer.Sprintf("%v", number.Decimal(d.InexactFloat64(),
		number.MinFractionDigits(frac),
		number.MaxFractionDigits(frac)))
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "∞", true
	case math.IsInf(v, -1):
		return "-∞", true
	}
	return "", false
}
