// Package format renders ledger quantities and instants for display.
package format

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateTimeLayout is the long date, short time pattern used for every timestamp.
const DateTimeLayout = "January 2, 2006 3:04 PM"

// MaxFractionDigits bounds the fraction digits of every rendered quantity.
const MaxFractionDigits = 2

// ErrUnparseable marks source values that are not numbers or instants.
var ErrUnparseable = errors.New("unparseable value")

// FormatError reports a single field that could not be rendered.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format: %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Formatter renders values for one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer

	decimalSep string
	groupSep   string
	minus      string
}

// New returns a Formatter for tag.
func New(tag language.Tag) *Formatter {
	p := message.NewPrinter(tag)
	f := &Formatter{tag: tag, printer: p}

	half := []rune(p.Sprint(number.Decimal(1.5, number.MinFractionDigits(1))))
	if len(half) > 2 {
		f.decimalSep = string(half[1 : len(half)-1])
	}
	neg := []rune(p.Sprint(number.Decimal(-1)))
	f.minus = string(neg[:len(neg)-1])
	f.groupSep = firstNonDigitRun(p.Sprint(number.Decimal(1000000)))
	return f
}

func firstNonDigitRun(s string) string {
	start := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if start < 0 {
		return ""
	}
	end := strings.IndexFunc(s[start:], unicode.IsDigit)
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}

// Tag returns the formatter locale.
func (f *Formatter) Tag() language.Tag { return f.tag }

// Decimal groups d by locale and keeps at most two fraction digits, trimming trailing zeros.
// The value is never converted to floating point.
func (f *Formatter) Decimal(d decimal.Decimal) string {
	rounded := d.Round(MaxFractionDigits)
	if rounded.IsZero() {
		return f.printer.Sprint(number.Decimal(0))
	}
	abs := rounded.Abs()
	whole := abs.Truncate(0)

	var b strings.Builder
	if rounded.Sign() < 0 {
		b.WriteString(f.minus)
	}
	b.WriteString(f.integer(whole.BigInt()))

	frac := abs.Sub(whole).Shift(MaxFractionDigits).IntPart()
	if frac > 0 {
		width := MaxFractionDigits
		for frac%10 == 0 {
			frac /= 10
			width--
		}
		b.WriteString(f.decimalSep)
		b.WriteString(f.printer.Sprint(number.Decimal(frac, number.MinIntegerDigits(width), number.NoSeparator())))
	}
	return b.String()
}

// integer formats a non-negative whole number. Values beyond int64 are grouped
// in threes with the locale separator.
func (f *Formatter) integer(n *big.Int) string {
	if n.IsInt64() {
		return f.printer.Sprint(number.Decimal(n.Int64()))
	}
	digits := n.String()
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	head, _ := strconv.ParseInt(digits[:lead], 10, 64)
	parts := []string{f.printer.Sprint(number.Decimal(head))}
	for i := lead; i < len(digits); i += 3 {
		group, _ := strconv.ParseInt(digits[i:i+3], 10, 64)
		parts = append(parts, f.printer.Sprint(number.Decimal(group, number.MinIntegerDigits(3), number.NoSeparator())))
	}
	return strings.Join(parts, f.groupSep)
}

// Amount renders v. Absent values are empty, never "0".
func (f *Formatter) Amount(field string, v Value) (string, error) {
	if v.Absent() {
		return "", nil
	}
	d, ok := v.Decimal()
	if !ok {
		return "", &FormatError{Field: field, Value: v.Raw(), Err: ErrUnparseable}
	}
	return f.Decimal(d), nil
}

// AmountSortKey returns the canonical decimal text of v, or "" when absent.
func AmountSortKey(field string, v Value) (string, error) {
	if v.Absent() {
		return "", nil
	}
	d, ok := v.Decimal()
	if !ok {
		return "", &FormatError{Field: field, Value: v.Raw(), Err: ErrUnparseable}
	}
	return d.String(), nil
}

// DateTime renders ts in UTC with DateTimeLayout. Absent timestamps are empty.
func (f *Formatter) DateTime(field string, ts Timestamp) (string, error) {
	if ts.Absent() {
		return "", nil
	}
	t, ok := ts.Time()
	if !ok {
		return "", &FormatError{Field: field, Value: ts.Raw(), Err: ErrUnparseable}
	}
	return t.UTC().Format(DateTimeLayout), nil
}

// DateTimeSortKey returns the raw instant as RFC 3339 text, or "" when absent.
func DateTimeSortKey(field string, ts Timestamp) (string, error) {
	if ts.Absent() {
		return "", nil
	}
	t, ok := ts.Time()
	if !ok {
		return "", &FormatError{Field: field, Value: ts.Raw(), Err: ErrUnparseable}
	}
	return t.UTC().Format(time.RFC3339Nano), nil
}

// ParseLocale reads a BCP 47 tag or a POSIX locale name such as "de_DE.UTF-8".
func ParseLocale(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return language.AmericanEnglish, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("format: parse locale %q: %w", s, err)
	}
	return tag, nil
}

// EnvironmentLocale returns the process locale from LC_ALL, LC_NUMERIC or LANG.
func EnvironmentLocale() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		if v := os.Getenv(key); v != "" {
			if tag, err := ParseLocale(v); err == nil {
				return tag
			}
		}
	}
	return language.AmericanEnglish
}
