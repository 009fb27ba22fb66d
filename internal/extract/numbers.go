package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	decimalPattern    = regexp.MustCompile(`\d+[.,]\d+`)
	pricedUnitPattern = regexp.MustCompile(`(\d+[.,]\d+)\s*` + regexp.QuoteMeta(UnitSuffix))
	integerPattern    = regexp.MustCompile(`\d+`)
)

// ParseDecimal parses a number written with either '.' or ',' as the decimal
// separator. It reports false when the text is not a number.
func ParseDecimal(text string) (decimal.Decimal, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if normalized == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FirstDecimal returns the first decimal number (digits, separator, digits) in text.
func FirstDecimal(text string) (decimal.Decimal, bool) {
	for _, candidate := range decimalPattern.FindAllString(text, -1) {
		if d, ok := ParseDecimal(candidate); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// LastDecimal returns the last decimal number in text.
func LastDecimal(text string) (decimal.Decimal, bool) {
	candidates := decimalPattern.FindAllString(text, -1)
	for i := len(candidates) - 1; i >= 0; i-- {
		if d, ok := ParseDecimal(candidates[i]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// DecimalNearUnit returns the number written immediately before the unit suffix.
// When text does not contain the suffix it is taken to end where the suffix
// starts, so the last number in text is the nearest one.
func DecimalNearUnit(text string) (decimal.Decimal, bool) {
	if m := pricedUnitPattern.FindStringSubmatch(text); m != nil {
		if d, ok := ParseDecimal(m[1]); ok {
			return d, true
		}
	}
	if unit := strings.Index(text, UnitSuffix); unit >= 0 {
		return LastDecimal(text[:unit])
	}
	return LastDecimal(text)
}

// firstInteger returns the first run of digits in text.
func firstInteger(text string) (int, bool) {
	m := integerPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// headRunes returns at most n leading runes of s.
func headRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// tailRunes returns at most n trailing runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := len(s)
	for count := 0; i > 0 && count < n; count++ {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}
