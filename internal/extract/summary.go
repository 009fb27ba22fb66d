package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"elecprice/internal/price"
)

const (
	LowestAnchor  = "Precio más bajo del día"
	HighestAnchor = "Precio más alto del día"
	AverageAnchor = "Precio medio del día"

	// summaryLookback is how many runes before the unit suffix may hold the price.
	summaryLookback = 10
)

var (
	averageLowRatio   = decimal.RequireFromString("0.6")
	averageHighRatio  = decimal.RequireFromString("1.4")
	lowToHighRatio    = decimal.RequireFromString("2.5")
	highToLowRatio    = decimal.RequireFromString("0.4")
	nightFraction     = decimal.RequireFromString("0.1")
	morningFraction   = decimal.RequireFromString("0.7")
	middayFraction    = decimal.RequireFromString("0.4")
	afternoonFraction = decimal.RequireFromString("0.2")
	lateFraction      = decimal.RequireFromString("0.6")
)

// Summary holds the daily figures the page prints above its table.
// A zero price means the figure was not found.
type Summary struct {
	Lowest      decimal.Decimal
	LowestHour  int
	Highest     decimal.Decimal
	HighestHour int
	Average     decimal.Decimal
}

// ExtractSummary reads the lowest, highest and average figures from html.
func ExtractSummary(html string) Summary {
	var s Summary
	if rest, ok := afterAnchor(html, LowestAnchor); ok {
		s.Lowest = summaryPrice(rest)
		s.LowestHour = summaryHour(rest)
	}
	if rest, ok := afterAnchor(html, HighestAnchor); ok {
		s.Highest = summaryPrice(rest)
		s.HighestHour = summaryHour(rest)
	}
	if rest, ok := afterAnchor(html, AverageAnchor); ok {
		s.Average = summaryPrice(rest)
	}
	return s
}

// HasValues reports whether at least one figure was found.
func (s Summary) HasValues() bool {
	return s.Lowest.IsPositive() || s.Highest.IsPositive() || s.Average.IsPositive()
}

// Complete synthesizes 24 hourly prices that follow a typical daily curve
// between the lowest and highest figures. Missing figures are derived from the
// ones present. It returns nil when the summary is empty.
func (s Summary) Complete(day time.Time) []price.Record {
	if !s.HasValues() {
		return nil
	}

	lowest, highest := s.Lowest, s.Highest
	switch {
	case lowest.IsZero() && highest.IsZero():
		lowest = s.Average.Mul(averageLowRatio)
		highest = s.Average.Mul(averageHighRatio)
	case highest.IsZero():
		highest = lowest.Mul(lowToHighRatio)
	case lowest.IsZero():
		lowest = highest.Mul(highToLowRatio)
	}

	span := highest.Sub(lowest)
	records := make([]price.Record, 0, price.HoursPerDay)
	for hour := 0; hour < price.HoursPerDay; hour++ {
		var value decimal.Decimal
		switch {
		case hour == s.LowestHour && lowest.IsPositive():
			value = lowest
		case hour == s.HighestHour && highest.IsPositive():
			value = highest
		default:
			value = curve(hour, lowest, highest, span)
		}
		records = append(records, price.NewRecord(day, hour, value))
	}
	return records
}

func curve(hour int, lowest, highest, span decimal.Decimal) decimal.Decimal {
	switch {
	case hour < 7:
		return lowest.Add(span.Mul(nightFraction))
	case hour < 10:
		return lowest.Add(span.Mul(morningFraction))
	case hour < 14:
		return lowest.Add(span.Mul(middayFraction))
	case hour < 18:
		return lowest.Add(span.Mul(afternoonFraction))
	case hour < 22:
		return highest
	default:
		return lowest.Add(span.Mul(lateFraction))
	}
}

func afterAnchor(html, anchor string) (string, bool) {
	i := strings.Index(html, anchor)
	if i < 0 {
		return "", false
	}
	return html[i+len(anchor):], true
}

// summaryPrice takes the first number in the few runes before the first unit
// suffix following the anchor.
func summaryPrice(rest string) decimal.Decimal {
	unit := strings.Index(rest, UnitSuffix)
	if unit < 0 {
		return decimal.Zero
	}
	value, ok := FirstDecimal(tailRunes(rest[:unit], summaryLookback))
	if !ok {
		return decimal.Zero
	}
	return value
}

// summaryHour is the first integer before the first '-' following the anchor.
func summaryHour(rest string) int {
	dash := strings.Index(rest, "-")
	if dash < 0 {
		return 0
	}
	hour, ok := firstInteger(rest[:dash])
	if !ok {
		return 0
	}
	return hour
}
