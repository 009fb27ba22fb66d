// Package extract recovers hourly electricity prices from the HTML of a
// price-comparison page using a cascade of text heuristics.
//
// The page layout is not stable, so each strategy works on raw text rather
// than on the DOM and the first strategy that yields any price wins.
package extract

import (
	"fmt"
	"strings"
	"time"

	"elecprice/internal/price"
)

const (
	// UnitSuffix follows every price on the page.
	UnitSuffix = "€/kWh"
	// TableAnchor heads the hourly price table.
	TableAnchor = "Precio del kWh de luz por hora"

	// tableLookahead caps how far past an hour label a table price may sit.
	tableLookahead = 100
)

// Method identifies which heuristic produced a series.
type Method int

const (
	MethodNone Method = iota
	MethodHourLabels
	MethodTable
	MethodSummary
)

func (m Method) String() string {
	switch m {
	case MethodHourLabels:
		return "hour_labels"
	case MethodTable:
		return "table"
	case MethodSummary:
		return "summary"
	default:
		return "none"
	}
}

// HourLabel returns the text the page uses for an hour slot, e.g. "07:00 - 08:00".
// Hour 23 ends at "24:00".
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00 - %02d:00", hour, hour+1)
}

// Extract returns the hourly prices found in html, stamped on referenceDate.
// The result is empty when no heuristic matches.
func Extract(html string, referenceDate time.Time) price.Series {
	series, _ := ExtractWithMethod(html, referenceDate)
	return series
}

// ExtractWithMethod is Extract that also reports the heuristic that matched.
func ExtractWithMethod(html string, referenceDate time.Time) (price.Series, Method) {
	if records := fromHourLabels(html, referenceDate); len(records) > 0 {
		return price.NewSeries(records...), MethodHourLabels
	}
	if records := fromTable(html, referenceDate); len(records) > 0 {
		return price.NewSeries(records...), MethodTable
	}
	if records := ExtractSummary(html).Complete(referenceDate); len(records) > 0 {
		return price.NewSeries(records...), MethodSummary
	}
	return price.NewSeries(), MethodNone
}

// fromHourLabels takes, for each hour label, the first number between the
// label and the next unit suffix.
func fromHourLabels(html string, day time.Time) []price.Record {
	var records []price.Record
	for hour := 0; hour < price.HoursPerDay; hour++ {
		label := HourLabel(hour)
		start := strings.Index(html, label)
		if start < 0 {
			continue
		}
		after := html[start+len(label):]
		unit := strings.Index(after, UnitSuffix)
		if unit < 0 {
			continue
		}
		if value, ok := FirstDecimal(after[:unit+len(UnitSuffix)]); ok {
			records = append(records, price.NewRecord(day, hour, value))
		}
	}
	return records
}

// fromTable searches only after the table heading. For each label the price
// is the number nearest the next unit suffix, within tableLookahead runes.
func fromTable(html string, day time.Time) []price.Record {
	anchor := strings.Index(html, TableAnchor)
	if anchor < 0 {
		return nil
	}
	section := html[anchor+len(TableAnchor):]

	var records []price.Record
	for hour := 0; hour < price.HoursPerDay; hour++ {
		label := HourLabel(hour)
		start := strings.Index(section, label)
		if start < 0 {
			continue
		}
		after := section[start+len(label):]
		unit := strings.Index(after, UnitSuffix)
		if unit < 0 {
			continue
		}
		window := headRunes(after[:unit], tableLookahead)
		if value, ok := DecimalNearUnit(window); ok {
			records = append(records, price.NewRecord(day, hour, value))
		}
	}
	return records
}
