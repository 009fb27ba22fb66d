package price

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// HoursPerDay is the number of records in a complete series.
const HoursPerDay = 24

// Record is the unit price for one hour of a local day, in €/kWh.
type Record struct {
	Hour  time.Time       `json:"hour"`
	Price decimal.Decimal `json:"price"`
}

// NewRecord creates a record for the given hour of day's local calendar day.
func NewRecord(day time.Time, hour int, value decimal.Decimal) Record {
	return Record{
		Hour:  time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location()),
		Price: value,
	}
}

// Series is an immutable, chronologically ordered sequence of hourly records.
// Every derived value is computed from the records on demand.
type Series struct {
	records []Record
}

// NewSeries copies the given records and sorts them ascending by hour.
func NewSeries(records ...Record) Series {
	if len(records) == 0 {
		return Series{}
	}
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return a.Hour.Compare(b.Hour)
	})
	return Series{records: sorted}
}

// Len returns the number of records.
func (s Series) Len() int { return len(s.records) }

// IsEmpty reports whether the series holds no records.
func (s Series) IsEmpty() bool { return len(s.records) == 0 }

// Records returns a copy of the records in chronological order.
func (s Series) Records() []Record { return slices.Clone(s.records) }

// At returns the i-th record.
func (s Series) At(i int) Record { return s.records[i] }

// CurrentPrice returns the price of the record whose hour of day matches now's
// hour of day, or zero when there is none.
func (s Series) CurrentPrice(now time.Time) decimal.Decimal {
	for _, r := range s.records {
		if r.Hour.Hour() == now.In(r.Hour.Location()).Hour() {
			return r.Price
		}
	}
	return decimal.Zero
}

// Lowest returns the cheapest record; ties go to the earliest hour.
func (s Series) Lowest() (Record, bool) {
	return s.extreme(func(candidate, best decimal.Decimal) bool {
		return candidate.LessThan(best)
	})
}

// Highest returns the most expensive record; ties go to the earliest hour.
func (s Series) Highest() (Record, bool) {
	return s.extreme(func(candidate, best decimal.Decimal) bool {
		return candidate.GreaterThan(best)
	})
}

func (s Series) extreme(better func(candidate, best decimal.Decimal) bool) (Record, bool) {
	if len(s.records) == 0 {
		return Record{}, false
	}
	best := s.records[0]
	for _, r := range s.records[1:] {
		if better(r.Price, best.Price) {
			best = r
		}
	}
	return best, true
}

// Average returns the arithmetic mean of all prices, or zero for an empty series.
func (s Series) Average() decimal.Decimal {
	if len(s.records) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, r := range s.records {
		total = total.Add(r.Price)
	}
	return total.Div(decimal.NewFromInt(int64(len(s.records))))
}

// IsComplete reports whether the series holds exactly hours 0-23 of a single
// local day, strictly increasing.
func (s Series) IsComplete() bool {
	if len(s.records) != HoursPerDay {
		return false
	}
	y, m, d := s.records[0].Hour.Date()
	for i, r := range s.records {
		ry, rm, rd := r.Hour.Date()
		if ry != y || rm != m || rd != d || r.Hour.Hour() != i {
			return false
		}
	}
	return true
}

// Summary bundles the derived statistics a display layer needs.
type Summary struct {
	Current decimal.Decimal `json:"current"`
	Lowest  *Record         `json:"lowest,omitempty"`
	Highest *Record         `json:"highest,omitempty"`
	Average decimal.Decimal `json:"average"`
}

// Summarize computes the summary statistics relative to now.
func (s Series) Summarize(now time.Time) Summary {
	sum := Summary{
		Current: s.CurrentPrice(now),
		Average: s.Average(),
	}
	if r, ok := s.Lowest(); ok {
		sum.Lowest = &r
	}
	if r, ok := s.Highest(); ok {
		sum.Highest = &r
	}
	return sum
}

// MarshalJSON encodes the series as its array of records.
func (s Series) MarshalJSON() ([]byte, error) {
	if s.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.records)
}
