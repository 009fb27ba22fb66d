// Package synthetic produces plausible estimated prices for when no real
// source is reachable. Its output is never presented as real data.
package synthetic

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"elecprice/internal/fetcher"
	"elecprice/internal/price"
)

// band is a half-open price range [low, high) in €/kWh.
type band struct {
	low, high float64
}

var (
	night   = band{0.08, 0.12}
	valley  = band{0.15, 0.20}
	midday  = band{0.18, 0.23}
	evening = band{0.25, 0.35}
	late    = band{0.18, 0.25}
)

var step = decimal.New(1, -4)

// clamp keeps rounding artefacts inside [low, high).
func (b band) clamp(d decimal.Decimal) decimal.Decimal {
	low, high := decimal.NewFromFloat(b.low), decimal.NewFromFloat(b.high)
	switch {
	case d.LessThan(low):
		return low
	case !d.LessThan(high):
		return high.Sub(step)
	}
	return d
}

// bandFor returns the range an hour's price is drawn from.
func bandFor(hour int) band {
	switch {
	case hour <= 6:
		return night
	case hour <= 9, hour >= 14 && hour <= 16:
		return valley
	case hour <= 13:
		return midday
	case hour <= 21:
		return evening
	default:
		return late
	}
}

// Generator draws hourly prices from fixed time-of-day bands.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator seeded from the runtime's random source.
func New() *Generator {
	return NewWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewWithSource creates a generator backed by src, for reproducible output.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// Generate returns 24 estimated prices for day's local calendar day,
// truncated to 4 decimal places.
func (g *Generator) Generate(day time.Time) price.Series {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := make([]price.Record, 0, price.HoursPerDay)
	for hour := 0; hour < price.HoursPerDay; hour++ {
		b := bandFor(hour)
		v := b.low + g.rng.Float64()*(b.high-b.low)
		value := b.clamp(decimal.NewFromFloat(v).Truncate(4))
		records = append(records, price.NewRecord(day, hour, value))
	}
	return price.NewSeries(records...)
}

// Fetch implements fetcher.Fetcher. It never fails.
func (g *Generator) Fetch(_ context.Context, day time.Time) (price.Series, error) {
	return g.Generate(day), nil
}

// Name identifies the source in logs and attempt trails.
func (g *Generator) Name() string {
	return "synthetic"
}

var _ fetcher.Fetcher = (*Generator)(nil)
