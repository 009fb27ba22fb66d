package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"elecprice/internal/fetcher"
	"elecprice/internal/price"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, day time.Time) (price.Series, error)
	NameFunc  func() string

	calls atomic.Int32
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, day time.Time) (price.Series, error) {
	m.calls.Add(1)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, day)
	}
	return price.NewSeries(), nil
}

// Name implements the Fetcher interface
func (m *MockFetcher) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// Calls returns how many times Fetch has been invoked.
func (m *MockFetcher) Calls() int {
	return int(m.calls.Load())
}

// NewMockFetcher creates a simple mock fetcher with predefined values
func NewMockFetcher(name string, series price.Series, err error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, day time.Time) (price.Series, error) {
			return series, err
		},
		NameFunc: func() string {
			return name
		},
	}
}

// FlatSeries returns a complete day where every hour costs value.
func FlatSeries(day time.Time, value string) price.Series {
	d := decimal.RequireFromString(value)
	records := make([]price.Record, 0, price.HoursPerDay)
	for hour := 0; hour < price.HoursPerDay; hour++ {
		records = append(records, price.NewRecord(day, hour, d))
	}
	return price.NewSeries(records...)
}

var _ fetcher.Fetcher = (*MockFetcher)(nil)
