package fetcher

import (
	"context"
	"time"

	"elecprice/internal/price"
)

// Fetcher is the core interface that every price source must implement.
// Each fetcher knows how to retrieve the hourly prices of one local day
// from a single origin.
type Fetcher interface {
	// Fetch retrieves the hourly prices for day's local calendar day.
	// A well-formed but empty answer is reported as an error, never as an
	// empty series with a nil error.
	Fetch(ctx context.Context, day time.Time) (price.Series, error)

	// Name returns a short identifier used in logs, traces and the journal.
	// Examples:
	//   - tarifaluz
	//   - ree
	//   - synthetic
	Name() string
}
