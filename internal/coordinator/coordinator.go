package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"elecprice/internal/fetcher"
	"elecprice/internal/price"
)

const (
	defaultStageTimeout = 20 * time.Second

	// MessageEstimated is shown when estimates are used and no source reported a cause.
	MessageEstimated = "AVISO: Usando precios estimados. Estos NO son precios reales de electricidad. Los datos reales no están disponibles en este momento."
	// estimatedSuffix is appended to a reported cause.
	estimatedSuffix = "\n\nSe muestran precios ESTIMADOS que NO son reales."
)

var tracer = otel.Tracer("elecprice/internal/coordinator")

// Tier is one real price source in the fallback chain.
type Tier struct {
	Fetcher    fetcher.Fetcher
	Provenance price.Provenance
	// ReportFailure records the tier's failure as the user-facing cause
	// when every tier fails.
	ReportFailure bool
}

// Generator produces estimated prices when every tier fails.
type Generator interface {
	Generate(day time.Time) price.Series
}

// Options tunes a Coordinator. Zero values select defaults.
type Options struct {
	// StageTimeout bounds each tier. Expiry counts as a transport failure.
	StageTimeout time.Duration
	// Regions is the accepted catalogue. Empty accepts any region.
	Regions []string
	// DefaultRegion replaces unknown or empty regions.
	DefaultRegion string
	// Now returns the current time in the market's time zone.
	Now func() time.Time
}

// Coordinator runs the price sources in order and publishes the outcome to its Store.
type Coordinator struct {
	tiers    []Tier
	fallback Generator
	store    *Store
	opts     Options
}

// New creates a new Coordinator with the given tiers, tried in order.
func New(tiers []Tier, fallback Generator, store *Store, opts Options) *Coordinator {
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = defaultStageTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if store == nil {
		store = NewStore()
	}
	return &Coordinator{
		tiers:    slices.Clone(tiers),
		fallback: fallback,
		store:    store,
		opts:     opts,
	}
}

// Store returns the store results are published to.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Refresh runs one acquisition cycle for region and publishes its result.
// It always yields prices: when no tier succeeds the result carries estimates.
// Overlapping calls are allowed; the last one to finish is published.
func (c *Coordinator) Refresh(ctx context.Context, region string) Result {
	region = c.resolveRegion(region)
	cycleID := uuid.NewString()
	logger := slog.With("cycle_id", cycleID, "region", region)

	ctx, span := tracer.Start(ctx, "coordinator.Refresh", trace.WithAttributes(
		attribute.String("cycle_id", cycleID),
		attribute.String("region", region),
	))
	defer span.End()

	c.store.begin(region, cycleID)

	day := c.opts.Now()
	attempts := make([]fetcher.Result, 0, len(c.tiers))
	var cause string

	for _, tier := range c.tiers {
		series, attempt := c.runTier(ctx, tier, day)
		attempts = append(attempts, attempt)

		if attempt.Error == nil {
			logger.Info("prices acquired",
				"provenance", tier.Provenance,
				"records", series.Len(),
				"duration", attempt.Duration)
			span.SetAttributes(attribute.String("provenance", string(tier.Provenance)))
			return c.store.finish(Result{
				CycleID:    cycleID,
				Region:     region,
				State:      StateSucceeded,
				Series:     series,
				Provenance: tier.Provenance,
				UpdatedAt:  time.Now(),
				Attempts:   attempts,
			})
		}

		logger.Warn("price source failed, falling through",
			"source", attempt.Source,
			"error", attempt.Error)
		if tier.ReportFailure {
			cause = fetcher.UserMessage(attempt.Error)
		}
	}

	var series price.Series
	if c.fallback != nil {
		series = c.fallback.Generate(day)
	}
	message := estimatedMessage(cause)

	logger.Warn("using estimated prices", "records", series.Len(), "cause", cause)
	span.SetAttributes(attribute.String("provenance", string(price.ProvenanceSynthetic)))
	span.SetStatus(codes.Error, "no real price source available")

	return c.store.finish(Result{
		CycleID:      cycleID,
		Region:       region,
		State:        StateDegraded,
		Series:       series,
		Provenance:   price.ProvenanceSynthetic,
		IsSynthetic:  true,
		ErrorMessage: message,
		UpdatedAt:    time.Now(),
		Attempts:     attempts,
	})
}

type outcome struct {
	series price.Series
	err    error
}

// runTier fetches from one source under the stage timeout. An empty series
// without an error is reported as no data.
func (c *Coordinator) runTier(ctx context.Context, tier Tier, day time.Time) (price.Series, fetcher.Result) {
	name := tier.Fetcher.Name()
	stageCtx, cancel := context.WithTimeout(ctx, c.opts.StageTimeout)
	defer cancel()

	stageCtx, span := tracer.Start(stageCtx, "coordinator.tier", trace.WithAttributes(
		attribute.String("source", name),
	))
	defer span.End()

	slog.Debug("fetching prices", "source", name)
	start := time.Now()

	done := make(chan outcome, 1)
	go func() {
		series, err := tier.Fetcher.Fetch(stageCtx, day)
		done <- outcome{series: series, err: err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-stageCtx.Done():
		o.err = fetcher.ClassifyTransportError(stageCtx.Err())
	}

	if o.err == nil && o.series.IsEmpty() {
		o.err = fetcher.NewNoDataError(fmt.Sprintf("%s returned no prices", name))
	}

	attempt := fetcher.Result{
		Source:   name,
		Duration: time.Since(start),
		Error:    o.err,
	}
	if o.err != nil {
		span.RecordError(o.err)
		span.SetStatus(codes.Error, o.err.Error())
		return price.Series{}, attempt
	}

	attempt.Records = o.series.Len()
	span.SetAttributes(attribute.Int("records", attempt.Records))
	return o.series, attempt
}

func (c *Coordinator) resolveRegion(region string) string {
	if region == "" {
		return c.opts.DefaultRegion
	}
	if len(c.opts.Regions) == 0 || slices.Contains(c.opts.Regions, region) {
		return region
	}
	slog.Warn("unknown region, using default", "region", region, "default", c.opts.DefaultRegion)
	return c.opts.DefaultRegion
}

// estimatedMessage builds the warning attached to synthetic prices.
func estimatedMessage(cause string) string {
	if cause == "" {
		return MessageEstimated
	}
	return cause + estimatedSuffix
}

// ErrUnknownRegion is returned by ValidateRegion.
var ErrUnknownRegion = errors.New("unknown region")

// ValidateRegion reports whether region belongs to the catalogue.
func (c *Coordinator) ValidateRegion(region string) error {
	if len(c.opts.Regions) == 0 || slices.Contains(c.opts.Regions, region) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
}

// Regions returns the accepted region catalogue.
func (c *Coordinator) Regions() []string {
	return slices.Clone(c.opts.Regions)
}
