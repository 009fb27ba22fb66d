package commands

import (
	"fmt"
	"time"

	"elecprice/internal/config"
	"elecprice/internal/coordinator"
	"elecprice/internal/journal"
	"elecprice/internal/price"
	"elecprice/internal/ree"
	"elecprice/internal/synthetic"
	"elecprice/internal/tarifaluz"
	"elecprice/internal/timezone"
)

// buildCoordinator wires the price sources in trust order: the scraped page,
// then the market API, then estimates.
func buildCoordinator(cfg *config.Config) (*coordinator.Coordinator, func() time.Time, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	now := timezone.Clock(loc)
	clientOpts := cfg.ClientOptions()

	tiers := []coordinator.Tier{
		{
			Fetcher:    tarifaluz.NewClient(cfg.TarifaluzBaseURL, clientOpts),
			Provenance: price.ProvenanceScraped,
		},
		{
			Fetcher:       ree.NewClient(cfg.REEBaseURL, clientOpts),
			Provenance:    price.ProvenanceAPI,
			ReportFailure: true,
		},
	}

	coord := coordinator.New(tiers, synthetic.New(), coordinator.NewStore(), coordinator.Options{
		StageTimeout:  cfg.StageTimeout,
		Regions:       cfg.Regions,
		DefaultRegion: cfg.Region,
		Now:           now,
	})
	return coord, now, nil
}

// openRecorder returns the SQLite journal, or a no-op recorder when no path is set.
func openRecorder(cfg *config.Config) (journal.Recorder, error) {
	if cfg.JournalPath == "" {
		return journal.NewNoopRecorder(), nil
	}
	rec, err := journal.NewSQLiteRecorder(cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return rec, nil
}
