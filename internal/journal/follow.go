package journal

import (
	"context"
	"log/slog"

	"elecprice/internal/coordinator"
)

// Follow records every completed cycle published by store until ctx is done.
// Cycles superseded before they are read are skipped.
func Follow(ctx context.Context, store *coordinator.Store, rec Recorder) {
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-updates:
			if !ok {
				return
			}
			if !completed(r) || r.CycleID == last {
				continue
			}
			last = r.CycleID
			if err := rec.Record(ctx, r); err != nil {
				slog.Error("record cycle", "cycle_id", r.CycleID, "error", err)
			}
		}
	}
}
