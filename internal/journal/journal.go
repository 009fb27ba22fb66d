// Package journal keeps an audit trail of completed acquisition cycles:
// which source served the prices and why the others failed.
package journal

import (
	"context"
	"time"

	"elecprice/internal/coordinator"
)

// Attempt is the stored form of one source attempt.
type Attempt struct {
	Source     string `json:"source"`
	Records    int    `json:"records"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Entry is one recorded cycle.
type Entry struct {
	CycleID    string
	Region     string
	State      coordinator.State
	Provenance string
	Synthetic  bool
	Records    int
	Message    string
	Attempts   []Attempt
	RecordedAt time.Time
}

// Recorder persists completed cycles.
type Recorder interface {
	Record(ctx context.Context, result coordinator.Result) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NewEntry converts a published result into its stored form.
func NewEntry(result coordinator.Result) Entry {
	attempts := make([]Attempt, 0, len(result.Attempts))
	for _, a := range result.Attempts {
		attempts = append(attempts, Attempt{
			Source:     a.Source,
			Records:    a.Records,
			DurationMS: a.Duration.Milliseconds(),
			Error:      a.ErrorString(),
		})
	}
	recordedAt := result.UpdatedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return Entry{
		CycleID:    result.CycleID,
		Region:     result.Region,
		State:      result.State,
		Provenance: string(result.Provenance),
		Synthetic:  result.IsSynthetic,
		Records:    result.Series.Len(),
		Message:    result.ErrorMessage,
		Attempts:   attempts,
		RecordedAt: recordedAt.UTC(),
	}
}

// completed reports whether a result closes a cycle worth recording.
func completed(r coordinator.Result) bool {
	return r.CycleID != "" && (r.State == coordinator.StateSucceeded || r.State == coordinator.StateDegraded)
}
