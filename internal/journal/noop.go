package journal

import (
	"context"

	"elecprice/internal/coordinator"
)

// NoopRecorder is used when no journal path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(_ context.Context, _ coordinator.Result) error { return nil }
func (n *NoopRecorder) Recent(_ context.Context, _ int) ([]Entry, error)     { return nil, nil }
func (n *NoopRecorder) Close() error                                         { return nil }
