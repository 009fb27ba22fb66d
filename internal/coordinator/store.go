package coordinator

import (
	"slices"
	"sync"
	"time"

	"elecprice/internal/fetcher"
	"elecprice/internal/price"
)

// State is the lifecycle position of the published result.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateSucceeded State = "succeeded"
	StateDegraded  State = "degraded"
)

// Result is the observable outcome of the latest acquisition cycle.
type Result struct {
	CycleID      string
	Region       string
	State        State
	Series       price.Series
	Provenance   price.Provenance
	IsLoading    bool
	IsSynthetic  bool
	ErrorMessage string
	UpdatedAt    time.Time
	Attempts     []fetcher.Result
}

// ProvenanceLabel is the user-facing name of the data origin.
func (r Result) ProvenanceLabel() string {
	return r.Provenance.Label()
}

// Store holds the published result. All writes go through the coordinator;
// readers get consistent snapshots.
type Store struct {
	mu       sync.RWMutex
	current  Result
	inflight int

	subscribers map[int]chan Result
	nextID      int
}

// NewStore creates a store in the idle state with no prices.
func NewStore() *Store {
	return &Store{
		current: Result{
			State:      StateIdle,
			Provenance: price.ProvenanceSynthetic,
		},
		subscribers: make(map[int]chan Result),
	}
}

// Snapshot returns a copy of the published result.
func (s *Store) Snapshot() Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Result {
	r := s.current
	r.Attempts = slices.Clone(r.Attempts)
	return r
}

// CurrentSeries returns the latest published prices.
func (s *Store) CurrentSeries() price.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Series
}

// IsLoading reports whether any refresh is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsLoading
}

// LastError returns the message attached to the latest result, if any.
func (s *Store) LastError() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ErrorMessage, s.current.ErrorMessage != ""
}

// ProvenanceLabel returns the label of the latest result's data origin.
func (s *Store) ProvenanceLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ProvenanceLabel()
}

// IsSynthetic reports whether the latest prices are estimates.
func (s *Store) IsSynthetic() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsSynthetic
}

// Subscribe returns a channel that always holds the most recent result.
// Slow readers skip intermediate values. The current result is delivered
// immediately. Call the returned function to stop receiving.
func (s *Store) Subscribe() (<-chan Result, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Result, 1)
	ch <- s.snapshotLocked()
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// begin marks a refresh as started. The previous prices stay visible.
func (s *Store) begin(region, cycleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight++
	s.current.State = StateLoading
	s.current.IsLoading = true
	s.current.ErrorMessage = ""
	s.current.Region = region
	s.current.CycleID = cycleID
	s.publishLocked()
}

// finish replaces the published result with r. The last refresh to finish wins.
func (s *Store) finish(r Result) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight > 0 {
		s.inflight--
	}
	r.IsLoading = s.inflight > 0
	s.current = r
	s.publishLocked()
	return s.snapshotLocked()
}

func (s *Store) publishLocked() {
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- s.snapshotLocked()
	}
}
