// Package httpapi exposes the published prices and refresh control over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"elecprice/internal/coordinator"
	"elecprice/internal/journal"
	"elecprice/internal/price"
)

const recentCycles = 10

// Server serves the JSON API.
type Server struct {
	server   *http.Server
	coord    *coordinator.Coordinator
	recorder journal.Recorder
	region   string
	now      func() time.Time

	// refreshes started by POST /api/refresh run under baseCtx
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a server listening on addr. region is the default refresh
// region and now reports the market-local time.
func NewServer(addr string, coord *coordinator.Coordinator, rec journal.Recorder, region string, now func() time.Time) *Server {
	if rec == nil {
		rec = journal.NewNoopRecorder()
	}
	if now == nil {
		now = time.Now
	}
	router := mux.NewRouter()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		coord:    coord,
		recorder: rec,
		region:   region,
		now:      now,
		baseCtx:  ctx,
		cancel:   cancel,
	}
	s.setupRoutes(router)
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) setupRoutes(router *mux.Router) {
	router.HandleFunc("/health", s.getHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/prices", s.getPrices).Methods("GET")
	api.HandleFunc("/status", s.getStatus).Methods("GET")
	api.HandleFunc("/refresh", s.postRefresh).Methods("POST")
	api.HandleFunc("/regions", s.getRegions).Methods("GET")
}

type pricesResponse struct {
	Region          string           `json:"region"`
	Provenance      price.Provenance `json:"provenance"`
	ProvenanceLabel string           `json:"provenance_label"`
	Synthetic       bool             `json:"synthetic"`
	Loading         bool             `json:"loading"`
	Message         string           `json:"message,omitempty"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
	Summary         price.Summary    `json:"summary"`
	Prices          price.Series     `json:"prices"`
}

func (s *Server) getPrices(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Store().Snapshot()
	resp := pricesResponse{
		Region:          snap.Region,
		Provenance:      snap.Provenance,
		ProvenanceLabel: snap.ProvenanceLabel(),
		Synthetic:       snap.IsSynthetic,
		Loading:         snap.IsLoading,
		Message:         snap.ErrorMessage,
		Summary:         snap.Series.Summarize(s.now()),
		Prices:          snap.Series,
	}
	if !snap.UpdatedAt.IsZero() {
		resp.UpdatedAt = &snap.UpdatedAt
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	CycleID   string              `json:"cycle_id,omitempty"`
	State     coordinator.State   `json:"state"`
	Region    string              `json:"region,omitempty"`
	Loading   bool                `json:"loading"`
	Synthetic bool                `json:"synthetic"`
	Message   string              `json:"message,omitempty"`
	Attempts  []journal.Attempt   `json:"attempts"`
	Recent    []recentCycleStatus `json:"recent"`
}

type recentCycleStatus struct {
	CycleID    string            `json:"cycle_id"`
	RecordedAt time.Time         `json:"recorded_at"`
	Region     string            `json:"region"`
	State      coordinator.State `json:"state"`
	Provenance string            `json:"provenance"`
	Records    int               `json:"records"`
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Store().Snapshot()
	resp := statusResponse{
		CycleID:   snap.CycleID,
		State:     snap.State,
		Region:    snap.Region,
		Loading:   snap.IsLoading,
		Synthetic: snap.IsSynthetic,
		Message:   snap.ErrorMessage,
		Attempts:  journal.NewEntry(snap).Attempts,
		Recent:    []recentCycleStatus{},
	}

	entries, err := s.recorder.Recent(r.Context(), recentCycles)
	if err != nil {
		slog.Error("read journal", "error", err)
	}
	for _, e := range entries {
		resp.Recent = append(resp.Recent, recentCycleStatus{
			CycleID:    e.CycleID,
			RecordedAt: e.RecordedAt,
			Region:     e.Region,
			State:      e.State,
			Provenance: e.Provenance,
			Records:    e.Records,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) postRefresh(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = s.region
	}
	if err := s.coord.ValidateRegion(region); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.coord.Refresh(s.baseCtx, region)
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"region": region,
	})
}

func (s *Server) getRegions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": s.region,
		"regions": s.coord.Regions(),
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, cancels pending refreshes and waits for them.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	err := s.server.Shutdown(ctx)
	s.cancel()
	s.wg.Wait()
	return err
}

// Wait blocks until every refresh started over HTTP has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}
