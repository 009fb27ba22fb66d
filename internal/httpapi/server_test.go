package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"elecprice/internal/coordinator"
	"elecprice/internal/fetcher"
	"elecprice/internal/journal"
	"elecprice/internal/price"
	"elecprice/internal/testutil"
)

var now = time.Date(2024, time.January, 15, 20, 15, 0, 0, time.UTC)

func newTestServer(t *testing.T, f fetcher.Fetcher, rec journal.Recorder) (*Server, *coordinator.Coordinator) {
	t.Helper()
	coord := coordinator.New(
		[]coordinator.Tier{{Fetcher: f, Provenance: price.ProvenanceAPI, ReportFailure: true}},
		nil, nil,
		coordinator.Options{
			Regions:       []string{"Madrid", "Sevilla"},
			DefaultRegion: "Madrid",
			Now:           func() time.Time { return now },
		},
	)
	s := NewServer("127.0.0.1:0", coord, rec, "Madrid", func() time.Time { return now })
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, coord
}

func do(t *testing.T, s *Server, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	var body map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	}
	return rr, body
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testutil.NewMockFetcher("ree", price.Series{}, nil), nil)

	rr, body := do(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestGetPrices_BeforeRefresh(t *testing.T) {
	s, _ := newTestServer(t, testutil.NewMockFetcher("ree", price.Series{}, nil), nil)

	rr, body := do(t, s, http.MethodGet, "/api/prices")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Estimado", body["provenance_label"])
	require.Equal(t, false, body["synthetic"])
	require.Equal(t, []any{}, body["prices"])
	require.NotContains(t, body, "updated_at")
}

func TestGetPrices_AfterRefresh(t *testing.T) {
	f := testutil.NewMockFetcher("ree", testutil.FlatSeries(now, "0.25"), nil)
	s, coord := newTestServer(t, f, nil)
	coord.Refresh(context.Background(), "Sevilla")

	rr, body := do(t, s, http.MethodGet, "/api/prices")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Sevilla", body["region"])
	require.Equal(t, "api", body["provenance"])
	require.Equal(t, "API", body["provenance_label"])
	require.Len(t, body["prices"], 24)

	summary := body["summary"].(map[string]any)
	require.Equal(t, "0.25", summary["current"])
	require.Equal(t, "0.25", summary["average"])

	first := body["prices"].([]any)[0].(map[string]any)
	require.Equal(t, "0.25", first["price"])
	require.Equal(t, "2024-01-15T00:00:00Z", first["hour"])
}

func TestGetStatus_Degraded(t *testing.T) {
	rec, err := journal.NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer rec.Close()

	f := testutil.NewMockFetcher("ree", price.Series{}, fetcher.NewServerError(503))
	s, coord := newTestServer(t, f, rec)
	result := coord.Refresh(context.Background(), "")
	require.NoError(t, rec.Record(context.Background(), result))

	rr, body := do(t, s, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, string(coordinator.StateDegraded), body["state"])
	require.Equal(t, true, body["synthetic"])
	require.Equal(t, "Error al cargar los datos: server returned an error (HTTP 503)\n\nSe muestran precios ESTIMADOS que NO son reales.", body["message"])

	attempts := body["attempts"].([]any)
	require.Len(t, attempts, 1)
	require.Equal(t, "ree", attempts[0].(map[string]any)["source"])

	recent := body["recent"].([]any)
	require.Len(t, recent, 1)
	require.Equal(t, result.CycleID, recent[0].(map[string]any)["cycle_id"])
}

func TestPostRefresh(t *testing.T) {
	f := testutil.NewMockFetcher("ree", testutil.FlatSeries(now, "0.3"), nil)
	s, coord := newTestServer(t, f, nil)

	rr, body := do(t, s, http.MethodPost, "/api/refresh?region=Sevilla")
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, "Sevilla", body["region"])

	s.Wait()
	snap := coord.Store().Snapshot()
	require.Equal(t, coordinator.StateSucceeded, snap.State)
	require.Equal(t, "Sevilla", snap.Region)
	require.Equal(t, 1, f.Calls())
}

func TestPostRefresh_UnknownRegion(t *testing.T) {
	f := testutil.NewMockFetcher("ree", testutil.FlatSeries(now, "0.3"), nil)
	s, _ := newTestServer(t, f, nil)

	rr, body := do(t, s, http.MethodPost, "/api/refresh?region=Atlantis")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, body["error"], "unknown region")
	require.Zero(t, f.Calls())
}

func TestRefresh_WrongMethod(t *testing.T) {
	s, _ := newTestServer(t, testutil.NewMockFetcher("ree", price.Series{}, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestGetRegions(t *testing.T) {
	s, _ := newTestServer(t, testutil.NewMockFetcher("ree", price.Series{}, nil), nil)

	rr, body := do(t, s, http.MethodGet, "/api/regions")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Madrid", body["default"])
	require.Equal(t, []any{"Madrid", "Sevilla"}, body["regions"])
}
