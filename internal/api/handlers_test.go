package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarlov/faretrack/internal/config"
	"github.com/dkarlov/faretrack/internal/series"
	"github.com/dkarlov/faretrack/internal/snapshot"
	"github.com/dkarlov/faretrack/internal/storage/sqlite"
	"github.com/dkarlov/faretrack/pkg/logger"
)

type fakeLister struct {
	records []sqlite.StoredSnapshot
}

func (f *fakeLister) ListAll() ([]sqlite.StoredSnapshot, error) {
	return f.records, nil
}

// fakeRunner mimics the runner's gate: busy while a started run has not yet
// finished. An optional release channel lets a test hold a run open; done is
// closed when the run function returns.
type fakeRunner struct {
	mu      sync.Mutex
	busy    bool
	starts  int
	release chan struct{}
	done    chan struct{}
}

func (f *fakeRunner) TryStart() (func(context.Context) (string, error), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return nil, false
	}
	f.busy = true
	f.starts++

	return func(context.Context) (string, error) {
		if f.release != nil {
			<-f.release
		}
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
		if f.done != nil {
			close(f.done)
		}
		return "2026-01-28T15:30:00Z", nil
	}, true
}

func (f *fakeRunner) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func seededRecords() []sqlite.StoredSnapshot {
	mk := func(key string, basic float64, seats int) sqlite.StoredSnapshot {
		return sqlite.StoredSnapshot{
			Key: key,
			Snapshot: snapshot.Snapshot{
				Departure: snapshot.DirectionRecord{
					Flights: []snapshot.Leg{{
						FlightNumber:     "TS456",
						DepartureAirport: "YYZ",
						ArrivalAirport:   "LIS",
						SeatDetails:      snapshot.SeatInventory{StandardAvailable: seats},
					}},
					Fares: map[string]float64{"Basic (Economy)": basic, "Flex (Economy)": basic + 190},
				},
				Return: snapshot.DirectionRecord{
					Fares: map[string]float64{"Basic (Economy)": basic + 20},
				},
			},
		}
	}
	return []sqlite.StoredSnapshot{
		mk("2026-01-27", 210, 40),
		mk("2026-01-28", 225, 35),
	}
}

func newTestServer(t *testing.T, records []sqlite.StoredSnapshot, runner RunStarter) *httptest.Server {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	agg := series.NewAggregator(&fakeLister{records: records}, log)

	server := httptest.NewServer(NewRouter(agg, runner, cfg, log).Routes())
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(t, nil, nil)

	body := getJSON(t, server.URL+"/api/v1/health", http.StatusOK)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestGetSnapshots(t *testing.T) {
	server := newTestServer(t, seededRecords(), nil)

	body := getJSON(t, server.URL+"/api/v1/snapshots", http.StatusOK)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, []any{"2026-01-27", "2026-01-28"}, body["keys"])
}

func TestGetFareClasses(t *testing.T) {
	server := newTestServer(t, seededRecords(), nil)

	body := getJSON(t, server.URL+"/api/v1/fare-classes", http.StatusOK)
	assert.Equal(t, []any{"Basic (Economy)", "Flex (Economy)"}, body["fareClasses"])
}

func TestGetSeries_DefaultsToFirstClass(t *testing.T) {
	server := newTestServer(t, seededRecords(), nil)

	body := getJSON(t, server.URL+"/api/v1/series", http.StatusOK)
	assert.Equal(t, "Basic (Economy)", body["class"])

	prices, ok := body["prices"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{float64(210), float64(225)}, prices["outbound"])

	deltas, ok := body["deltas"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(15), deltas["outboundPrice"])
	assert.Equal(t, float64(-5), deltas["outboundStandardSeats"])
}

func TestGetSeries_ExplicitClass(t *testing.T) {
	server := newTestServer(t, seededRecords(), nil)

	body := getJSON(t, server.URL+"/api/v1/series?class=Flex+(Economy)", http.StatusOK)
	assert.Equal(t, "Flex (Economy)", body["class"])

	prices := body["prices"].(map[string]any)
	assert.Equal(t, []any{float64(400), float64(415)}, prices["outbound"])
}

func TestGetDeltas(t *testing.T) {
	server := newTestServer(t, seededRecords(), nil)

	body := getJSON(t, server.URL+"/api/v1/deltas", http.StatusOK)
	deltas := body["deltas"].(map[string]any)
	assert.Equal(t, "2026-01-28", deltas["key"])
	assert.Equal(t, float64(15), deltas["outboundPrice"])
	assert.Equal(t, float64(-5), deltas["outboundStandardSeats"])
}

func TestGetFlights(t *testing.T) {
	server := newTestServer(t, seededRecords(), nil)

	body := getJSON(t, server.URL+"/api/v1/flights", http.StatusOK)
	flights, ok := body["flights"].([]any)
	require.True(t, ok)
	require.Len(t, flights, 1)

	flight := flights[0].(map[string]any)
	assert.Equal(t, "TS456", flight["flightNumber"])
	assert.Equal(t, []any{float64(40), float64(35)}, flight["standard"])
}

func TestEmptyStoreIsNotFound(t *testing.T) {
	server := newTestServer(t, nil, nil)

	for _, path := range []string{"/snapshots", "/fare-classes", "/series", "/flights", "/deltas"} {
		body := getJSON(t, server.URL+"/api/v1"+path, http.StatusNotFound)
		assert.Contains(t, body["error"], "no snapshots")
	}
}

func TestTriggerRun(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	server := newTestServer(t, seededRecords(), runner)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, runner.startCount())

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered run never executed")
	}
}

func TestTriggerRun_ConflictWhenActive(t *testing.T) {
	runner := &fakeRunner{busy: true}
	server := newTestServer(t, seededRecords(), runner)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 0, runner.startCount())
}

func TestTriggerRun_RespondsBeforeRunFinishes(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{}), done: make(chan struct{})}
	server := newTestServer(t, seededRecords(), runner)

	type result struct {
		status int
		err    error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
		if err != nil {
			got <- result{err: err}
			return
		}
		resp.Body.Close()
		got <- result{status: resp.StatusCode}
	}()

	// The run is held open on the release channel, so the 202 arriving at all
	// proves the response does not wait for the capture.
	select {
	case res := <-got:
		require.NoError(t, res.err)
		assert.Equal(t, http.StatusAccepted, res.status)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger response waited for the run to finish")
	}

	// The gate is still held: a second trigger conflicts.
	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(runner.release)
	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("run never finished after release")
	}
}

func TestTriggerRun_UnavailableWithoutRunner(t *testing.T) {
	server := newTestServer(t, seededRecords(), nil)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
