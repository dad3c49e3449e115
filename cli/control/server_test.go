package control_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedsweep/cli/control"
	"feedsweep/domain"
	"feedsweep/internal/oplog"
)

type fakeSweeper struct {
	interval time.Duration
	workers  int
	swept    int
}

func (f *fakeSweeper) Start(context.Context) error { return nil }
func (f *fakeSweeper) Stop() error                 { return nil }

func (f *fakeSweeper) SweepNow(context.Context) domain.SweepResult {
	f.swept++
	return domain.SweepResult{Feeds: 2, Fetched: 1, Outcomes: []domain.FeedOutcome{
		{FeedName: "blog", Success: true, NewCount: 3, Total: 5},
	}}
}

func (f *fakeSweeper) SetInterval(d time.Duration)    { f.interval = d }
func (f *fakeSweeper) Resize(n int) error             { f.workers = n; return nil }
func (f *fakeSweeper) CurrentInterval() time.Duration { return f.interval }
func (f *fakeSweeper) CurrentWorkers() int            { return f.workers }

func setup() (*control.Server, *fakeSweeper, *oplog.Buffer) {
	sw := &fakeSweeper{interval: time.Minute, workers: 3}
	logs := oplog.New(10)
	return control.NewServer(sw, logs), sw, logs
}

func TestSweepEndpoint(t *testing.T) {
	srv, sw, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/sweep", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sw.swept != 1 {
		t.Fatalf("expected one sweep, got %d", sw.swept)
	}

	var res domain.SweepResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Fetched != 1 || len(res.Outcomes) != 1 || res.Outcomes[0].NewCount != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestLogsEndpoints(t *testing.T) {
	srv, _, logs := setup()
	logs.Append("request", "older", nil)
	logs.Append("request", "newer", nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []oplog.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Action != "newer" {
		t.Fatalf("expected newest-first entries, got %+v", entries)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logs/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", rec.Code)
	}
	if logs.Len() != 0 {
		t.Errorf("expected empty log after clear, got %d", logs.Len())
	}
}

func TestSetIntervalEndpoint(t *testing.T) {
	srv, sw, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/set-interval", strings.NewReader(`{"duration":"5m"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sw.interval != 5*time.Minute {
		t.Errorf("interval not applied: %v", sw.interval)
	}
}

func TestSetWorkersValidation(t *testing.T) {
	srv, sw, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/set-workers", strings.NewReader(`{"workers":0}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if sw.workers != 3 {
		t.Errorf("workers must be unchanged, got %d", sw.workers)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	srv, _, _ := setup()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
