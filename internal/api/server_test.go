package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/user/lead-crawler/internal/domain"
	"github.com/user/lead-crawler/internal/monitoring"
	"github.com/user/lead-crawler/internal/pipeline"
	"github.com/user/lead-crawler/internal/storage"
)

type blockingRunner struct {
	release chan struct{}
	mu      sync.Mutex
	got     []domain.SearchConfig
}

func (b *blockingRunner) Run(ctx context.Context, configs []domain.SearchConfig) (pipeline.Summary, error) {
	b.mu.Lock()
	b.got = configs
	b.mu.Unlock()
	select {
	case <-b.release:
	case <-ctx.Done():
		return pipeline.Summary{}, ctx.Err()
	}
	return pipeline.Summary{Searches: len(configs), Leads: 7, Exported: 5}, nil
}

type staticFinder map[string][]domain.Lead

func (f staticFinder) FindByWebsite(_ context.Context, website string) ([]domain.Lead, error) {
	leads, ok := f[website]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return leads, nil
}

type pingFunc func(context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearch_RunsInBackground(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	s := NewServer(Options{ZoomMin: 10, ZoomMax: 22}, runner, nil, nil, nil, nil, nil)
	h := s.Handler()

	body := `{"configs":[{"query":" plumbers ","location":"London, UK","zoom":30},{"query":"bakers","location":"Paris, France"}]}`
	rec := do(t, h, http.MethodPost, "/api/search", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body)
	}
	var accepted map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatal(err)
	}
	if accepted["job_id"] == "" {
		t.Error("missing job_id")
	}

	if rec := do(t, h, http.MethodPost, "/api/search", body); rec.Code != http.StatusConflict {
		t.Errorf("second search: got status %d, want %d", rec.Code, http.StatusConflict)
	}

	close(runner.release)
	deadline := time.Now().Add(5 * time.Second)
	for {
		if job, _ := s.currentJob(); !job.Running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("search job did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	runner.mu.Lock()
	got := runner.got
	runner.mu.Unlock()
	if len(got) != 2 || got[0].Query != "plumbers" || got[0].Zoom != 22 || got[1].Zoom != 15 {
		t.Errorf("runner got configs %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/api/search", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var job jobState
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatal(err)
	}
	if job.Running || job.Summary == nil || job.Summary.Exported != 5 || job.ID != accepted["job_id"] {
		t.Errorf("got job %+v", job)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := NewServer(Options{ZoomMin: 10, ZoomMax: 22}, &blockingRunner{release: make(chan struct{})}, nil, nil, nil, nil, nil)
	h := s.Handler()

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"no configs", `{"configs":[]}`},
		{"missing location", `{"configs":[{"query":"plumbers"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/api/search", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}

	if rec := do(t, h, http.MethodGet, "/api/search", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status before any search: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestShutdown_CancelsRunningSearch(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	s := NewServer(Options{ZoomMin: 10, ZoomMax: 22}, runner, nil, nil, nil, nil, nil)
	if rec := do(t, s.Handler(), http.MethodPost, "/api/search", `{"configs":[{"query":"a","location":"b"}]}`); rec.Code != http.StatusAccepted {
		t.Fatalf("got status %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	job, _ := s.currentJob()
	if job.Running || job.Error == "" {
		t.Errorf("got job %+v, want a cancelled job", job)
	}
}

func TestLeads(t *testing.T) {
	finder := staticFinder{"https://acme.com": {{Title: "Acme", Website: "https://acme.com", Email: "info@acme.com"}}}
	h := NewServer(Options{}, nil, finder, nil, nil, nil, nil).Handler()

	tests := []struct {
		target string
		want   int
	}{
		{"/api/leads?website=www.acme.com/", http.StatusOK},
		{"/api/leads?website=unknown.com", http.StatusNotFound},
		{"/api/leads?website=https://facebook.com/acme", http.StatusBadRequest},
		{"/api/leads", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.target, "")
		if rec.Code != tt.want {
			t.Errorf("%s: got status %d, want %d", tt.target, rec.Code, tt.want)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/leads?website=acme.com", "")
	var leads []domain.Lead
	if err := json.NewDecoder(rec.Body).Decode(&leads); err != nil {
		t.Fatal(err)
	}
	if len(leads) != 1 || leads[0].Email != "info@acme.com" {
		t.Errorf("got %+v", leads)
	}

	h = NewServer(Options{}, nil, nil, nil, nil, nil, nil).Handler()
	if rec := do(t, h, http.MethodGet, "/api/leads?website=acme.com", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("without store: got status %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHealthCheck(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	h := NewServer(Options{}, nil, nil, map[string]Pinger{"postgres": ok, "redis": nil}, nil, nil, nil).Handler()
	rec := do(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	var status map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status["postgres"] != "healthy" || status["redis"] != "disabled" {
		t.Errorf("got %v", status)
	}

	h = NewServer(Options{}, nil, nil, map[string]Pinger{"postgres": ok, "redis": down}, nil, nil, nil).Handler()
	if rec := do(t, h, http.MethodGet, "/api/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := monitoring.NewMetrics(reg)
	h := NewServer(Options{}, nil, nil, nil, m, reg, nil).Handler()

	do(t, h, http.MethodGet, "/api/health", "")
	do(t, h, http.MethodGet, "/api/health", "")
	do(t, h, http.MethodGet, "/nope", "")

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/health", "200")); got != 2 {
		t.Errorf("health requests: got %v, want 2", got)
	}

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "leadgen_http_requests_total") {
		t.Error("metrics output missing leadgen_http_requests_total")
	}
}
