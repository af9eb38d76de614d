package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/domain"
	"github.com/user/lead-crawler/internal/monitoring"
	"github.com/user/lead-crawler/internal/pipeline"
)

// SearchRunner runs search configs end to end.
type SearchRunner interface {
	Run(ctx context.Context, configs []domain.SearchConfig) (pipeline.Summary, error)
}

// LeadFinder looks up stored leads.
type LeadFinder interface {
	FindByWebsite(ctx context.Context, website string) ([]domain.Lead, error)
}

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Port    string
	ZoomMin int
	ZoomMax int
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	opts       Options
	router     http.Handler
	httpServer *http.Server
	runner     SearchRunner
	leads      LeadFinder
	checks     map[string]Pinger
	metrics    *monitoring.Metrics
	gatherer   prometheus.Gatherer
	logger     *zap.Logger

	// jobs run on baseCtx so they outlive the request that started them.
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu  sync.Mutex
	job *jobState
}

type jobState struct {
	ID         string            `json:"id"`
	Running    bool              `json:"running"`
	Configs    int               `json:"configs"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Summary    *pipeline.Summary `json:"summary,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// NewServer wires the API. leads may be nil when no lead store is
// configured; nil entries in checks are reported as disabled.
func NewServer(opts Options, runner SearchRunner, leads LeadFinder, checks map[string]Pinger, m *monitoring.Metrics, g prometheus.Gatherer, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:     opts,
		runner:   runner,
		leads:    leads,
		checks:   checks,
		metrics:  m,
		gatherer: g,
		logger:   l,
		baseCtx:  ctx,
		cancel:   cancel,
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", opts.Port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, cancels a running search and waits for
// it to return.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// startJob runs configs in the background. It returns false if a search is
// already running.
func (s *Server) startJob(id string, configs []domain.SearchConfig) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job != nil && s.job.Running {
		return false
	}
	s.job = &jobState{ID: id, Running: true, Configs: len(configs), StartedAt: time.Now()}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sum, err := s.runner.Run(s.baseCtx, configs)

		s.mu.Lock()
		defer s.mu.Unlock()
		now := time.Now()
		s.job.Running = false
		s.job.FinishedAt = &now
		s.job.Summary = &sum
		if err != nil {
			s.job.Error = err.Error()
			s.logger.Error("search job failed", zap.String("job", id), zap.Error(err))
			return
		}
		s.logger.Info("search job finished", zap.String("job", id),
			zap.Int("leads", sum.Leads), zap.Int("exported", sum.Exported))
	}()
	return true
}

func (s *Server) currentJob() (jobState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return jobState{}, false
	}
	return *s.job, true
}
