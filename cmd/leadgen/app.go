package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/browser"
	"github.com/user/lead-crawler/internal/config"
	"github.com/user/lead-crawler/internal/crawler"
	"github.com/user/lead-crawler/internal/domain"
	"github.com/user/lead-crawler/internal/logger"
	"github.com/user/lead-crawler/internal/monitoring"
	"github.com/user/lead-crawler/internal/pipeline"
	"github.com/user/lead-crawler/internal/proxy"
	"github.com/user/lead-crawler/internal/search"
	"github.com/user/lead-crawler/internal/storage"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *monitoring.Metrics
	launcher *browser.Launcher
	redis    *storage.RedisStore    // nil when REDIS_ADDR is empty or unreachable
	pg       *storage.PostgresStore // nil when POSTGRES_URL is empty
}

func newApp(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pm := proxy.NewManager(cfg.ProxyList(), cfg.UserAgentList(), time.Now().UnixNano())
	a := &app{
		cfg:      cfg,
		logger:   l,
		registry: reg,
		metrics:  monitoring.NewMetrics(reg),
		launcher: browser.NewLauncher(browser.Options{
			Headless:        cfg.Headless,
			PageLoadTimeout: cfg.PageTimeout(),
			Scroll: browser.ScrollOptions{
				Attempts:   cfg.ScrollAttempts,
				WaitBefore: cfg.ScrollWaitBefore(),
				WaitAfter:  cfg.ScrollWaitAfter(),
			},
		}, pm, l),
	}

	if cfg.RedisAddr != "" {
		rs := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rs.Ping(pingCtx)
		cancel()
		if err != nil {
			// The cache only saves work; run without it.
			l.Warn("redis unavailable, crawl cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rs.Close()
		} else {
			a.redis = rs
		}
	}

	if cfg.PostgresURL != "" {
		ps, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			a.close()
			return nil, err
		}
		if err := ps.Ping(ctx); err != nil {
			ps.Close()
			a.close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := ps.Migrate(ctx); err != nil {
			ps.Close()
			a.close()
			return nil, fmt.Errorf("migrate leads table: %w", err)
		}
		a.pg = ps
	}
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) launchBrowser(ctx context.Context) (pipeline.Browser, error) {
	s, err := a.launcher.NewSession(ctx)
	if err != nil {
		a.metrics.IncErrorsTotal("browser_launch")
		return nil, err
	}
	return s, nil
}

func (a *app) openBrowser(ctx context.Context) (search.Browser, error) {
	s, err := a.launcher.NewSession(ctx)
	if err != nil {
		a.metrics.IncErrorsTotal("browser_launch")
		return nil, err
	}
	return s, nil
}

func (a *app) pipeline() *pipeline.Pipeline {
	opts := crawler.Options{MaxPages: a.cfg.CrawlMaxPages}
	if a.cfg.CrawlRatePerSec > 0 {
		opts.Limiter = crawler.NewHostLimiter(a.cfg.CrawlRatePerSec, 1)
	}
	var cache pipeline.CrawlCache
	if a.redis != nil {
		cache = a.redis
	}
	return pipeline.New(crawler.New(opts, a.logger), a.launchBrowser, cache, a.metrics, a.logger,
		pipeline.Options{Workers: a.cfg.MaxBrowsers, CacheTTL: a.cfg.CrawlCacheTTL()})
}

// runner builds the search runner. With progress set, a bar is drawn per
// search on stderr.
func (a *app) runner(provider search.Provider, progress bool) *pipeline.Runner {
	r := &pipeline.Runner{
		Provider:   provider,
		Pipeline:   a.pipeline(),
		ExportPath: a.exportPath(),
		Logger:     a.logger,
	}
	if a.pg != nil {
		r.Store = a.pg
	}
	if progress {
		var bar *progressbar.ProgressBar
		r.OnSearch = func(cfg domain.SearchConfig, leads int) {
			bar = progressbar.Default(int64(leads), fmt.Sprintf("%s in %s", cfg.Query, cfg.Location))
		}
		r.OnLead = func(pipeline.Outcome) {
			_ = bar.Add(1)
		}
	}
	return r
}

func (a *app) exportPath() string {
	return filepath.Join(a.cfg.OutputDir, a.cfg.OutputFilename)
}

func (a *app) mapsProvider() *search.MapsProvider {
	return search.NewMapsProvider(a.openBrowser, a.cfg.MapsScrollRounds, a.logger)
}
