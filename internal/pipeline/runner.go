package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/domain"
	"github.com/user/lead-crawler/internal/locale"
	"github.com/user/lead-crawler/internal/search"
	"github.com/user/lead-crawler/internal/storage"
)

// LeadStore persists processed leads.
type LeadStore interface {
	SaveLeads(ctx context.Context, leads []domain.Lead) error
}

// Runner executes search configs end to end: search, enrich, export.
type Runner struct {
	Provider   search.Provider
	Pipeline   *Pipeline
	Store      LeadStore // optional
	ExportPath string
	Logger     *zap.Logger

	// OnSearch is called with the number of leads a search returned, before
	// they are processed.
	OnSearch func(cfg domain.SearchConfig, leads int)
	// OnLead is called after each lead is processed.
	OnLead func(Outcome)
}

// Summary tallies one Runner.Run call.
type Summary struct {
	Searches      int `json:"searches"`
	FailedSearch  int `json:"failed_searches"`
	Leads         int `json:"leads"`
	WithEmail     int `json:"with_email"`
	WithMobile    int `json:"with_mobile"`
	WithWhatsApp  int `json:"with_whatsapp"`
	BrowserErrors int `json:"browser_errors"`
	Exported      int `json:"exported"`
}

// Run processes configs in order. A failing search is logged and skipped;
// an export failure stops the run and is returned.
func (r *Runner) Run(ctx context.Context, configs []domain.SearchConfig) (Summary, error) {
	log := r.logger()
	var sum Summary
	for _, cfg := range configs {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		sum.Searches++
		country := locale.ResolveCountry(cfg.Location)
		slog := log.With(zap.String("query", cfg.Query), zap.String("location", cfg.Location), zap.String("country", country))

		leads, err := r.Provider.Search(ctx, cfg)
		if err != nil {
			sum.FailedSearch++
			slog.Error("search failed", zap.Error(err))
			continue
		}
		if r.OnSearch != nil {
			r.OnSearch(cfg, len(leads))
		}

		outcomes := r.Pipeline.Run(ctx, leads, country, r.OnLead)
		Report(slog, outcomes)
		sum.add(outcomes)

		if len(outcomes) == 0 {
			slog.Info("no results, verify search parameters")
			continue
		}
		n, err := r.export(ctx, outcomes)
		if err != nil {
			return sum, err
		}
		sum.Exported += n
		if n == 0 {
			slog.Info("no new leads to add", zap.String("file", r.ExportPath))
		} else {
			slog.Info("added new leads", zap.String("file", r.ExportPath), zap.Int("added", n))
		}
	}
	return sum, nil
}

func (r *Runner) export(ctx context.Context, outcomes []Outcome) (int, error) {
	records := make([]domain.ExportRecord, len(outcomes))
	leads := make([]domain.Lead, len(outcomes))
	for i, o := range outcomes {
		records[i] = o.Lead.Record()
		leads[i] = o.Lead
	}

	schema, err := storage.DetectSchema(r.ExportPath, domain.SchemaV8, domain.SchemaV7)
	if err != nil {
		return 0, fmt.Errorf("export failed: %w", err)
	}
	n, err := storage.ExportCSV(r.ExportPath, schema, records)
	if err != nil && !errors.Is(err, storage.ErrNoRecords) {
		return 0, fmt.Errorf("export failed: %w", err)
	}
	if r.Store != nil {
		if err := r.Store.SaveLeads(ctx, leads); err != nil {
			// The CSV is the primary output; a store failure is reported but
			// does not fail the run.
			r.logger().Error("failed to save leads", zap.Error(err))
		}
	}
	return n, nil
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (s *Summary) add(outcomes []Outcome) {
	for _, o := range outcomes {
		s.Leads++
		if o.Lead.Email != "" {
			s.WithEmail++
		}
		if o.Lead.Mobile != "" {
			s.WithMobile++
		}
		if o.Lead.WhatsApp != "" {
			s.WithWhatsApp++
		}
		if o.Err != nil {
			s.BrowserErrors++
		}
	}
}

// Report logs one batch of outcomes: a warning per failed lead and a single
// summary line.
func Report(l *zap.Logger, outcomes []Outcome) {
	var pages, pageErrs, cached, failed int
	for _, o := range outcomes {
		pages += o.PagesVisited
		pageErrs += len(o.PageErrors)
		if o.Cached {
			cached++
		}
		if o.Err != nil {
			failed++
			l.Warn("lead crawl failed",
				zap.String("title", o.Lead.Title),
				zap.String("website", o.Lead.Website),
				zap.Error(o.Err))
			continue
		}
		if len(o.PageErrors) > 0 {
			l.Debug("pages skipped",
				zap.String("website", o.Lead.Website),
				zap.Int("skipped", len(o.PageErrors)),
				zap.Error(o.PageErrors[0]))
		}
	}
	l.Info("batch processed",
		zap.Int("leads", len(outcomes)),
		zap.Int("pages", pages),
		zap.Int("page_errors", pageErrs),
		zap.Int("cached", cached),
		zap.Int("failed", failed))
}
