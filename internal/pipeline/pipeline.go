package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/contact"
	"github.com/user/lead-crawler/internal/crawler"
	"github.com/user/lead-crawler/internal/domain"
	"github.com/user/lead-crawler/internal/monitoring"
)

// fieldAliases maps each standardized field to the raw keys it may come
// from, in order of preference.
var fieldAliases = map[string][]string{
	"Title":   {"title", "Title"},
	"Address": {"address", "Address"},
	"Phone":   {"phone", "PhoneNumber"},
	"Website": {"website", "WebsiteURL"},
}

// Standardize picks the four fields the pipeline needs out of a raw lead.
func Standardize(raw domain.RawLead) domain.StandardizedLead {
	pick := func(field string) string {
		for _, a := range fieldAliases[field] {
			if v, ok := raw[a]; ok {
				return v
			}
		}
		return ""
	}
	return domain.StandardizedLead{
		Title:   pick("Title"),
		Address: pick("Address"),
		Phone:   pick("Phone"),
		Website: pick("Website"),
	}
}

// Browser is a crawlable browser session that must be closed after use.
type Browser interface {
	crawler.Session
	Close() error
}

// LaunchFunc starts a fresh browser for one lead.
type LaunchFunc func(ctx context.Context) (Browser, error)

// CrawlCache stores crawl results per normalized website and phone region.
type CrawlCache interface {
	GetCrawl(ctx context.Context, website, region string) (domain.ContactResult, bool, error)
	PutCrawl(ctx context.Context, website, region string, res domain.ContactResult, ttl time.Duration) error
}

// Outcome is the result of processing one lead. Err is set when the browser
// could not be used; the lead still carries whatever was found.
type Outcome struct {
	Lead         domain.Lead
	PagesVisited int
	PageErrors   []crawler.PageError
	Cached       bool
	Duration     time.Duration
	Err          error
}

type Options struct {
	Workers  int
	CacheTTL time.Duration
}

// Pipeline enriches raw leads with normalized fields and crawled contacts.
type Pipeline struct {
	crawler *crawler.Crawler
	launch  LaunchFunc
	cache   CrawlCache
	metrics *monitoring.Metrics
	logger  *zap.Logger
	opts    Options
}

// New builds a pipeline. cache and m may be nil.
func New(c *crawler.Crawler, launch LaunchFunc, cache CrawlCache, m *monitoring.Metrics, l *zap.Logger, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Pipeline{crawler: c, launch: launch, cache: cache, metrics: m, logger: l, opts: opts}
}

type task struct {
	index int
	raw   domain.RawLead
}

// Run processes leads on a fixed pool of workers, each owning at most one
// browser at a time. country is the ISO code used for phone parsing and the
// Country column. onDone, if not nil, is called from the workers after each
// lead. Leads not started before ctx is cancelled are left out of the
// result; the order of the input is otherwise kept.
func (p *Pipeline) Run(ctx context.Context, leads []domain.RawLead, country string, onDone func(Outcome)) []Outcome {
	taskQueue := make(chan task)
	results := make([]*Outcome, len(leads))
	var wg sync.WaitGroup

	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskQueue {
				out := p.process(ctx, t.raw, country)
				results[t.index] = &out
				if onDone != nil {
					onDone(out)
				}
			}
		}()
	}

dispatch:
	for i, raw := range leads {
		select {
		case taskQueue <- task{index: i, raw: raw}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(taskQueue)
	wg.Wait()

	out := make([]Outcome, 0, len(leads))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (p *Pipeline) process(ctx context.Context, raw domain.RawLead, country string) (out Outcome) {
	start := time.Now()
	std := Standardize(raw)
	phone, _ := contact.NormalizePhone(std.Phone, country)
	out.Lead = domain.Lead{
		Title:   std.Title,
		Address: std.Address,
		Phone:   phone,
		Country: country,
		Website: contact.NormalizeURL(std.Website),
	}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("crawl panicked: %v", r)
		}
		out.Duration = time.Since(start)
		p.record(out)
	}()

	if out.Lead.Website == "" {
		return out
	}

	if found, ok := p.cached(ctx, out.Lead.Website, country); ok {
		out.setContacts(found)
		out.Cached = true
		return out
	}

	b, err := p.launch(ctx)
	if err != nil {
		out.Err = err
		return out
	}
	defer b.Close()

	res := p.crawler.Crawl(ctx, b, out.Lead.Website, country)
	out.setContacts(res.ContactResult)
	out.PagesVisited = res.PagesVisited
	out.PageErrors = res.PageErrors

	if p.cache != nil && !res.Truncated && len(res.PageErrors) < res.PagesVisited {
		if err := p.cache.PutCrawl(ctx, out.Lead.Website, country, res.ContactResult, p.opts.CacheTTL); err != nil {
			p.logger.Warn("crawl cache write failed", zap.String("website", out.Lead.Website), zap.Error(err))
		}
	}
	return out
}

func (p *Pipeline) cached(ctx context.Context, website, region string) (domain.ContactResult, bool) {
	if p.cache == nil {
		return domain.ContactResult{}, false
	}
	res, ok, err := p.cache.GetCrawl(ctx, website, region)
	if err != nil {
		p.logger.Warn("crawl cache read failed", zap.String("website", website), zap.Error(err))
		return domain.ContactResult{}, false
	}
	if p.metrics != nil {
		if ok {
			p.metrics.IncCacheLookup("hit")
		} else {
			p.metrics.IncCacheLookup("miss")
		}
	}
	return res, ok
}

func (o *Outcome) setContacts(c domain.ContactResult) {
	o.Lead.Email = c.Email
	o.Lead.Mobile = c.Mobile
	o.Lead.WhatsApp = c.WhatsApp
}

func (p *Pipeline) record(o Outcome) {
	if p.metrics == nil {
		return
	}
	switch {
	case o.Err != nil:
		p.metrics.IncLeadsProcessed("browser_error")
		p.metrics.IncErrorsTotal("browser")
	case o.Lead.Website == "":
		p.metrics.IncLeadsProcessed("no_website")
	case o.Cached:
		p.metrics.IncLeadsProcessed("cached")
	default:
		p.metrics.IncLeadsProcessed("crawled")
		p.metrics.ObserveCrawl(o.Duration.Seconds())
	}
	p.metrics.AddPagesCrawled(o.PagesVisited)
	for range o.PageErrors {
		p.metrics.IncErrorsTotal("page_failed")
	}
	if o.Lead.Email != "" {
		p.metrics.IncContactFound("email")
	}
	if o.Lead.Mobile != "" {
		p.metrics.IncContactFound("mobile")
	}
	if o.Lead.WhatsApp != "" {
		p.metrics.IncContactFound("whatsapp")
	}
}
