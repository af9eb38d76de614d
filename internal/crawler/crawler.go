package crawler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/domain"
)

var (
	// ErrNavigation marks a page that could not be loaded.
	ErrNavigation = errors.New("navigation failed")
	// ErrExtraction marks a page whose rendered HTML could not be read or parsed.
	ErrExtraction = errors.New("extraction failed")
)

// Session is a browser tab the crawler drives. Implementations are not
// required to be safe for concurrent use.
type Session interface {
	Navigate(ctx context.Context, url string) error
	ScrollToBottom(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
}

// PageError records a page that was skipped.
type PageError struct {
	URL string
	Err error
}

func (e PageError) Error() string { return fmt.Sprintf("%s: %v", e.URL, e.Err) }
func (e PageError) Unwrap() error { return e.Err }

// Result is the outcome of crawling one site.
type Result struct {
	domain.ContactResult
	PagesVisited int
	PageErrors   []PageError
	// Truncated is set when the crawl stopped on the page limit or on
	// cancellation with pages still queued.
	Truncated bool
}

// Options tune a Crawler. The zero value crawls every reachable page with no
// politeness delay.
type Options struct {
	// MaxPages caps the pages loaded per site. Zero means no cap.
	MaxPages int
	Limiter  *HostLimiter
}

// Crawler walks a single site breadth first, contact pages first, until an
// email, a mobile number and a WhatsApp number have all been found.
type Crawler struct {
	opts   Options
	logger *zap.Logger
}

func New(opts Options, l *zap.Logger) *Crawler {
	if l == nil {
		l = zap.NewNop()
	}
	return &Crawler{opts: opts, logger: l}
}

// Crawl starts at seed and returns whatever contacts it found. region is the
// default phone region for numbers written without a country code. Page
// failures are recorded in the result and never abort the crawl.
func (c *Crawler) Crawl(ctx context.Context, s Session, seed, region string) *Result {
	res := &Result{}
	f := newFrontier(seed)

	for !res.Complete() {
		if ctx.Err() != nil {
			res.Truncated = f.len() > 0
			break
		}
		if c.opts.MaxPages > 0 && res.PagesVisited >= c.opts.MaxPages {
			res.Truncated = f.len() > 0
			break
		}
		next, ok := f.next()
		if !ok {
			break
		}
		res.PagesVisited++

		links, err := c.visit(ctx, s, next, region, res)
		if err != nil {
			c.logger.Debug("skipping page", zap.String("url", next), zap.Error(err))
			res.PageErrors = append(res.PageErrors, PageError{URL: next, Err: err})
			continue
		}
		if res.Complete() {
			break
		}

		for _, l := range links {
			f.push(l.url, l.priority)
		}
	}
	return res
}

// visit loads one page and fills the contacts res is still missing. A panic
// while handling the page is returned as an error so contacts found on
// earlier pages are kept.
func (c *Crawler) visit(ctx context.Context, s Session, pageURL, region string, res *Result) (links []link, err error) {
	defer func() {
		if r := recover(); r != nil {
			links, err = nil, fmt.Errorf("%w: panic: %v", ErrExtraction, r)
		}
	}()

	p, err := c.load(ctx, s, pageURL)
	if err != nil {
		return nil, err
	}
	if res.Email == "" {
		res.Email = p.findEmail()
	}
	if res.Mobile == "" {
		res.Mobile = p.findMobile(region)
	}
	if res.WhatsApp == "" {
		res.WhatsApp = p.findWhatsApp(region)
	}
	return p.links(), nil
}

func (c *Crawler) load(ctx context.Context, s Session, pageURL string) (*page, error) {
	if c.opts.Limiter != nil {
		if err := c.opts.Limiter.WaitURL(ctx, pageURL); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
		}
	}
	if err := s.Navigate(ctx, pageURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	if err := s.ScrollToBottom(ctx); err != nil {
		c.logger.Debug("scroll failed", zap.String("url", pageURL), zap.Error(err))
	}
	body, err := s.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	p, err := parsePage(pageURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return p, nil
}
