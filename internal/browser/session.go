package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/proxy"
)

// ErrLaunch is returned when Chrome cannot be started.
var ErrLaunch = errors.New("browser launch failed")

// ScrollOptions controls how lazy-loaded content is triggered after a page
// load.
type ScrollOptions struct {
	Attempts   int
	WaitBefore time.Duration
	WaitAfter  time.Duration
}

type Options struct {
	Headless        bool
	PageLoadTimeout time.Duration
	Scroll          ScrollOptions
}

// Launcher starts one Chrome process per session, each with the next proxy
// and a random user agent from the manager.
type Launcher struct {
	opts    Options
	proxies *proxy.Manager
	logger  *zap.Logger
}

func NewLauncher(opts Options, pm *proxy.Manager, l *zap.Logger) *Launcher {
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 180 * time.Second
	}
	if pm == nil {
		pm = proxy.NewManager(nil, nil, time.Now().UnixNano())
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Launcher{opts: opts, proxies: pm, logger: l}
}

// Session is a single browser tab. Close must be called to stop Chrome.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
}

// NewSession launches Chrome and opens a blank tab.
func (l *Launcher) NewSession(ctx context.Context) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1366, 900),
	)
	ua := l.proxies.GetUserAgent()
	if ua != "" {
		opts = append(opts, chromedp.UserAgent(ua))
	}
	if p := l.proxies.GetProxy(); p != "" {
		opts = append(opts, chromedp.ProxyServer(p))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	s := &Session{
		ctx:  tabCtx,
		opts: l.opts,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}

	// The first Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		s.cancel()
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if ua != "" {
		if err := chromedp.Run(tabCtx, emulation.SetUserAgentOverride(ua)); err != nil {
			l.logger.Debug("user agent override failed", zap.Error(err))
		}
	}
	return s, nil
}

// Close stops the browser. It is safe to call more than once.
func (s *Session) Close() error {
	s.cancel()
	return nil
}

// Run executes actions in the tab, bounded by the page load timeout and by
// ctx.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.opts.PageLoadTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the body to render.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// ScrollToBottom scrolls until the document height stops growing or the
// attempt cap is reached.
func (s *Session) ScrollToBottom(ctx context.Context) error {
	var last int64
	if err := s.Run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &last)); err != nil {
		return err
	}
	for i := 0; i < s.opts.Scroll.Attempts; i++ {
		if err := sleep(ctx, s.opts.Scroll.WaitBefore); err != nil {
			return err
		}
		if err := s.Run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil)); err != nil {
			return err
		}
		if err := sleep(ctx, s.opts.Scroll.WaitAfter); err != nil {
			return err
		}
		var height int64
		if err := s.Run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height)); err != nil {
			return err
		}
		if height == last {
			break
		}
		last = height
	}
	return nil
}

// HTML returns the outer HTML of the rendered document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var body string
	if err := s.Run(ctx, chromedp.OuterHTML("html", &body, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
