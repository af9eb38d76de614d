package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/domain"
)

const mapsSearchBase = "https://www.google.com/maps/search/"

const consentScript = `(function () {
  const selectors = [
    'button[aria-label="Accept all"]',
    'button[aria-label="I agree"]',
    'button[aria-label="Alles akzeptieren"]'
  ];
  for (const sel of selectors) {
    const btn = document.querySelector(sel);
    if (btn) { btn.click(); return true; }
  }
  return false;
})();`

const feedScrollScript = `(function () {
  const feed = document.querySelector('div[role="feed"]');
  if (feed) { feed.scrollBy(0, feed.scrollHeight); }
})();`

// Browser is the part of a browser session the maps provider needs.
type Browser interface {
	Run(ctx context.Context, actions ...chromedp.Action) error
	Close() error
}

// OpenFunc starts a new browser for one search.
type OpenFunc func(ctx context.Context) (Browser, error)

// MapsProvider scrapes the Google Maps results feed for a query.
type MapsProvider struct {
	open         OpenFunc
	scrollRounds int
	logger       *zap.Logger
}

func NewMapsProvider(open OpenFunc, scrollRounds int, l *zap.Logger) *MapsProvider {
	if l == nil {
		l = zap.NewNop()
	}
	return &MapsProvider{open: open, scrollRounds: scrollRounds, logger: l}
}

func (p *MapsProvider) Search(ctx context.Context, cfg domain.SearchConfig) ([]domain.RawLead, error) {
	b, err := p.open(ctx)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	target := SearchURL(cfg)
	if err := b.Run(ctx,
		chromedp.Navigate(target),
		chromedp.Evaluate(consentScript, nil),
		chromedp.WaitVisible(`div[role="feed"]`, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("open maps results %s: %w", target, err)
	}

	for i := 0; i < p.scrollRounds; i++ {
		if err := b.Run(ctx, chromedp.Evaluate(feedScrollScript, nil), chromedp.Sleep(1500*time.Millisecond)); err != nil {
			p.logger.Debug("feed scroll stopped", zap.Int("round", i), zap.Error(err))
			break
		}
	}

	var body string
	if err := b.Run(ctx, chromedp.OuterHTML(`div[role="feed"]`, &body, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read maps results: %w", err)
	}
	leads, err := ParseResults(body)
	if err != nil {
		return nil, err
	}
	p.logger.Info("maps search finished",
		zap.String("query", cfg.Query),
		zap.String("location", cfg.Location),
		zap.Int("results", len(leads)))
	return leads, nil
}

// SearchURL builds the maps search URL for cfg.
func SearchURL(cfg domain.SearchConfig) string {
	q := strings.TrimSpace(cfg.Query + " " + cfg.Location)
	base := mapsSearchBase + url.PathEscape(q)
	if cfg.Lat == 0 && cfg.Lng == 0 {
		return base
	}
	return fmt.Sprintf("%s/@%f,%f,%dz", base, cfg.Lat, cfg.Lng, cfg.Zoom)
}

// ParseResults extracts one raw lead per result card from the feed HTML.
// Cards without a name are dropped.
func ParseResults(body string) ([]domain.RawLead, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse maps results: %w", err)
	}

	var leads []domain.RawLead
	doc.Find("div.Nv2PK").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("div.qBF1Pd").First().Text())
		if title == "" {
			return
		}
		lead := domain.RawLead{
			"title":   title,
			"address": cardAddress(card),
			"phone":   strings.TrimSpace(card.Find("span.UsdlK").First().Text()),
		}
		if href, ok := card.Find("a.lcr4fd").First().Attr("href"); ok {
			lead["website"] = unwrapRedirect(href)
		}
		leads = append(leads, lead)
	})
	return leads, nil
}

// cardAddress takes the last "·"-separated part of the first info row.
func cardAddress(card *goquery.Selection) string {
	rows := card.Find("div.W4Efsd div.W4Efsd")
	if rows.Length() == 0 {
		rows = card.Find("div.W4Efsd")
	}
	line := rows.First().Text()
	parts := strings.Split(line, "·")
	return strings.TrimSpace(parts[len(parts)-1])
}

// unwrapRedirect resolves google.com/url?q= redirect links to their target.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Hostname(), "google.com") && u.Path == "/url" {
		if q := u.Query().Get("q"); q != "" {
			return q
		}
	}
	return href
}
