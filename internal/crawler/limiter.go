package crawler

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out page loads per site. www.example.com and
// example.com count as the same site. One limiter is shared by every worker
// of a pipeline run.
type HostLimiter struct {
	mu    sync.Mutex
	sites map[string]*rate.Limiter
	every rate.Limit
	burst int
}

// NewHostLimiter allows perSec page loads per site with the given burst.
func NewHostLimiter(perSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		sites: make(map[string]*rate.Limiter),
		every: rate.Limit(perSec),
		burst: max(burst, 1),
	}
}

func (hl *HostLimiter) get(host string) *rate.Limiter {
	site := siteHost(&url.URL{Host: host})
	hl.mu.Lock()
	defer hl.mu.Unlock()
	lim, ok := hl.sites[site]
	if !ok {
		lim = rate.NewLimiter(hl.every, hl.burst)
		hl.sites[site] = lim
	}
	return lim
}

// WaitURL blocks until the site of pageURL may be loaded again. URLs without
// a host are not limited.
func (hl *HostLimiter) WaitURL(ctx context.Context, pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return hl.get(u.Hostname()).Wait(ctx)
}
