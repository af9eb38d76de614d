package crawler

import (
	"net/url"
	"strings"

	"github.com/gammazero/deque"
)

// frontier is the crawl work queue. Contact-like pages jump the line by
// being pushed to the front; everything else waits at the back.
type frontier struct {
	q       deque.Deque[string]
	visited map[string]struct{}
}

func newFrontier(seed string) *frontier {
	f := &frontier{visited: make(map[string]struct{})}
	f.q.PushBack(seed)
	return f
}

func (f *frontier) push(u string, priority bool) {
	if f.seen(u) {
		return
	}
	if priority {
		f.q.PushFront(u)
		return
	}
	f.q.PushBack(u)
}

// next pops URLs until it finds one that has not been visited, marks it
// visited and returns it. ok is false once the queue is drained.
func (f *frontier) next() (string, bool) {
	for f.q.Len() > 0 {
		u := f.q.PopFront()
		if f.seen(u) {
			continue
		}
		f.visited[visitKey(u)] = struct{}{}
		return u, true
	}
	return "", false
}

func (f *frontier) seen(u string) bool {
	_, ok := f.visited[visitKey(u)]
	return ok
}

// visitKey identifies a page regardless of scheme, a leading www. on the host
// or a trailing slash.
func visitKey(u string) string {
	pu, err := url.Parse(u)
	if err != nil {
		return u
	}
	key := siteHost(pu) + strings.TrimRight(pu.EscapedPath(), "/")
	if pu.RawQuery != "" {
		key += "?" + pu.RawQuery
	}
	return key
}

func (f *frontier) len() int { return f.q.Len() }
