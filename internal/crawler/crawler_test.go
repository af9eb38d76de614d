package crawler

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSite serves fixed HTML per URL and records navigations.
type fakeSite struct {
	pages   map[string]string
	visits  []string
	current string
}

func (f *fakeSite) Navigate(_ context.Context, u string) error {
	f.visits = append(f.visits, u)
	if _, ok := f.pages[u]; !ok {
		return errors.New("404")
	}
	f.current = u
	return nil
}

func (f *fakeSite) ScrollToBottom(context.Context) error { return nil }

func (f *fakeSite) HTML(context.Context) (string, error) { return f.pages[f.current], nil }

func TestCrawl_EarlyExitOnSeed(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://acme.example.com": `<html><body>
			<a href="mailto:Sales@Acme.com?subject=hi">Mail us</a>
			<a href="tel:+447400123456">Call</a>
			<a href="https://wa.me/447400654321?text=hello">WhatsApp</a>
			<a href="/contact">Contact</a>
			<a href="/products">Products</a>
		</body></html>`,
		"https://acme.example.com/contact":  `<html><body>nothing</body></html>`,
		"https://acme.example.com/products": `<html><body>nothing</body></html>`,
	}}

	res := New(Options{}, nil).Crawl(context.Background(), site, "https://acme.example.com", "GB")

	if res.PagesVisited != 1 || len(site.visits) != 1 {
		t.Fatalf("got %d pages (%v), want 1", res.PagesVisited, site.visits)
	}
	if res.Email != "sales@acme.com" {
		t.Errorf("email: got %q, want %q", res.Email, "sales@acme.com")
	}
	if res.Mobile != "+447400123456" {
		t.Errorf("mobile: got %q, want %q", res.Mobile, "+447400123456")
	}
	if res.WhatsApp != "+447400654321" {
		t.Errorf("whatsapp: got %q, want %q", res.WhatsApp, "+447400654321")
	}
}

func TestCrawl_ContactPagesFirst(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://shop.example.com": `<html><body>
			<a href="/blog">Blog</a>
			<a href="https://www.shop.example.com/about-us/">About</a>
			<a href="/gallery.png">img</a>
			<a href="https://other.example.org/contact">elsewhere</a>
			<a href="/page#top">anchor</a>
		</body></html>`,
		"https://www.shop.example.com/about-us": `<html><body>
			<p>Email: hello@shop.example.com</p>
			<p>Chat on WhatsApp: +44 7400 111222</p>
		</body></html>`,
		"https://shop.example.com/blog": `<html><body><a href="tel:07400 333444">Mobile</a></body></html>`,
	}}

	res := New(Options{}, nil).Crawl(context.Background(), site, "https://shop.example.com", "GB")

	want := []string{
		"https://shop.example.com",
		"https://www.shop.example.com/about-us",
	}
	if len(site.visits) != len(want) {
		t.Fatalf("visits: got %v, want %v", site.visits, want)
	}
	for i := range want {
		if site.visits[i] != want[i] {
			t.Fatalf("visit %d: got %q, want %q", i, site.visits[i], want[i])
		}
	}
	if res.Email != "hello@shop.example.com" {
		t.Errorf("email: got %q", res.Email)
	}
	if res.WhatsApp != "+447400111222" {
		t.Errorf("whatsapp: got %q", res.WhatsApp)
	}
	if res.Mobile != "+447400111222" {
		t.Errorf("mobile: got %q", res.Mobile)
	}
}

func TestCrawl_PageErrorsAndLimit(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://a.example.com": `<a href="/missing">x</a><a href="/one">1</a><a href="/two">2</a>`,
		"https://a.example.com/one": `<p>none</p>`,
		"https://a.example.com/two": `<p>none</p>`,
	}}

	res := New(Options{MaxPages: 2}, nil).Crawl(context.Background(), site, "https://a.example.com", "US")
	if res.PagesVisited != 2 {
		t.Fatalf("got %d pages, want 2", res.PagesVisited)
	}
	if len(res.PageErrors) != 1 || !errors.Is(res.PageErrors[0], ErrNavigation) {
		t.Fatalf("got page errors %v, want one navigation error", res.PageErrors)
	}
	if !res.Truncated {
		t.Error("expected truncated result")
	}
}

func TestCrawl_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	site := &fakeSite{pages: map[string]string{"https://a.example.com": "<p>x</p>"}}
	res := New(Options{}, nil).Crawl(ctx, site, "https://a.example.com", "US")
	if res.PagesVisited != 0 || len(site.visits) != 0 {
		t.Fatalf("got %d pages, want none", res.PagesVisited)
	}
}

func TestFrontier_Priority(t *testing.T) {
	f := newFrontier("seed")
	if u, _ := f.next(); u != "seed" {
		t.Fatalf("got %q, want seed", u)
	}
	f.push("b1", false)
	f.push("b2", false)
	f.push("p1", true)
	f.push("p2", true)
	f.push("seed", true)

	var got []string
	for {
		u, ok := f.next()
		if !ok {
			break
		}
		got = append(got, u)
	}
	want := []string{"p2", "p1", "b1", "b2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCrawl_WWWVariantsVisitedOnce(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		"https://a.example.com": `<a href="/about">About</a><a href="https://www.a.example.com/about/">About</a>`,
		"https://a.example.com/about":     `<p>none</p>`,
		"https://www.a.example.com/about": `<p>none</p>`,
	}}

	res := New(Options{}, nil).Crawl(context.Background(), site, "https://a.example.com", "US")

	if res.PagesVisited != 2 || len(site.visits) != 2 {
		t.Fatalf("got visits %v, want the seed and one about page", site.visits)
	}
}

// panickySite panics while rendering one page.
type panickySite struct {
	*fakeSite
	bad string
}

func (p *panickySite) HTML(ctx context.Context) (string, error) {
	if p.current == p.bad {
		panic("renderer crashed")
	}
	return p.fakeSite.HTML(ctx)
}

func TestCrawl_PanicKeepsEarlierContacts(t *testing.T) {
	site := &panickySite{
		fakeSite: &fakeSite{pages: map[string]string{
			"https://a.example.com":         `<a href="mailto:info@a.example.com">mail</a><a href="/contact">Contact</a><a href="/blog">Blog</a>`,
			"https://a.example.com/contact": `<p>broken</p>`,
			"https://a.example.com/blog":    `<a href="tel:+447400123456">call</a>`,
		}},
		bad: "https://a.example.com/contact",
	}

	res := New(Options{}, nil).Crawl(context.Background(), site, "https://a.example.com", "GB")

	if res.Email != "info@a.example.com" {
		t.Errorf("email: got %q, want %q", res.Email, "info@a.example.com")
	}
	if res.Mobile != "+447400123456" {
		t.Errorf("mobile: got %q, want %q", res.Mobile, "+447400123456")
	}
	if res.PagesVisited != 3 {
		t.Errorf("got %d pages, want 3", res.PagesVisited)
	}
	if len(res.PageErrors) != 1 || !errors.Is(res.PageErrors[0], ErrExtraction) {
		t.Fatalf("got page errors %v, want one extraction error", res.PageErrors)
	}
}

func TestHostLimiter_PerSite(t *testing.T) {
	l := NewHostLimiter(1, 1)
	if l.get("a.example.com") == l.get("b.example.com") {
		t.Error("distinct hosts share a limiter")
	}
	if l.get("www.a.example.com") != l.get("a.example.com") {
		t.Error("www and bare host use different limiters")
	}

	if err := l.WaitURL(context.Background(), "https://c.example.com/"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.WaitURL(ctx, "https://www.c.example.com/about"); err == nil {
		t.Error("second load of the same site did not wait")
	}
	if err := l.WaitURL(ctx, "https://d.example.com/"); err != nil {
		t.Errorf("other site: got %v, want nil", err)
	}
	if err := l.WaitURL(context.Background(), "not a url\x7f"); err != nil {
		t.Errorf("unparseable url: got %v, want nil", err)
	}
}
