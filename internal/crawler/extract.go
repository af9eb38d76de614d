package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/user/lead-crawler/internal/contact"
)

var (
	contactPagePattern = regexp.MustCompile(`(?i)(about|contact|reach|connect|connect[-_]?us|` +
		`contact[-_]?us|about[-_]?us|get[-_]?in[-_]?touch|` +
		`support|help|team|staff|location|find[-_]?us|visit|` +
		`call|email|phone|message|enquir|inquir|feedback|ask|talk|speak|office|branch|` +
		`who[-_]?we[-_]?are|our[-_]?story|profile|information|overview|company|` +
		`directions|map|address|stores?|offices?|branches?|` +
		`faq|customer[-_]?service|service|assist|ticket|` +
		`info|details)`)

	skipLinkPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\.(pdf|jpg|jpeg|png|gif|svg|ico|css|js)$`),
		regexp.MustCompile(`#`),
		regexp.MustCompile(`(?i)mailto:`),
		regexp.MustCompile(`(?i)tel:`),
		regexp.MustCompile(`(?i)javascript:`),
	}

	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
		regexp.MustCompile(`\(?\d{2,5}\)?[-.\s]?\d{2,5}[-.\s]?\d{3,8}`),
		regexp.MustCompile(`\b\d{7,15}\b`),
	}

	waPhoneParam = regexp.MustCompile(`phone=(\+?\d+)`)
	waHrefDigits = regexp.MustCompile(`\+?\d[\d\s\-\(\)]{5,}\d`)

	waContextPatterns = []*regexp.Regexp{
		regexp.MustCompile(`whatsapp[:\s]*([+0-9\-\s\(\)]{7,20})`),
		regexp.MustCompile(`chat on whatsapp[:\s]*([+0-9\-\s\(\)]{7,20})`),
		regexp.MustCompile(`contact on whatsapp[:\s]*([+0-9\-\s\(\)]{7,20})`),
		regexp.MustCompile(`([+0-9\-\s\(\)]{7,20})\s*whatsapp`),
		regexp.MustCompile(`([+0-9\-\s\(\)]{7,20})\s*(for|on)\s*whatsapp`),
		regexp.MustCompile(`whatsapp\s*([+0-9\-\s\(\)]{7,20})`),
		regexp.MustCompile(`([+0-9\-\s\(\)]{7,20})\s*(via|through)\s*whatsapp`),
	}

	waHrefMarkers = []string{"wa.me/", "api.whatsapp.com", "whatsapp.com/send", "whatsapp"}
)

// page is a rendered document ready for contact extraction.
type page struct {
	url   *url.URL
	doc   *goquery.Document
	text  string
	hrefs []string
}

func parsePage(pageURL, body string) (*page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	p := &page{url: u, doc: doc}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			p.hrefs = append(p.hrefs, strings.TrimSpace(href))
		}
	})
	doc.Find("script, style, noscript, template").Remove()
	p.text = visibleText(doc.Find("body").Nodes)
	return p, nil
}

// blockElements get a line break around their text so that regexes over the
// page text never join content from separate blocks.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Table: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Aside: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Address: true, atom.Form: true, atom.Button: true, atom.Option: true, atom.Dd: true, atom.Dt: true,
}

func visibleText(nodes []*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}

// schemeValue returns what follows scheme (e.g. "mailto:") in href, up to the
// first "?". ok is false when href does not use scheme.
func schemeValue(href, scheme string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(href), scheme) {
		return "", false
	}
	v := href[len(scheme):]
	if i := strings.IndexByte(v, '?'); i >= 0 {
		v = v[:i]
	}
	if dec, err := url.PathUnescape(v); err == nil {
		v = dec
	}
	return strings.TrimSpace(v), true
}

// findEmail prefers mailto links and falls back to scanning the page text.
func (p *page) findEmail() string {
	for _, href := range p.hrefs {
		v, ok := schemeValue(href, "mailto:")
		if !ok {
			continue
		}
		if email := strings.ToLower(v); contact.ValidEmail(email) {
			return email
		}
	}
	for _, m := range emailPattern.FindAllString(p.text, -1) {
		if contact.ValidEmail(m) {
			return strings.ToLower(m)
		}
	}
	return ""
}

// findMobile returns the first mobile-typed number from tel links, then from
// the page text. A number of any other type is returned only when no mobile
// number exists in the same source.
func (p *page) findMobile(region string) string {
	var tels []string
	for _, href := range p.hrefs {
		if v, ok := schemeValue(href, "tel:"); ok {
			tels = append(tels, v)
		}
	}
	if n := pickMobile(tels, region); n != "" {
		return n
	}

	var candidates []string
	for _, re := range phonePatterns {
		candidates = append(candidates, re.FindAllString(p.text, -1)...)
	}
	return pickMobile(candidates, region)
}

func pickMobile(raw []string, region string) string {
	fallback := ""
	for _, r := range raw {
		formatted, _ := contact.NormalizePhone(r, region)
		if formatted == "" {
			continue
		}
		if mobile, _ := contact.IsMobile(formatted); mobile {
			return formatted
		}
		if fallback == "" {
			fallback = formatted
		}
	}
	return fallback
}

// findWhatsApp looks for WhatsApp click-to-chat links first, then for phone
// numbers written next to the word "whatsapp".
func (p *page) findWhatsApp(region string) string {
	for _, href := range p.hrefs {
		lower := strings.ToLower(href)
		if !containsAny(lower, waHrefMarkers) {
			continue
		}
		raw := whatsAppFromHref(href, lower)
		if raw == "" {
			continue
		}
		if formatted, _ := contact.NormalizePhone(raw, region); formatted != "" {
			return formatted
		}
	}

	text := strings.ToLower(p.text)
	for _, re := range waContextPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if formatted, _ := contact.NormalizePhone(m[1], region); formatted != "" {
				return formatted
			}
		}
	}
	return ""
}

func whatsAppFromHref(href, lower string) string {
	switch {
	case strings.Contains(lower, "wa.me/"):
		v := href[strings.Index(lower, "wa.me/")+len("wa.me/"):]
		if i := strings.IndexAny(v, "?/"); i >= 0 {
			v = v[:i]
		}
		return v
	case (strings.Contains(lower, "api.whatsapp.com") || strings.Contains(lower, "whatsapp.com/send")) &&
		strings.Contains(lower, "phone="):
		if m := waPhoneParam.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
		return ""
	default:
		return waHrefDigits.FindString(href)
	}
}

// link is a same-site URL discovered on a page.
type link struct {
	url      string
	priority bool
}

// links returns the crawlable same-site links of the page, cleaned of query
// and fragment, in document order.
func (p *page) links() []link {
	var out []link
	for _, href := range p.hrefs {
		if skipLink(href) {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := p.url.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		if !sameSite(abs, p.url) {
			continue
		}
		priority := contactPagePattern.MatchString(abs.Path) || contactPagePattern.MatchString(abs.RawQuery)
		out = append(out, link{url: cleanURL(abs), priority: priority})
	}
	return out
}

func skipLink(href string) bool {
	for _, re := range skipLinkPatterns {
		if re.MatchString(href) {
			return true
		}
	}
	return false
}

func cleanURL(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.Fragment = ""
	c.RawFragment = ""
	c.User = nil
	return strings.TrimRight(c.String(), "/")
}

func siteHost(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func sameSite(a, b *url.URL) bool {
	return siteHost(a) == siteHost(b)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
