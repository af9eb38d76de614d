package contact

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var socialDomains = map[string]struct{}{
	"facebook.com": {}, "instagram.com": {}, "twitter.com": {}, "x.com": {},
	"linkedin.com": {}, "youtube.com": {}, "tiktok.com": {}, "pinterest.com": {},
	"snapchat.com": {}, "reddit.com": {}, "whatsapp.com": {}, "telegram.org": {},
	"discord.com": {}, "tumblr.com": {}, "flickr.com": {}, "vimeo.com": {},
	"dribbble.com": {}, "behance.net": {}, "medium.com": {}, "quora.com": {},
}

var (
	repeatedScheme = regexp.MustCompile(`(?i)^(https?://)+`)
	hasScheme      = regexp.MustCompile(`(?i)^https?://`)
)

// NormalizeURL returns raw as "https://host/path" with the port, user info,
// query, fragment, leading "www." and trailing slashes removed. Social media
// hosts and anything unparsable yield "".
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if m := repeatedScheme.FindString(raw); m != "" && len(m) > len("https://") {
		raw = "https://" + raw[len(m):]
	}
	if !hasScheme.MatchString(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.User != nil || strings.Contains(u.Host, "@") {
		return ""
	}
	host := strings.ToLower(strings.TrimSpace(u.Hostname()))
	if host == "" {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")
	if IsSocialHost(host) {
		return ""
	}

	out := url.URL{Scheme: "https", Host: host, Path: strings.TrimRight(u.Path, "/")}
	return out.String()
}

// IsSocialHost reports whether host is, or is a subdomain of, a social media
// domain.
func IsSocialHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if _, ok := socialDomains[host]; ok {
		return true
	}
	if reg, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		if _, ok := socialDomains[reg]; ok {
			return true
		}
	}
	for d := range socialDomains {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
