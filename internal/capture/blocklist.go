package capture

import (
	"net/url"
	"strings"
)

// domainBlocklist lists domains that never yield a usable screenshot:
// hard paywalls, CAPTCHA gates, geo-blocks, and social platforms that
// refuse headless access. Curated from observed capture failures.
var domainBlocklist = []string{
	"twitter.com", "x.com", "facebook.com", "instagram.com", "linkedin.com",
	"wsj.com", "nytimes.com", "nyt.com", "ft.com", "bloomberg.com",
	"washingtonpost.com", "economist.com", "forbes.com", "reuters.com",
	"time.com", "theglobeandmail.com", "dw.com", "cbsnews.com",
	"news.sky.com", "sky.com", "azerbaycan24.com", "vocal.media",
}

// IsBlacklisted reports whether the URL's host contains a blocklisted
// domain. Malformed URLs fail open: they still get a real navigation
// attempt and can fail validation naturally.
func IsBlacklisted(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, domain := range domainBlocklist {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}

// FilterCandidates drops blocklisted URLs, preserving order.
func FilterCandidates(urls []string) []string {
	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if !IsBlacklisted(u) {
			kept = append(kept, u)
		}
	}
	return kept
}
