package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// File types that never contain crawlable HTML.
var skipExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".css", ".js", ".xml", ".zip", ".doc", ".docx"}

// Canonicalize strips the fragment and query string from a URL. Two URLs
// that only differ in query string or fragment are the same page for
// visited-set purposes.
func Canonicalize(u *url.URL) *url.URL {
	canonical := *u
	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = ""
	return &canonical
}

// InScope reports whether a resolved URL should be crawled: it must carry a
// scheme and host, stay on exactly the same host as the base URL (no
// subdomains), not point at a known non-HTML file type, and carry no fragment.
func InScope(u *url.URL, base *url.URL) bool {
	if u.Scheme == "" || u.Host == "" {
		return false
	}
	if u.Host != base.Host {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return u.Fragment == ""
}

// ResolveInternal collects the deduplicated set of canonical in-scope URLs
// linked from a page. Unparseable hrefs are skipped silently.
func ResolveInternal(doc *goquery.Document, base *url.URL) map[string]struct{} {
	links := map[string]struct{}{}

	doc.Find("a[href]").Each(func(i int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}

		if InScope(resolved, base) {
			links[Canonicalize(resolved).String()] = struct{}{}
		}
	})

	return links
}
