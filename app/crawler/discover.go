package crawler

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	sitemap "github.com/oxffaa/gopher-parse-sitemap"
	slogctx "github.com/veqryn/slog-context"
)

// seedFromSitemap queues every in-scope URL listed in the site's
// /sitemap.xml behind the start URL. Best effort: sites without a sitemap
// are crawled from the start URL alone.
func (s *Scraper) seedFromSitemap(ctx context.Context, base *url.URL, state *crawlState) {
	sitemapURL := base.Scheme + "://" + base.Host + "/sitemap.xml"

	add := func(location string) {
		parsed, err := url.Parse(location)
		if err != nil {
			return
		}
		if InScope(parsed, base) {
			state.enqueue(Canonicalize(parsed).String())
		}
	}

	seeded := len(state.frontier)
	err := sitemap.ParseFromSite(sitemapURL, func(entry sitemap.Entry) error {
		add(entry.GetLocation())
		return nil
	})

	// The sitemap may be an index of sitemaps instead.
	indexErr := sitemap.ParseIndexFromSite(sitemapURL, func(entry sitemap.IndexEntry) error {
		return sitemap.ParseFromSite(entry.GetLocation(), func(e sitemap.Entry) error {
			add(e.GetLocation())
			return nil
		})
	})

	if err != nil && indexErr != nil {
		slogctx.Info(ctx, "No sitemap found", "url", sitemapURL)
		return
	}

	slogctx.Info(ctx, "Seeded frontier from sitemap", "url", sitemapURL, "added", len(state.frontier)-seeded)
}

// mergeFeedLinks finds alternate RSS/Atom feeds advertised by a page, parses
// them, and merges their in-scope item URLs into the page's internal link
// set. Alternate HTML links (other languages, AMP pages) are merged directly.
func (s *Scraper) mergeFeedLinks(ctx context.Context, doc *goquery.Document, pageURL *url.URL, internal map[string]struct{}) {
	add := func(location string) {
		resolved, err := pageURL.Parse(location)
		if err != nil {
			return
		}
		if InScope(resolved, pageURL) {
			internal[Canonicalize(resolved).String()] = struct{}{}
		}
	}

	doc.Find("link[rel=alternate]").Each(func(i int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		if !exists {
			return
		}

		switch linkType, _ := link.Attr("type"); linkType {
		case "application/atom+xml", "application/rss+xml":
			feedURL, err := pageURL.Parse(href)
			if err != nil {
				return
			}

			parser := gofeed.NewParser()
			parser.UserAgent = s.Fetcher.UserAgent
			feed, err := parser.ParseURLWithContext(feedURL.String(), ctx)
			if err != nil {
				slogctx.Warn(ctx, "Failed to parse feed", "url", feedURL.String(), "error", err)
				return
			}

			for _, item := range feed.Items {
				for _, itemLink := range item.Links {
					add(itemLink)
				}
			}
		case "text/html":
			add(href)
		}
	})
}
