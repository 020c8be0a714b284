// Package crawler walks a single website breadth-first, collecting one
// PageRecord per content-bearing page.
package crawler

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"time"

	"github.com/kbcrawl/kbcrawl/app/extractor"
	"github.com/kbcrawl/kbcrawl/app/fetcher"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/exp/maps"
)

// PageRecord holds everything scraped from one page. A record only exists
// for pages whose extracted text met the minimum content length.
type PageRecord struct {
	URL             string              `json:"url"`
	Title           string              `json:"title"`
	MainHeading     string              `json:"main_heading"`
	MetaDescription string              `json:"meta_description"`
	Headings        []extractor.Heading `json:"headings"`
	Paragraphs      []string            `json:"paragraphs"`
	ListItems       []string            `json:"list_items"`
	Links           []extractor.Link    `json:"links"`
	Content         string              `json:"content"`
	Excerpt         string              `json:"excerpt,omitempty"`
	InternalLinks   []string            `json:"internal_links"`
	ScrapedAt       time.Time           `json:"scraped_at"`
}

type Scraper struct {
	Fetcher          *fetcher.Fetcher
	MaxPages         int
	MinContentLength int
	// Pause between successive fetch steps, applied whether or not the
	// fetch succeeded.
	Delay time.Duration
	// Seed the frontier from <site>/sitemap.xml before crawling.
	SeedSitemap bool
	// Follow link[rel=alternate] feeds and merge their item URLs into the
	// discovering page's internal links.
	DiscoverFeeds bool
}

// crawlState is owned by exactly one ScrapeWebsite call.
type crawlState struct {
	frontier []string
	enqueued map[string]struct{}
	visited  map[string]struct{}
	results  []PageRecord
}

func (s *crawlState) enqueue(pageURL string) {
	if _, seen := s.visited[pageURL]; seen {
		return
	}
	if _, queued := s.enqueued[pageURL]; queued {
		return
	}
	s.enqueued[pageURL] = struct{}{}
	s.frontier = append(s.frontier, pageURL)
}

// ScrapeWebsite crawls the site reachable from startURL in level order and
// returns the collected page records in crawl order. Individual page
// failures never abort the crawl; cancelling the context stops it at the
// next step boundary and returns the pages collected so far.
func (s *Scraper) ScrapeWebsite(ctx context.Context, startURL string) ([]PageRecord, error) {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}

	slogctx.Info(ctx, "Starting crawl", "url", startURL, "maxPages", s.MaxPages)

	state := &crawlState{
		enqueued: map[string]struct{}{},
		visited:  map[string]struct{}{},
	}
	state.enqueue(startURL)

	if s.SeedSitemap {
		s.seedFromSitemap(ctx, base, state)
	}

	for len(state.frontier) > 0 && len(state.results) < s.MaxPages {
		if ctx.Err() != nil {
			slogctx.Warn(ctx, "Crawl cancelled", "pages", len(state.results))
			break
		}

		current := state.frontier[0]
		state.frontier = state.frontier[1:]

		if _, seen := state.visited[current]; seen {
			continue
		}
		state.visited[current] = struct{}{}

		record := s.scrapePage(ctx, current)
		if record != nil {
			state.results = append(state.results, *record)
			for _, link := range record.InternalLinks {
				state.enqueue(link)
			}
			slogctx.Info(ctx, "Scraped page", "n", len(state.results), "url", record.URL, "title", record.Title)
		}

		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
		}
	}

	slogctx.Info(ctx, "Crawl finished", "pages", len(state.results))
	return state.results, nil
}

// scrapePage fetches and extracts one page. A nil return means the page is
// skipped: fetch failure, non-HTML, bot challenge, or too little content.
func (s *Scraper) scrapePage(ctx context.Context, pageURL string) *PageRecord {
	doc, err := s.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		switch {
		case errors.Is(err, fetcher.ErrNotHTML):
			slogctx.Info(ctx, "Skipping non-HTML page", "url", pageURL)
		case errors.Is(err, fetcher.ErrBotChallenge):
			slogctx.Warn(ctx, "Skipping bot challenge page", "url", pageURL)
		default:
			slogctx.Warn(ctx, "Failed to fetch page", "url", pageURL, "error", err)
		}
		return nil
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	// Extract strips navigation chrome from the document, so link
	// resolution below won't pick up nav/footer links either.
	content := extractor.Extract(doc, parsed, s.MinContentLength)
	internal := ResolveInternal(doc, parsed)

	if s.DiscoverFeeds {
		s.mergeFeedLinks(ctx, doc, parsed, internal)
	}

	if len(content.Text) < s.MinContentLength {
		slogctx.Info(ctx, "Skipping page with insufficient content", "url", pageURL, "length", len(content.Text))
		return nil
	}

	internalLinks := maps.Keys(internal)
	slices.Sort(internalLinks)

	return &PageRecord{
		URL:             pageURL,
		Title:           content.Title,
		MainHeading:     content.MainHeading,
		MetaDescription: content.MetaDescription,
		Headings:        content.Headings,
		Paragraphs:      content.Paragraphs,
		ListItems:       content.ListItems,
		Links:           content.Links,
		Content:         content.Text,
		Excerpt:         content.Excerpt,
		InternalLinks:   internalLinks,
		ScrapedAt:       time.Now(),
	}
}
