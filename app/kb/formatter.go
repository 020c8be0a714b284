// Package kb builds the knowledge base document from processed page entries:
// aggregate metadata plus search, FAQ, topic and keyword indices.
package kb

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kbcrawl/kbcrawl/app/enrich"
)

type Metadata struct {
	WebsiteURL    string         `json:"website_url"`
	CreatedAt     time.Time      `json:"created_at"`
	RunID         string         `json:"run_id"`
	TotalPages    int            `json:"total_pages"`
	TotalFAQs     int            `json:"total_faqs"`
	TotalKeywords int            `json:"total_keywords"`
	TotalTokens   int            `json:"total_tokens,omitempty"`
	ContentTypes  map[string]int `json:"content_types"`
	Version       string         `json:"version"`
}

// PageRef points at a page from within an index, ranked by relevance.
type PageRef struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevance_score"`
}

type URLDetails struct {
	Title          string  `json:"title"`
	ContentType    string  `json:"content_type"`
	RelevanceScore float64 `json:"relevance_score"`
	Summary        string  `json:"summary"`
}

type SearchIndex struct {
	ByURL map[string]URLDetails `json:"by_url"`
	// Lowercased title to URL. Last writer wins on title collisions.
	ByTitle       map[string]string    `json:"by_title"`
	ByContentType map[string][]PageRef `json:"by_content_type"`
	ByRelevance   []PageRef            `json:"by_relevance"`
}

type FAQEntry struct {
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	SourceURL      string  `json:"source_url"`
	SourceTitle    string  `json:"source_title"`
	RelevanceScore float64 `json:"relevance_score"`
}

type Document struct {
	Metadata      Metadata             `json:"metadata"`
	Pages         []enrich.Entry       `json:"pages"`
	SearchIndex   SearchIndex          `json:"search_index"`
	FAQSection    []FAQEntry           `json:"faq_section"`
	TopicsIndex   map[string][]PageRef `json:"topics_index"`
	KeywordsIndex map[string][]PageRef `json:"keywords_index"`
}

// Build assembles the whole document in one pass over the entries. It is a
// pure transform: entry order is preserved in Pages, and every
// relevance-keyed list comes out sorted in non-increasing order (stable, so
// ties keep entry order).
func Build(entries []enrich.Entry, websiteURL string) *Document {
	return &Document{
		Metadata:      buildMetadata(entries, websiteURL),
		Pages:         entries,
		SearchIndex:   buildSearchIndex(entries),
		FAQSection:    buildFAQSection(entries),
		TopicsIndex:   buildBuckets(entries, func(e enrich.Entry) []string { return e.KeyTopics }),
		KeywordsIndex: buildBuckets(entries, func(e enrich.Entry) []string { return e.Keywords }),
	}
}

func buildMetadata(entries []enrich.Entry, websiteURL string) Metadata {
	contentTypes := map[string]int{}
	keywords := map[string]struct{}{}
	totalFAQs := 0
	totalTokens := 0

	for _, entry := range entries {
		contentTypes[contentType(entry)]++
		totalFAQs += len(entry.FAQQuestions)
		totalTokens += entry.TokenCount
		for _, keyword := range entry.Keywords {
			keywords[keyword] = struct{}{}
		}
	}

	return Metadata{
		WebsiteURL:    websiteURL,
		CreatedAt:     time.Now(),
		RunID:         uuid.NewString(),
		TotalPages:    len(entries),
		TotalFAQs:     totalFAQs,
		TotalKeywords: len(keywords),
		TotalTokens:   totalTokens,
		ContentTypes:  contentTypes,
		Version:       "1.0",
	}
}

func buildSearchIndex(entries []enrich.Entry) SearchIndex {
	index := SearchIndex{
		ByURL:         map[string]URLDetails{},
		ByTitle:       map[string]string{},
		ByContentType: map[string][]PageRef{},
	}

	for _, entry := range entries {
		ref := PageRef{URL: entry.URL, Title: entry.Title, RelevanceScore: entry.RelevanceScore}

		index.ByURL[entry.URL] = URLDetails{
			Title:          entry.Title,
			ContentType:    contentType(entry),
			RelevanceScore: entry.RelevanceScore,
			Summary:        entry.Summary,
		}

		if entry.Title != "" {
			index.ByTitle[strings.ToLower(entry.Title)] = entry.URL
		}

		index.ByContentType[contentType(entry)] = append(index.ByContentType[contentType(entry)], ref)
		index.ByRelevance = append(index.ByRelevance, ref)
	}

	sortByRelevance(index.ByRelevance)
	return index
}

func buildFAQSection(entries []enrich.Entry) []FAQEntry {
	faqs := []FAQEntry{}

	for _, entry := range entries {
		for _, faq := range entry.FAQQuestions {
			faqs = append(faqs, FAQEntry{
				Question:       faq.Question,
				Answer:         faq.Answer,
				SourceURL:      entry.URL,
				SourceTitle:    entry.Title,
				RelevanceScore: entry.RelevanceScore,
			})
		}
	}

	sort.SliceStable(faqs, func(i, j int) bool {
		return faqs[i].RelevanceScore > faqs[j].RelevanceScore
	})
	return faqs
}

func buildBuckets(entries []enrich.Entry, terms func(enrich.Entry) []string) map[string][]PageRef {
	buckets := map[string][]PageRef{}

	for _, entry := range entries {
		for _, term := range terms(entry) {
			buckets[term] = append(buckets[term], PageRef{
				URL:            entry.URL,
				Title:          entry.Title,
				RelevanceScore: entry.RelevanceScore,
			})
		}
	}

	for _, refs := range buckets {
		sortByRelevance(refs)
	}
	return buckets
}

func sortByRelevance(refs []PageRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].RelevanceScore > refs[j].RelevanceScore
	})
}

func contentType(entry enrich.Entry) string {
	if entry.ContentType == "" {
		return "other"
	}
	return entry.ContentType
}
