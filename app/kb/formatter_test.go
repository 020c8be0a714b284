package kb

import (
	"reflect"
	"testing"

	"github.com/kbcrawl/kbcrawl/app/enrich"
)

func sampleEntries() []enrich.Entry {
	return []enrich.Entry{
		{
			URL:            "https://example.com/about",
			Title:          "About Us",
			Summary:        "Who we are.",
			KeyTopics:      []string{"company"},
			Keywords:       []string{"about", "team"},
			ContentType:    "about",
			RelevanceScore: 0.2,
			TokenCount:     100,
			FAQQuestions: []enrich.FAQ{
				{Question: "Who are you?", Answer: "A company."},
			},
		},
		{
			URL:            "https://example.com/",
			Title:          "Example Home",
			Summary:        "The home page.",
			KeyTopics:      []string{"company", "products"},
			Keywords:       []string{"example", "home"},
			ContentType:    "article",
			RelevanceScore: 0.9,
			TokenCount:     250,
			FAQQuestions: []enrich.FAQ{
				{Question: "What is this?", Answer: "An example."},
				{Question: "Where do I start?", Answer: "The home page."},
			},
		},
		{
			URL:            "https://example.com/pricing",
			Title:          "Pricing",
			Summary:        "What it costs.",
			KeyTopics:      []string{"products"},
			Keywords:       []string{"pricing", "example"},
			RelevanceScore: 0.5,
			TokenCount:     150,
		},
	}
}

func TestBuildMetadata(t *testing.T) {
	doc := Build(sampleEntries(), "https://example.com/")
	meta := doc.Metadata

	if meta.WebsiteURL != "https://example.com/" {
		t.Fatalf("unexpected website URL: %q", meta.WebsiteURL)
	}
	if meta.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", meta.TotalPages)
	}
	if meta.TotalFAQs != 3 {
		t.Fatalf("expected 3 FAQs, got %d", meta.TotalFAQs)
	}
	// "example" appears on two pages but counts once.
	if meta.TotalKeywords != 5 {
		t.Fatalf("expected 5 unique keywords, got %d", meta.TotalKeywords)
	}
	if meta.TotalTokens != 500 {
		t.Fatalf("expected 500 tokens, got %d", meta.TotalTokens)
	}
	wantTypes := map[string]int{"about": 1, "article": 1, "other": 1}
	if !reflect.DeepEqual(meta.ContentTypes, wantTypes) {
		t.Fatalf("unexpected content types: %v", meta.ContentTypes)
	}
	if meta.RunID == "" || meta.Version != "1.0" {
		t.Fatalf("missing run identity: %+v", meta)
	}
	if meta.CreatedAt.IsZero() {
		t.Fatalf("expected a creation timestamp")
	}
}

func TestBuildSearchIndex(t *testing.T) {
	doc := Build(sampleEntries(), "https://example.com/")
	index := doc.SearchIndex

	details, ok := index.ByURL["https://example.com/pricing"]
	if !ok {
		t.Fatalf("pricing page missing from by_url")
	}
	if details.ContentType != "other" {
		t.Fatalf("empty content type should index as other, got %q", details.ContentType)
	}
	if details.Summary != "What it costs." {
		t.Fatalf("unexpected summary: %q", details.Summary)
	}

	if index.ByTitle["example home"] != "https://example.com/" {
		t.Fatalf("titles should be lowercased keys: %v", index.ByTitle)
	}
	if _, ok := index.ByTitle["Example Home"]; ok {
		t.Fatalf("original-case title should not be a key")
	}

	wantOrder := []string{
		"https://example.com/",
		"https://example.com/pricing",
		"https://example.com/about",
	}
	if len(index.ByRelevance) != 3 {
		t.Fatalf("expected 3 relevance entries, got %d", len(index.ByRelevance))
	}
	for i, want := range wantOrder {
		if index.ByRelevance[i].URL != want {
			t.Fatalf("by_relevance[%d] = %q, want %q", i, index.ByRelevance[i].URL, want)
		}
	}
}

func TestBuildFAQSectionSortedByRelevance(t *testing.T) {
	doc := Build(sampleEntries(), "https://example.com/")

	if len(doc.FAQSection) != 3 {
		t.Fatalf("expected 3 FAQ entries, got %d", len(doc.FAQSection))
	}
	// Home page FAQs (0.9) come first, in their original order, then about (0.2).
	if doc.FAQSection[0].Question != "What is this?" || doc.FAQSection[1].Question != "Where do I start?" {
		t.Fatalf("high-relevance FAQs out of order: %+v", doc.FAQSection)
	}
	if doc.FAQSection[2].SourceURL != "https://example.com/about" {
		t.Fatalf("low-relevance FAQ should sort last: %+v", doc.FAQSection[2])
	}
	if doc.FAQSection[0].SourceTitle != "Example Home" {
		t.Fatalf("FAQ entries should carry their source page: %+v", doc.FAQSection[0])
	}
}

func TestBuildTopicAndKeywordBuckets(t *testing.T) {
	doc := Build(sampleEntries(), "https://example.com/")

	company := doc.TopicsIndex["company"]
	if len(company) != 2 || company[0].URL != "https://example.com/" {
		t.Fatalf("topic bucket should be sorted by relevance: %+v", company)
	}

	example := doc.KeywordsIndex["example"]
	if len(example) != 2 || example[0].RelevanceScore != 0.9 || example[1].RelevanceScore != 0.5 {
		t.Fatalf("keyword bucket should be sorted by relevance: %+v", example)
	}

	if _, ok := doc.KeywordsIndex["missing"]; ok {
		t.Fatalf("unexpected keyword bucket")
	}
}

func TestBuildPreservesEntryOrder(t *testing.T) {
	entries := sampleEntries()
	doc := Build(entries, "https://example.com/")

	for i := range entries {
		if doc.Pages[i].URL != entries[i].URL {
			t.Fatalf("pages[%d] = %q, want %q", i, doc.Pages[i].URL, entries[i].URL)
		}
	}
}

func TestBuildEmptyEntries(t *testing.T) {
	doc := Build(nil, "https://example.com/")

	if doc.Metadata.TotalPages != 0 || doc.Metadata.TotalFAQs != 0 {
		t.Fatalf("unexpected counts: %+v", doc.Metadata)
	}
	if doc.FAQSection == nil {
		t.Fatalf("faq_section should serialize as an empty list")
	}
	if len(doc.SearchIndex.ByURL) != 0 {
		t.Fatalf("unexpected by_url entries")
	}
}
