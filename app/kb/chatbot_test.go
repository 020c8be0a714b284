package kb

import (
	"testing"

	"github.com/kbcrawl/kbcrawl/app/enrich"
)

func TestChatbot(t *testing.T) {
	doc := Build(sampleEntries(), "https://example.com/")
	data := Chatbot(doc)

	// 3 FAQ intents plus 3 page intents.
	if len(data.Intents) != 6 {
		t.Fatalf("expected 6 intents, got %d: %v", len(data.Intents), data.Intents)
	}
	if len(data.TrainingData) != 6 {
		t.Fatalf("expected 6 training pairs, got %d", len(data.TrainingData))
	}

	first := data.TrainingData[0]
	if first.Intent != "faq_1" {
		t.Fatalf("FAQ intents should be numbered from 1, got %q", first.Intent)
	}
	if first.Text != "What is this?" || first.Response != "An example." {
		t.Fatalf("FAQ pair should follow the sorted FAQ section: %+v", first)
	}
	if data.Responses["faq_1"] != "An example." {
		t.Fatalf("responses map out of sync: %v", data.Responses)
	}

	pagePair := data.TrainingData[3]
	if pagePair.Intent != "page_https___example.com_about" {
		t.Fatalf("unexpected page intent: %q", pagePair.Intent)
	}
	if pagePair.Text != "About Us" || pagePair.Response != "Who we are." {
		t.Fatalf("page pair should use title and summary: %+v", pagePair)
	}

	if data.Contexts == nil || data.Entities == nil {
		t.Fatalf("contexts and entities should be empty maps, not nil")
	}
}

func TestChatbotSkipsPagesWithoutSummary(t *testing.T) {
	doc := Build([]enrich.Entry{
		{URL: "https://example.com/empty", Title: "Empty"},
	}, "https://example.com/")

	data := Chatbot(doc)

	if len(data.Intents) != 0 || len(data.TrainingData) != 0 {
		t.Fatalf("pages without summaries should produce no intents: %+v", data)
	}
}
