package enrich

import (
	"testing"
)

const validJSON = `{
	"summary": "A page about widgets.",
	"key_topics": ["widgets"],
	"faq_questions": [{"question": "What is a widget?", "answer": "A small device."}],
	"important_facts": ["Widgets are small."],
	"keywords": ["widget", "device"],
	"content_type": "product",
	"relevance_score": 0.8
}`

func TestParseEntryPlainJSON(t *testing.T) {
	entry, err := ParseEntry(validJSON)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Summary != "A page about widgets." {
		t.Fatalf("unexpected summary: %q", entry.Summary)
	}
	if entry.ContentType != "product" || entry.RelevanceScore != 0.8 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(entry.FAQQuestions) != 1 || entry.FAQQuestions[0].Question != "What is a widget?" {
		t.Fatalf("unexpected FAQ list: %+v", entry.FAQQuestions)
	}
}

func TestParseEntryFencedJSON(t *testing.T) {
	completion := "Here is the structured entry:\n```json\n" + validJSON + "\n```\nLet me know if you need anything else."

	entry, err := ParseEntry(completion)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ContentType != "product" {
		t.Fatalf("unexpected content type: %q", entry.ContentType)
	}
}

func TestParseEntryEmbeddedJSON(t *testing.T) {
	completion := "Sure! The entry is " + validJSON + " and that is all."

	entry, err := ParseEntry(completion)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entry.Keywords) != 2 {
		t.Fatalf("unexpected keywords: %v", entry.Keywords)
	}
}

func TestParseEntryGarbage(t *testing.T) {
	if _, err := ParseEntry("I'm sorry, I can't help with that."); err == nil {
		t.Fatalf("expected an error for a non-JSON completion")
	}
}

func TestParseEntryNormalizes(t *testing.T) {
	table := []struct {
		completion    string
		wantType      string
		wantRelevance float64
	}{
		{completion: `{"summary": "s", "relevance_score": 1.7}`, wantType: "other", wantRelevance: 1},
		{completion: `{"summary": "s", "relevance_score": -0.3}`, wantType: "other", wantRelevance: 0},
		{completion: `{"summary": "s", "content_type": "help", "relevance_score": 0.4}`, wantType: "help", wantRelevance: 0.4},
	}

	for _, row := range table {
		entry, err := ParseEntry(row.completion)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", row.completion, err)
		}
		if entry.ContentType != row.wantType || entry.RelevanceScore != row.wantRelevance {
			t.Fatalf("ParseEntry(%q) = type %q relevance %v, want %q %v",
				row.completion, entry.ContentType, entry.RelevanceScore, row.wantType, row.wantRelevance)
		}
	}
}

func TestExtractJSONPrefersFencedBlock(t *testing.T) {
	completion := "Preamble {\"wrong\": true}\n```json\n{\"right\": true}\n```"

	if got := ExtractJSON(completion); got != `{"right": true}` {
		t.Fatalf("ExtractJSON = %q", got)
	}
}
