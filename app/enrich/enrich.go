// Package enrich turns scraped page records into structured knowledge base
// entries, either through an LLM call or a deterministic fallback.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbcrawl/kbcrawl/app/crawler"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	slogctx "github.com/veqryn/slog-context"
)

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Entry is one processed page, shaped for the knowledge base.
type Entry struct {
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	KeyTopics        []string  `json:"key_topics"`
	FAQQuestions     []FAQ     `json:"faq_questions"`
	ImportantFacts   []string  `json:"important_facts"`
	Keywords         []string  `json:"keywords"`
	ContentType      string    `json:"content_type"`
	RelevanceScore   float64   `json:"relevance_score"`
	TokenCount       int       `json:"token_count,omitempty"`
	ProcessedAt      time.Time `json:"processed_at"`
	ProcessingMethod string    `json:"processing_method,omitempty"`
}

// Keep prompts within a conservative completion-model budget even when the
// character limit would allow more.
const maxPromptTokens = 4000

type Processor struct {
	llm llms.Model
	// Content passed to the model is truncated to this many characters.
	MaxContentLength int
	// Minimum spacing between successive model calls.
	Spacing time.Duration

	lastCall time.Time
}

// New connects to an OpenAI-compatible API.
func New(baseURL string, model string, apiKey string, maxContentLength int, spacing time.Duration) (*Processor, error) {
	llm, err := openai.New(openai.WithBaseURL(baseURL), openai.WithModel(model), openai.WithToken(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error setting up LLM: %v", err)
	}
	return NewWithModel(llm, maxContentLength, spacing), nil
}

// NewWithModel wraps an existing model implementation.
func NewWithModel(llm llms.Model, maxContentLength int, spacing time.Duration) *Processor {
	return &Processor{llm: llm, MaxContentLength: maxContentLength, Spacing: spacing}
}

// Process enriches every page in order. Pages the model cannot handle get a
// fallback entry; Process never fails for a single page.
func (p *Processor) Process(ctx context.Context, pages []crawler.PageRecord) []Entry {
	entries := make([]Entry, 0, len(pages))

	for i, page := range pages {
		slogctx.Info(ctx, "Processing page", "n", i+1, "total", len(pages), "title", page.Title)
		entries = append(entries, p.processPage(ctx, page))
	}

	return entries
}

func (p *Processor) processPage(ctx context.Context, page crawler.PageRecord) Entry {
	content := prepareContent(CombinedContent(page), p.MaxContentLength)

	p.waitTurn(ctx)
	completion, err := llms.GenerateFromSinglePrompt(ctx, p.llm, buildPrompt(content, page.URL, page.Title))
	if err != nil {
		slogctx.Error(ctx, "LLM call failed, using fallback entry", "url", page.URL, "error", err)
		return Fallback(page.Content, page.URL, page.Title)
	}

	entry, err := ParseEntry(completion)
	if err != nil {
		slogctx.Error(ctx, "Failed to parse LLM response, using fallback entry", "url", page.URL, "error", err)
		return Fallback(page.Content, page.URL, page.Title)
	}

	entry.URL = page.URL
	entry.Title = page.Title
	entry.TokenCount = CountTokens(content)
	entry.ProcessedAt = time.Now()
	return entry
}

// waitTurn enforces the minimum spacing between model calls.
func (p *Processor) waitTurn(ctx context.Context) {
	if wait := p.Spacing - time.Since(p.lastCall); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
		}
	}
	p.lastCall = time.Now()
}

// CombinedContent flattens a page record into the text handed to the model:
// heading and description labels, markdown-style headings, paragraphs, and
// bulleted list items separated by blank lines.
func CombinedContent(page crawler.PageRecord) string {
	var parts []string

	if page.MainHeading != "" {
		parts = append(parts, "Main Heading: "+page.MainHeading)
	}
	if page.MetaDescription != "" {
		parts = append(parts, "Description: "+page.MetaDescription)
	}
	for _, heading := range page.Headings {
		parts = append(parts, strings.Repeat("#", heading.Level)+" "+heading.Text)
	}
	parts = append(parts, page.Paragraphs...)
	for _, item := range page.ListItems {
		parts = append(parts, "• "+item)
	}

	return strings.Join(parts, "\n\n")
}

// prepareContent truncates content to the character budget, then chunks it
// down further if it would still exceed the model's token budget.
func prepareContent(content string, maxChars int) string {
	runes := []rune(content)
	if len(runes) > maxChars {
		content = string(runes[:maxChars])
	}

	if CountTokens(content) > maxPromptTokens {
		chunks, err := ChunkText(content, maxPromptTokens, 0)
		if err == nil && len(chunks) > 0 {
			content = chunks[0]
		}
	}

	return content
}

func buildPrompt(content string, pageURL string, title string) string {
	return fmt.Sprintf(`Analyze the following web page content and create a structured knowledge base entry for an automated chatbot.

URL: %s
Title: %s
Content: %s

Provide a JSON response with the following structure:
{
    "summary": "A concise summary of the page content (2-3 sentences)",
    "key_topics": ["topic1", "topic2", "topic3"],
    "faq_questions": [
        {
            "question": "A potential FAQ question based on the content",
            "answer": "A direct answer from the content"
        }
    ],
    "important_facts": ["fact1", "fact2", "fact3"],
    "keywords": ["keyword1", "keyword2", "keyword3"],
    "content_type": "article|product|service|help|about|contact|other",
    "relevance_score": 0.8
}

Focus on creating useful FAQ questions and answers that would help users find information quickly.
Make sure all answers are directly derived from the provided content.`, pageURL, title, content)
}
