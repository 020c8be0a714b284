package enrich

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/kbcrawl/kbcrawl/app/crawler"
)

// Fallback builds a knowledge base entry from the raw page content alone,
// used whenever the model call fails or returns something unparseable.
func Fallback(content string, pageURL string, title string) Entry {
	keywords := ExtractKeywords(content, 10)

	topics := keywords
	if len(topics) > 5 {
		topics = topics[:5]
	}

	return Entry{
		URL:     pageURL,
		Title:   title,
		Summary: fmt.Sprintf("Content from %s - %s...", title, truncate(content, 200)),
		FAQQuestions: []FAQ{
			{Question: fmt.Sprintf("What is %s?", title), Answer: ellipsize(content, 300)},
		},
		KeyTopics:        topics,
		ImportantFacts:   []string{ellipsize(content, 200)},
		Keywords:         keywords,
		ContentType:      "other",
		RelevanceScore:   0.5,
		ProcessedAt:      time.Now(),
		ProcessingMethod: "fallback",
	}
}

// Basic builds an entry without any model involvement, for runs with
// enrichment disabled. The reader-view excerpt stands in for the summary
// when one was found.
func Basic(page crawler.PageRecord) Entry {
	summary := page.Excerpt
	if summary == "" {
		summary = ellipsize(page.Content, 500)
	}

	return Entry{
		URL:     page.URL,
		Title:   page.Title,
		Summary: summary,
		FAQQuestions: []FAQ{
			{Question: fmt.Sprintf("What is %s?", page.Title), Answer: ellipsize(page.Content, 300)},
		},
		KeyTopics:        []string{},
		ImportantFacts:   []string{ellipsize(page.Content, 200)},
		Keywords:         []string{},
		ContentType:      "other",
		RelevanceScore:   0.5,
		TokenCount:       CountTokens(page.Content),
		ProcessedAt:      page.ScrapedAt,
		ProcessingMethod: "basic",
	}
}

// ExtractKeywords returns the most frequent words of the content, earliest
// first occurrence winning ties. Only alphabetic words longer than 3
// characters count.
func ExtractKeywords(content string, limit int) []string {
	counts := map[string]int{}
	var order []string

	for _, word := range strings.Fields(strings.ToLower(content)) {
		if len([]rune(word)) <= 3 || !alphabetic(word) {
			continue
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word]++
	}

	// Stable sort keeps first-occurrence order between equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func alphabetic(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(word) > 0
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

// ellipsize truncates and appends "..." only when something was cut.
func ellipsize(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}
