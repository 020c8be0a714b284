package enrich

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON pulls the JSON object out of a model completion. Models wrap
// their output in markdown fences or prose often enough that this has to be
// best-effort: fenced block first, then outermost braces, then the raw text.
func ExtractJSON(completion string) string {
	completion = strings.TrimSpace(completion)

	if match := fencedJSON.FindStringSubmatch(completion); len(match) > 1 {
		return match[1]
	}

	start := strings.Index(completion, "{")
	end := strings.LastIndex(completion, "}")
	if start != -1 && end > start {
		return completion[start : end+1]
	}

	return completion
}

// ParseEntry decodes a model completion into an Entry. The caller is
// expected to fall back to a generated entry when this fails.
func ParseEntry(completion string) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal([]byte(ExtractJSON(completion)), &entry); err != nil {
		return Entry{}, fmt.Errorf("decoding model response: %w", err)
	}

	normalize(&entry)
	return entry, nil
}

func normalize(entry *Entry) {
	if entry.ContentType == "" {
		entry.ContentType = "other"
	}
	if entry.RelevanceScore < 0 {
		entry.RelevanceScore = 0
	}
	if entry.RelevanceScore > 1 {
		entry.RelevanceScore = 1
	}
}
