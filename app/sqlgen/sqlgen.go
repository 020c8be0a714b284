// Package sqlgen converts chatbot training pairs into SQL insert statements
// for a knowledge_base table, classifying each pair into a category with a
// keyword heuristic.
package sqlgen

import (
	"fmt"
	"os"
	"strings"

	"github.com/kbcrawl/kbcrawl/app/kb"
)

var serviceKeywords = []string{"service", "offer", "provide", "available", "what do you", "what can you", "capabilities"}
var pricingKeywords = []string{"price", "cost", "fee", "charge", "how much", "expensive", "cheap", "budget"}
var contactKeywords = []string{"contact", "phone", "email", "address", "location", "where", "how to reach", "call"}
var supportKeywords = []string{"help", "support", "problem", "issue", "troubleshoot", "fix", "error", "not working"}
var policyKeywords = []string{"policy", "terms", "condition", "rule", "procedure", "process", "how to", "requirement"}

// Classify buckets a question/answer pair into one of the fixed categories.
// Service keywords are only matched against the question; everything else
// matches either side.
func Classify(question string, answer string) string {
	question = strings.ToLower(question)
	answer = strings.ToLower(answer)

	containsAny := func(s string, keywords []string) bool {
		for _, keyword := range keywords {
			if strings.Contains(s, keyword) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny(question, serviceKeywords):
		return "services"
	case containsAny(question, pricingKeywords) || containsAny(answer, pricingKeywords):
		return "pricing"
	case containsAny(question, contactKeywords) || containsAny(answer, contactKeywords):
		return "contact"
	case containsAny(question, supportKeywords) || containsAny(answer, supportKeywords):
		return "support"
	case containsAny(question, policyKeywords) || containsAny(answer, policyKeywords):
		return "policies"
	}
	return "general"
}

// EscapeString doubles single quotes for use inside a SQL string literal.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Inserts generates one insert statement per training pair. Pairs with an
// empty question or answer are skipped.
func Inserts(pairs []kb.TrainingPair, businessID string) []string {
	statements := []string{}

	for _, pair := range pairs {
		question := strings.TrimSpace(pair.Text)
		answer := strings.TrimSpace(pair.Response)
		if question == "" || answer == "" {
			continue
		}

		category := Classify(question, answer)
		statements = append(statements, fmt.Sprintf(
			"insert into knowledge_base (business_id, question, answer, category, priority)\nvalues\n('%s', '%s', '%s', '%s', 1);",
			EscapeString(businessID), EscapeString(question), EscapeString(answer), category,
		))
	}

	return statements
}

// Save writes the statements to a .sql file, blank-line separated.
func Save(path string, statements []string) error {
	var builder strings.Builder
	builder.WriteString("-- SQL INSERT statements for knowledge base\n")
	builder.WriteString("-- Generated from chatbot data\n\n")

	for _, statement := range statements {
		builder.WriteString(statement)
		builder.WriteString("\n\n")
	}

	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("writing %v: %w", path, err)
	}
	return nil
}
