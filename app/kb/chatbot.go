package kb

import (
	"fmt"
	"strings"
)

type TrainingPair struct {
	Intent   string `json:"intent"`
	Text     string `json:"text"`
	Response string `json:"response"`
}

// ChatbotData is the training-oriented projection of a knowledge base
// document. Contexts and Entities are reserved for downstream tooling.
type ChatbotData struct {
	Intents      []string          `json:"intents"`
	Responses    map[string]string `json:"responses"`
	Contexts     map[string]string `json:"contexts"`
	Entities     map[string]string `json:"entities"`
	TrainingData []TrainingPair    `json:"training_data"`
}

// Chatbot derives one training pair per FAQ entry plus one per page that has
// a summary. Intent names are deterministic but not deduplicated: a page URL
// that sanitizes to an existing intent name simply overwrites its response.
func Chatbot(doc *Document) *ChatbotData {
	data := &ChatbotData{
		Intents:      []string{},
		Responses:    map[string]string{},
		Contexts:     map[string]string{},
		Entities:     map[string]string{},
		TrainingData: []TrainingPair{},
	}

	for i, faq := range doc.FAQSection {
		intent := fmt.Sprintf("faq_%d", i+1)
		data.Intents = append(data.Intents, intent)
		data.Responses[intent] = faq.Answer
		data.TrainingData = append(data.TrainingData, TrainingPair{
			Intent:   intent,
			Text:     faq.Question,
			Response: faq.Answer,
		})
	}

	for _, page := range doc.Pages {
		if page.Summary == "" {
			continue
		}
		intent := "page_" + sanitizeIntent(page.URL)
		data.Intents = append(data.Intents, intent)
		data.Responses[intent] = page.Summary
		data.TrainingData = append(data.TrainingData, TrainingPair{
			Intent:   intent,
			Text:     page.Title,
			Response: page.Summary,
		})
	}

	return data
}

func sanitizeIntent(pageURL string) string {
	return strings.NewReplacer("/", "_", ":", "_").Replace(pageURL)
}
