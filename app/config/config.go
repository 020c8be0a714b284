package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scrape struct {
		// The maximum amount of pages that will be recorded for one crawl.
		// Failed or skipped pages do not count toward this limit.
		MaxPages int `yaml:"maxPages"`
		// The pause between successive requests, in seconds.
		Delay float64 `yaml:"delay"`
		// Pages whose extracted text is shorter than this are discarded.
		MinContentLength int `yaml:"minContentLength"`
		// Content passed to the LLM is truncated to this many characters.
		MaxContentLength int    `yaml:"maxContentLength"`
		UserAgent        string `yaml:"userAgent"`
		// Seed the crawl frontier from the site's sitemap.xml.
		SitemapSeed bool `yaml:"sitemapSeed"`
		// Parse advertised RSS/Atom feeds for additional in-scope URLs.
		FeedDiscovery bool `yaml:"feedDiscovery"`
	}
	LLM struct {
		Enabled bool
		// Base URL of an OpenAI-compatible API.
		BaseURL string `yaml:"baseUrl"`
		Model   string
		APIKey  string `yaml:"apiKey"`
		// Minimum spacing between successive LLM calls, in seconds.
		RateLimit float64 `yaml:"rateLimit"`
	}
	Output struct {
		Dir               string
		KnowledgeBaseFile string `yaml:"knowledgeBaseFile"`
		ChatbotFile       string `yaml:"chatbotFile"`
		SQLFile           string `yaml:"sqlFile"`
		// Identifier written into every generated SQL insert. SQL output is
		// skipped when this is empty.
		BusinessID string `yaml:"businessId"`
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func Read(path string) (*Config, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Defaults()
	err = yaml.Unmarshal(data, config)

	if err != nil {
		return nil, err
	}

	return config, nil
}

func Defaults() *Config {
	config := &Config{}
	config.Scrape.MaxPages = 50
	config.Scrape.Delay = 1.0
	config.Scrape.MinContentLength = 100
	config.Scrape.MaxContentLength = 5000
	config.Scrape.UserAgent = defaultUserAgent
	config.LLM.BaseURL = "https://api.openai.com/v1"
	config.LLM.Model = "gpt-4o-mini"
	config.LLM.RateLimit = 1.0
	config.Output.Dir = "knowledge_base"
	config.Output.KnowledgeBaseFile = "knowledge_base.json"
	config.Output.ChatbotFile = "chatbot_data.json"
	config.Output.SQLFile = "knowledge_base_inserts.sql"
	return config
}

func (c *Config) Validate() error {
	if c.Scrape.MaxPages <= 0 {
		return fmt.Errorf("scrape.maxPages must be positive, got %v", c.Scrape.MaxPages)
	}
	if c.Scrape.Delay < 0 {
		return fmt.Errorf("scrape.delay must not be negative, got %v", c.Scrape.Delay)
	}
	if c.Scrape.MinContentLength < 0 {
		return fmt.Errorf("scrape.minContentLength must not be negative, got %v", c.Scrape.MinContentLength)
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.apiKey is required when llm.enabled is true")
	}
	return nil
}

// RequestDelay converts the configured delay into a time.Duration.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Scrape.Delay * float64(time.Second))
}

// LLMSpacing converts the configured LLM rate limit into a time.Duration.
func (c *Config) LLMSpacing() time.Duration {
	return time.Duration(c.LLM.RateLimit * float64(time.Second))
}
