package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kbcrawl/kbcrawl/app/config"
	"github.com/kbcrawl/kbcrawl/app/crawler"
	"github.com/kbcrawl/kbcrawl/app/enrich"
	"github.com/kbcrawl/kbcrawl/app/fetcher"
	"github.com/kbcrawl/kbcrawl/app/kb"
	"github.com/kbcrawl/kbcrawl/app/sqlgen"
	slogctx "github.com/veqryn/slog-context"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the configuration file")
	basic := flag.Bool("basic", false, "skip LLM enrichment even if enabled in the config")
	flag.Parse()

	handler := slogctx.NewHandler(slog.NewTextHandler(os.Stderr, nil), nil)
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startURL := flag.Arg(0)
	if startURL == "" {
		fmt.Fprintf(os.Stderr, "usage: %v [flags] <start-url>\n", os.Args[0])
		os.Exit(2)
	}

	if parsed, err := url.Parse(startURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		slog.Error("Start URL must be a fully-qualified http(s) URL", "url", startURL)
		os.Exit(1)
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		slog.Error("Failed to read configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx = slogctx.Append(ctx, "website", startURL)

	// Step 1: crawl the site.
	scraper := &crawler.Scraper{
		Fetcher:          fetcher.New(cfg.Scrape.UserAgent),
		MaxPages:         cfg.Scrape.MaxPages,
		MinContentLength: cfg.Scrape.MinContentLength,
		Delay:            cfg.RequestDelay(),
		SeedSitemap:      cfg.Scrape.SitemapSeed,
		DiscoverFeeds:    cfg.Scrape.FeedDiscovery,
	}

	pages, err := scraper.ScrapeWebsite(ctx, startURL)
	if err != nil {
		slog.Error("Crawl failed", "error", err)
		os.Exit(1)
	}
	if len(pages) == 0 {
		slog.Error("No pages were scraped; check the URL and try again")
		os.Exit(1)
	}

	// Step 2: enrich each page, or fall back to basic entries.
	var entries []enrich.Entry
	if cfg.LLM.Enabled && !*basic {
		processor, err := enrich.New(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.APIKey, cfg.Scrape.MaxContentLength, cfg.LLMSpacing())
		if err != nil {
			slog.Error("Failed to set up LLM", "error", err)
			os.Exit(1)
		}
		entries = processor.Process(ctx, pages)
	} else {
		slogctx.Info(ctx, "LLM enrichment disabled, generating basic entries")
		for _, page := range pages {
			entries = append(entries, enrich.Basic(page))
		}
	}

	// Step 3: build the knowledge base document.
	document := kb.Build(entries, startURL)

	// Step 4: persist the knowledge base and the chatbot projection.
	kbPath := filepath.Join(cfg.Output.Dir, cfg.Output.KnowledgeBaseFile)
	if err := kb.SaveJSON(kbPath, document); err != nil {
		slog.Error("Failed to save knowledge base", "error", err)
		os.Exit(1)
	}

	chatbot := kb.Chatbot(document)
	chatbotPath := filepath.Join(cfg.Output.Dir, cfg.Output.ChatbotFile)
	if err := kb.SaveJSON(chatbotPath, chatbot); err != nil {
		slog.Error("Failed to save chatbot data", "error", err)
		os.Exit(1)
	}

	// Step 5: emit SQL inserts when a business ID is configured.
	if cfg.Output.BusinessID != "" {
		statements := sqlgen.Inserts(chatbot.TrainingData, cfg.Output.BusinessID)
		sqlPath := filepath.Join(cfg.Output.Dir, cfg.Output.SQLFile)
		if err := sqlgen.Save(sqlPath, statements); err != nil {
			slog.Error("Failed to save SQL inserts", "error", err)
			os.Exit(1)
		}
		slogctx.Info(ctx, "Saved SQL inserts", "path", sqlPath, "statements", len(statements))
	}

	slogctx.Info(ctx, "Knowledge base generated",
		"pages", document.Metadata.TotalPages,
		"faqs", document.Metadata.TotalFAQs,
		"keywords", document.Metadata.TotalKeywords,
		"knowledgeBase", kbPath,
		"chatbotData", chatbotPath)
}
