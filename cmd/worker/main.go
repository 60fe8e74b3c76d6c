// Package main provides the worker command that fetches, normalizes and
// publishes the edition catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"editiongen/internal/config"
	"editiongen/internal/fetcher"
	"editiongen/internal/gemini"
	"editiongen/internal/logger"
	"editiongen/internal/pipeline"
	"editiongen/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	skipFetch := flag.Bool("skip-fetch", false, "Reprocess the prior snapshot instead of fetching")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}

	log := logger.New(level, cfg.Logging.Format)

	apiKey := cfg.Gemini.APIKey()
	if apiKey == "" {
		log.Error(fmt.Sprintf("❌ API key missing: set %s", cfg.Gemini.APIKeyEnv))
		os.Exit(1)
	}

	storage, err := store.New(cfg.Output)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Could not prepare output directory: %v", err))
		os.Exit(1)
	}

	log.Info("🚀 Starting edition catalog worker")
	log.Info(fmt.Sprintf("📍 Model: %s", cfg.Gemini.Model))
	log.Info(fmt.Sprintf("🎯 Output: %s", cfg.Output.Dir))

	client := gemini.NewClient(cfg.Gemini.Model, apiKey, cfg.Gemini.Timeout(), log)
	gateway := gemini.NewGateway(client, cfg.Gemini.MaxAttempts, cfg.Gemini.Cooldown(), log)
	feed := fetcher.New(cfg.Source, log)

	runner := pipeline.NewRunner(feed, gateway, storage, cfg, log)

	startTime := time.Now()

	outcome, err := runner.Run(context.Background(), *skipFetch)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Run failed: %v", err))
	}

	switch outcome {
	case pipeline.OutcomeProcessed:
		log.Info(fmt.Sprintf("✅ Catalog published in %v", time.Since(startTime).Round(time.Millisecond)))
	case pipeline.OutcomeNoChange:
		log.Info("✅ No changes detected, catalog left as-is")
	}

	os.Exit(outcome.ExitCode())
}
