package main

import (
	"context"
	"flag"
	"os"
	"time"

	"niche-research/api"
	"niche-research/config"
	"niche-research/fetch"
	"niche-research/models"
	"niche-research/progress"
	"niche-research/scraper"
	"niche-research/services"
	"niche-research/storage"
	"niche-research/trends"
	"niche-research/utils"
)

func main() {
	niche := flag.String("niche", "", "run a single research pass for this niche and exit")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.LogDebug)

	logger.Info("=== Niche Research System starting ===")
	logger.Info("Config — workers: %d | items/page: %d | fetch attempts: %d | geo: %s",
		cfg.MaxWorkers, cfg.ItemsPerPage, cfg.FetchMaxAttempts, cfg.TrendsGeo)

	store, err := storage.NewPostgresStore(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	var rawWriter storage.RawListingWriter
	if cfg.RawCSVPath != "" {
		w, err := storage.NewCSVWriter(cfg.RawCSVPath)
		if err != nil {
			logger.Error("Failed to create raw CSV writer: %v", err)
			os.Exit(1)
		}
		defer w.Close()
		rawWriter = w
	}

	fetchCfg := fetch.Config{
		MaxAttempts:   cfg.FetchMaxAttempts,
		JitterMin:     time.Duration(cfg.FetchJitterMinSec) * time.Second,
		JitterMax:     time.Duration(cfg.FetchJitterMaxSec) * time.Second,
		AttemptDelays: fetch.DefaultConfig().AttemptDelays,
		Cooldown:      time.Duration(cfg.FetchCooldownSec) * time.Second,
		Timeout:       time.Duration(cfg.FetchTimeoutSec) * time.Second,
	}

	var fetcher fetch.Fetcher = fetch.NewRateLimitedFetcher(fetchCfg, logger)
	if cfg.UseBrowserFetcher {
		logger.Info("Browser-backed fetching enabled")
		fetcher = fetch.NewBrowserFetcher(cfg.ChromeBin, logger)
	}

	adapters := scraper.NewRegistry(fetcher, scraper.Options{
		MaxItems: cfg.ItemsPerPage,
		Logger:   logger,
	})
	selector := scraper.NewSelector(scraper.DefaultSelectorConfig())
	pool := scraper.NewPool(adapters, selector, cfg.MaxWorkers, logger)

	aggregator := trends.NewAggregator(
		trends.NewGoogleTrendsSource(cfg.TrendsGeo),
		trends.NewWebEventSource(fetcher, cfg.TrendsRegion, cfg.TrendsGeo, logger),
		trends.NewPinterestTrendSource(fetcher, logger),
		logger,
	)

	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	hub := progress.NewHub()
	insights := services.NewInsightService(logger)

	orch := services.NewOrchestrator(pool, aggregator, engine, store, rawWriter, hub, logger)

	if *niche != "" {
		runOnce(orch, store, insights, logger, *niche)
		return
	}

	server := api.NewServer(orch, store, hub, insights, logger)
	if err := server.Run(cfg.ListenAddr); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}

// runOnce executes one synchronous research pass and prints the report.
func runOnce(
	orch *services.Orchestrator,
	store *storage.PostgresStore,
	insights *services.InsightService,
	logger *utils.Logger,
	niche string,
) {
	run, err := orch.Execute(context.Background(), niche)
	if err != nil {
		logger.Error("Research failed to start: %v", err)
		os.Exit(1)
	}
	if run.Status == models.RunFailed {
		logger.Error("Research run %s failed: %s", run.ID, run.ErrorLog)
		os.Exit(1)
	}

	listings, err := store.ListingsForRun(run.ID)
	if err != nil {
		logger.Error("Failed to load results: %v", err)
		os.Exit(1)
	}

	insights.Print(insights.Generate(niche, listings))
	logger.Info("Done. Run %s found %d products.", run.ID, run.ProductsFound)
}
