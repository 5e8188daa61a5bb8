package services

import (
	"context"
	"fmt"
	"time"

	"niche-research/models"
	"niche-research/progress"
	"niche-research/storage"
	"niche-research/utils"
)

// ListingScraper is the part of the scraper pool the orchestrator uses.
type ListingScraper interface {
	ScrapeAll(ctx context.Context, niche string) []*models.RawListing
}

// TrendAggregator is the degraded-on-failure facade over the trend sources.
type TrendAggregator interface {
	SearchInterest(ctx context.Context, niche string) models.SearchInterest
	DetectEvents(ctx context.Context, niche string) []string
	PlatformKeywords(ctx context.Context, niche string) []string
}

const maxErrorLogLen = 500

// Orchestrator drives a full research run: trend gathering, scraping,
// scoring and persistence, reporting progress along the way.
type Orchestrator struct {
	scraper ListingScraper
	trends  TrendAggregator
	engine  *ScoringEngine
	sink    storage.PersistenceSink
	raw     storage.RawListingWriter // nil disables the raw dump
	hub     *progress.Hub
	logger  *utils.Logger
}

// NewOrchestrator wires the pipeline stages together. raw may be nil.
func NewOrchestrator(
	scraper ListingScraper,
	trends TrendAggregator,
	engine *ScoringEngine,
	sink storage.PersistenceSink,
	raw storage.RawListingWriter,
	hub *progress.Hub,
	logger *utils.Logger,
) *Orchestrator {
	return &Orchestrator{
		scraper: scraper,
		trends:  trends,
		engine:  engine,
		sink:    sink,
		raw:     raw,
		hub:     hub,
		logger:  logger,
	}
}

// StartRun registers a new run and executes it on a background goroutine.
// The returned run is in the running state; progress is published to the
// hub under the run id. The pipeline outlives the caller: cancellation of
// ctx (an HTTP request finishing, typically) does not stop the run, and the
// returned snapshot is the caller's own, untouched by the pipeline.
func (o *Orchestrator) StartRun(ctx context.Context, niche string) (*models.ResearchRun, error) {
	run := models.NewResearchRun(niche)
	if err := o.sink.CreateRun(run); err != nil {
		return nil, fmt.Errorf("orchestrator: create run: %w", err)
	}

	snapshot := *run
	go o.execute(context.WithoutCancel(ctx), run)
	return &snapshot, nil
}

// Execute runs the pipeline synchronously. Used by the one-shot CLI mode;
// StartRun wraps it for the API.
func (o *Orchestrator) Execute(ctx context.Context, niche string) (*models.ResearchRun, error) {
	run := models.NewResearchRun(niche)
	if err := o.sink.CreateRun(run); err != nil {
		return nil, fmt.Errorf("orchestrator: create run: %w", err)
	}
	o.execute(ctx, run)
	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *models.ResearchRun) {
	defer func() {
		if r := recover(); r != nil {
			o.fail(run, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	start := time.Now()
	o.logger.Info("[research] Run %s started for niche %q", run.ID, run.Niche)
	o.publish(run.ID, "starting research", 5, nil)

	si := o.trends.SearchInterest(ctx, run.Niche)
	o.publish(run.ID, "analyzing search interest", 15, map[string]any{
		"interest_pct": si.InterestPct,
		"is_trending":  si.IsTrending,
	})

	events := o.trends.DetectEvents(ctx, run.Niche)
	o.publish(run.ID, "detecting events", 25, map[string]any{"events": len(events)})

	keywords := o.trends.PlatformKeywords(ctx, run.Niche)
	o.publish(run.ID, "collecting platform trends", 35, map[string]any{"keywords": len(keywords)})

	run.Trends = models.TrendContext{
		SearchInterest:        si,
		RealtimeEvents:        events,
		PlatformTrendKeywords: keywords,
	}

	raw := o.scraper.ScrapeAll(ctx, run.Niche)
	o.publish(run.ID, "scraping marketplaces", 60, map[string]any{"raw_listings": len(raw)})

	if o.raw != nil && len(raw) > 0 {
		if err := o.raw.WriteRaw(raw); err != nil {
			o.logger.Warn("[research] raw dump failed: %v", err)
		}
	}

	scored := o.engine.Score(raw, run.Niche, run.Trends)
	o.publish(run.ID, "scoring products", 75, map[string]any{"qualified": len(scored)})

	for _, l := range scored {
		if err := o.sink.SaveListing(run.ID, l); err != nil {
			o.fail(run, fmt.Errorf("save listing %q: %w", l.URL, err))
			return
		}
	}
	o.publish(run.ID, "saving results", 85, nil)

	o.publish(run.ID, "finalizing", 92, nil)

	run.Status = models.RunCompleted
	run.ProductsFound = len(scored)
	now := time.Now().UTC()
	run.CompletedAt = &now
	if err := o.sink.CompleteRun(run); err != nil {
		o.logger.Error("[research] Run %s: completion write failed: %v", run.ID, err)
	}

	o.publish(run.ID, "completed", 100, map[string]any{"products_found": len(scored)})
	o.hub.CloseRun(run.ID)
	o.logger.Info("[research] Run %s completed: %d products in %s",
		run.ID, len(scored), time.Since(start).Round(time.Millisecond))
}

func (o *Orchestrator) fail(run *models.ResearchRun, cause error) {
	o.logger.Error("[research] Run %s failed: %v", run.ID, cause)

	run.Status = models.RunFailed
	run.ErrorLog = truncateError(cause.Error())
	now := time.Now().UTC()
	run.CompletedAt = &now
	if err := o.sink.CompleteRun(run); err != nil {
		o.logger.Error("[research] Run %s: failure write failed: %v", run.ID, err)
	}

	o.publish(run.ID, "failed", 100, map[string]any{"error": run.ErrorLog})
	o.hub.CloseRun(run.ID)
}

func (o *Orchestrator) publish(runID, step string, pct int, extra map[string]any) {
	o.hub.Publish(progress.Event{RunID: runID, Step: step, Pct: pct, Extra: extra})
}

func truncateError(msg string) string {
	if len(msg) > maxErrorLogLen {
		return msg[:maxErrorLogLen]
	}
	return msg
}
