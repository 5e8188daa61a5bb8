package scraper

import (
	"context"
	"sync"

	"niche-research/models"
	"niche-research/utils"
)

// Pool runs the selected platform adapters concurrently with a bounded
// worker budget. Platform tasks are fully isolated: a failed or panicking
// adapter contributes zero results and never affects its siblings.
type Pool struct {
	adapters map[models.Platform]Adapter
	selector *Selector
	workers  int
	logger   *utils.Logger
}

// NewPool creates a scraper pool. workers defaults to 4 when non-positive.
func NewPool(adapters map[models.Platform]Adapter, selector *Selector, workers int, logger *utils.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{
		adapters: adapters,
		selector: selector,
		workers:  workers,
		logger:   logger,
	}
}

// ScrapeAll scrapes every platform selected for the niche and concatenates
// the results. Order across platforms is not guaranteed; order within one
// platform matches adapter emission order.
func (p *Pool) ScrapeAll(ctx context.Context, niche string) []*models.RawListing {
	platforms := p.selector.Select(niche)
	p.logger.Info("[pool] Platforms for %q: %v", niche, platforms)

	wp := utils.NewWorkerPool(p.workers, 0)

	var mu sync.Mutex
	var all []*models.RawListing

	for _, platform := range platforms {
		adapter, ok := p.adapters[platform]
		if !ok {
			continue
		}
		platform := platform

		wp.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("[pool] %s adapter panicked: %v", platform, r)
				}
			}()

			listings, err := adapter.Scrape(ctx, niche)
			if err != nil {
				p.logger.Warn("[pool] %s scrape failed: %v", platform, err)
				return
			}
			p.logger.Info("[pool] %s: %d products scraped", platform, len(listings))

			mu.Lock()
			all = append(all, listings...)
			mu.Unlock()
		})
	}

	wp.Wait()
	return all
}
