package trends

import (
	"context"

	"niche-research/models"
	"niche-research/utils"
)

// Aggregator wraps the three trend sources with failure degradation: a
// failed source yields its neutral value and a warning, never an error. The
// three lookups have no data dependency on each other.
type Aggregator struct {
	interest TrendDataSource
	events   EventDataSource
	platform PlatformTrendSource
	logger   *utils.Logger
}

// NewAggregator wires the three sources.
func NewAggregator(interest TrendDataSource, events EventDataSource, platform PlatformTrendSource, logger *utils.Logger) *Aggregator {
	return &Aggregator{
		interest: interest,
		events:   events,
		platform: platform,
		logger:   logger,
	}
}

// SearchInterest returns the niche's search-interest signal, or the neutral
// zero signal on failure.
func (a *Aggregator) SearchInterest(ctx context.Context, niche string) models.SearchInterest {
	si, err := a.interest.SearchInterest(ctx, niche)
	if err != nil {
		a.logger.Warn("[trends] search interest failed for %q: %v", niche, err)
		return models.SearchInterest{Niche: niche}
	}
	return si
}

// DetectEvents returns detected events, or an empty list on failure.
func (a *Aggregator) DetectEvents(ctx context.Context, niche string) []string {
	events, err := a.events.DetectEvents(ctx, niche)
	if err != nil {
		a.logger.Warn("[trends] event detection failed for %q: %v", niche, err)
		return nil
	}
	return events
}

// PlatformKeywords returns the publishing platform's trending keywords, or
// an empty set on failure.
func (a *Aggregator) PlatformKeywords(ctx context.Context, niche string) []string {
	keywords, err := a.platform.TrendingKeywords(ctx, niche)
	if err != nil {
		a.logger.Warn("[trends] platform trends failed for %q: %v", niche, err)
		return nil
	}
	return keywords
}
