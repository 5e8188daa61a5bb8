// Package trends gathers the external signals that feed the scoring trend
// bonus: search interest, real-time events and publishing-platform keywords.
// Every source is best-effort; a failure degrades to a neutral signal and
// never propagates into the research pipeline.
package trends

import (
	"context"

	"niche-research/models"
)

// TrendDataSource reports search-interest data for a niche.
type TrendDataSource interface {
	SearchInterest(ctx context.Context, niche string) (models.SearchInterest, error)
}

// EventDataSource detects current events and trending topics that could
// boost a niche.
type EventDataSource interface {
	DetectEvents(ctx context.Context, niche string) ([]string, error)
}

// PlatformTrendSource reports keywords currently trending on the publishing
// platform.
type PlatformTrendSource interface {
	TrendingKeywords(ctx context.Context, niche string) ([]string, error)
}
