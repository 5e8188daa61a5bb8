package trends

import (
	"context"
	"fmt"
	"strings"

	"github.com/groovili/gogtrends"

	"niche-research/models"
)

// trendingThresholdPct is the average-interest cutoff above which a niche
// counts as trending.
const trendingThresholdPct = 40

// breakoutValue is the rising-query growth figure treated as a breakout.
const breakoutValue = 5000

// GoogleTrendsSource derives search interest for a niche from Google Trends
// over a 7-day window scoped to the configured region.
type GoogleTrendsSource struct {
	geo  string
	lang string
}

// NewGoogleTrendsSource creates a source for the given geo code, e.g. "IN".
func NewGoogleTrendsSource(geo string) *GoogleTrendsSource {
	return &GoogleTrendsSource{geo: geo, lang: "EN"}
}

// SearchInterest returns the average interest percentage plus rising and
// breakout queries for the niche.
func (g *GoogleTrendsSource) SearchInterest(ctx context.Context, niche string) (models.SearchInterest, error) {
	widgets, err := gogtrends.Explore(ctx, &gogtrends.ExploreRequest{
		ComparisonItems: []*gogtrends.ComparisonItem{
			{Keyword: niche, Geo: g.geo, Time: "now 7-d"},
		},
		Category: 0,
		Property: "",
	}, g.lang)
	if err != nil {
		return models.SearchInterest{}, fmt.Errorf("trends: explore %q: %w", niche, err)
	}

	result := models.SearchInterest{Niche: niche, Available: true}

	for _, w := range widgets {
		switch {
		case w.ID == "TIMESERIES":
			series, err := gogtrends.InterestOverTime(ctx, w, g.lang)
			if err != nil {
				return models.SearchInterest{}, fmt.Errorf("trends: interest over time: %w", err)
			}
			result.InterestPct = averageInterest(series)

		case strings.Contains(w.ID, "RELATED_QUERIES"):
			ranked, err := gogtrends.Related(ctx, w, g.lang)
			if err != nil {
				// Rising queries are a nice-to-have on top of the
				// interest average; keep what we already derived.
				continue
			}
			for i, kw := range ranked {
				if i >= 10 {
					break
				}
				result.RisingQueries = append(result.RisingQueries, kw.Query)
				if kw.Value >= breakoutValue {
					result.BreakoutQueries = append(result.BreakoutQueries, kw.Query)
				}
			}
		}
	}

	result.IsTrending = result.InterestPct > trendingThresholdPct
	return result, nil
}

func averageInterest(series []*gogtrends.Timeline) int {
	var sum, n int
	for _, point := range series {
		if len(point.Value) == 0 {
			continue
		}
		sum += point.Value[0]
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
