package services

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"niche-research/models"
)

// ScoringConfig holds the tunables of the scoring model.
type ScoringConfig struct {
	// CommissionPct maps each platform to its affiliate commission rate.
	CommissionPct        map[models.Platform]float64
	DefaultCommissionPct float64
	// MinScore is the publish threshold; listings below it are dropped.
	MinScore float64
}

// DefaultScoringConfig returns the production commission table and publish
// threshold.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		CommissionPct: map[models.Platform]float64{
			models.PlatformAmazon:   12.0,
			models.PlatformMyntra:   15.0,
			models.PlatformMeesho:   18.0,
			models.PlatformFlipkart: 10.0,
			models.PlatformAjio:     14.0,
			models.PlatformNykaa:    12.0,
			models.PlatformFirstCry: 10.0,
		},
		DefaultCommissionPct: 10.0,
		MinScore:             70,
	}
}

// ScoringEngine scores, filters, deduplicates and ranks scraped listings.
// It is a pure function of its inputs: no I/O, no randomness, no hidden
// state, so scoring the same input twice yields identical output.
type ScoringEngine struct {
	cfg ScoringConfig
}

// NewScoringEngine creates an engine with the given config.
func NewScoringEngine(cfg ScoringConfig) *ScoringEngine {
	return &ScoringEngine{cfg: cfg}
}

// Score applies the additive point model to every listing and returns the
// surviving candidates sorted by score descending. Ties keep input order
// (stable sort). Listings that hit an exclusion rule or fall below the
// publish threshold are dropped.
func (e *ScoringEngine) Score(listings []*models.RawListing, niche string, tc models.TrendContext) []*models.ScoredListing {
	trendingKeywords := make([]string, 0, len(tc.PlatformTrendKeywords))
	for _, kw := range tc.PlatformTrendKeywords {
		trendingKeywords = append(trendingKeywords, strings.ToLower(kw))
	}

	var survivors []*models.ScoredListing
	for _, raw := range listings {
		if raw == nil || raw.Title == "" {
			continue
		}
		scored := e.scoreOne(raw, tc.SearchInterest.IsTrending, trendingKeywords)
		if scored.Excluded != models.ExcludeNone {
			continue
		}
		if scored.Score < e.cfg.MinScore {
			continue
		}
		survivors = append(survivors, scored)
	}

	survivors = dedupe(survivors)

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Score > survivors[j].Score
	})
	return survivors
}

func (e *ScoringEngine) scoreOne(raw *models.RawListing, nicheTrending bool, trendingKeywords []string) *models.ScoredListing {
	scored := &models.ScoredListing{
		RawListing: *raw,
		Excluded:   models.ExcludeNone,
	}

	var score float64

	// 1. Commission potential (up to 25 pts).
	pct, ok := e.cfg.CommissionPct[raw.Platform]
	if !ok {
		pct = e.cfg.DefaultCommissionPct
	}
	var price float64
	if raw.Price != nil {
		price = *raw.Price
	}
	scored.CommissionEstimate = round2(price * pct / 100)
	score += math.Min(25, pct*1.5)

	// 2. Rating (up to 20 pts). Absent contributes nothing and never
	// excludes; a present rating below 3.5 is a hard exclusion.
	if raw.Rating != nil {
		switch rating := *raw.Rating; {
		case rating >= 5.0:
			score += 20
		case rating >= 4.5:
			score += 18
		case rating >= 4.0:
			score += 14
		case rating >= 3.5:
			score += 7
		case rating > 0:
			scored.Excluded = models.ExcludeRatingTooLow
		}
	}

	// 3. Review volume (up to 20 pts). Zero or absent is exempt from the
	// too-few-reviews rule.
	if raw.ReviewCount != nil {
		switch reviews := *raw.ReviewCount; {
		case reviews >= 5000:
			score += 20
		case reviews >= 2000:
			score += 17
		case reviews >= 1000:
			score += 14
		case reviews >= 500:
			score += 10
		case reviews >= 100:
			score += 5
		case reviews > 0:
			scored.Excluded = models.ExcludeTooFewReviews
		}
	}

	// 4. Price band (up to 20 pts). The bands overlap; the 200–5000 test
	// runs first on purpose — preserved behavior, do not reorder.
	if raw.Price != nil {
		switch p := *raw.Price; {
		case p >= 200 && p <= 5000:
			score += 20
		case p >= 100 && p <= 10000:
			score += 12
		default:
			score += 4
		}
	}

	// 5. Stock status (up to 15 pts).
	switch raw.StockStatus {
	case models.StockInStock, "":
		score += 15
	case models.StockLimitedStock:
		score += 8
	default:
		scored.Excluded = models.ExcludeOutOfStock
	}

	// 6. Trend bonus (up to 25 pts).
	var bonus float64
	if nicheTrending {
		bonus += 10
	}
	titleLower := strings.ToLower(raw.Title)
	for _, kw := range trendingKeywords {
		if kw != "" && strings.Contains(titleLower, kw) {
			bonus += 8
			break
		}
	}
	if raw.Badges.Bestseller {
		bonus += 5
	}
	if raw.Badges.AmazonsChoice {
		bonus += 3
	}
	scored.TrendBonusApplied = bonus > 0
	score += bonus

	// Discount, when both figures are present and meaningful.
	if raw.Price != nil && raw.MRP != nil && *raw.MRP > *raw.Price {
		pct := round1((*raw.MRP - *raw.Price) / *raw.MRP * 100)
		scored.DiscountPct = &pct
	}

	scored.Score = math.Min(round1(score), 100)
	return scored
}

// dedupe removes same-platform duplicates. Identity is the normalized
// product URL (scheme, host and path — query stripped); the higher-scoring
// duplicate wins.
func dedupe(listings []*models.ScoredListing) []*models.ScoredListing {
	type key struct {
		platform models.Platform
		url      string
	}

	index := make(map[key]int, len(listings))
	out := make([]*models.ScoredListing, 0, len(listings))

	for _, l := range listings {
		k := key{platform: l.Platform, url: normalizeURL(l.URL)}
		if i, dup := index[k]; dup {
			if l.Score > out[i].Score {
				out[i] = l
			}
			continue
		}
		index[k] = len(out)
		out = append(out, l)
	}
	return out
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Scheme + "://" + u.Host + u.Path
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
