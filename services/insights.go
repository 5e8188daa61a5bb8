package services

import (
	"fmt"
	"sort"
	"strings"

	"niche-research/models"
	"niche-research/utils"
)

// RunReport summarizes the scored products of one research run.
type RunReport struct {
	Niche              string                  `json:"niche"`
	TotalProducts      int                     `json:"total_products"`
	ProductsByPlatform map[models.Platform]int `json:"products_by_platform"`
	AverageScore       float64                 `json:"average_score"`
	TopScore           float64                 `json:"top_score"`
	BestProduct        *models.ScoredListing   `json:"best_product,omitempty"`
	AverageCommission  float64                 `json:"average_commission"`
	TrendBoosted       int                     `json:"trend_boosted"`
	TopProducts        []*models.ScoredListing `json:"top_products,omitempty"`
}

// NicheCount pairs a niche with its completed-run product total.
type NicheCount struct {
	Niche    string `json:"niche"`
	Products int    `json:"products"`
	Runs     int    `json:"runs"`
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds the report for one run's scored products.
func (s *InsightService) Generate(niche string, listings []*models.ScoredListing) *RunReport {
	report := &RunReport{
		Niche:              niche,
		ProductsByPlatform: make(map[models.Platform]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalProducts = len(listings)

	var scoreTotal, commissionTotal float64
	for _, l := range listings {
		report.ProductsByPlatform[l.Platform]++
		scoreTotal += l.Score
		commissionTotal += l.CommissionEstimate
		if l.TrendBonusApplied {
			report.TrendBoosted++
		}
		if l.Score > report.TopScore {
			report.TopScore = l.Score
			report.BestProduct = l
		}
	}
	report.AverageScore = round1(scoreTotal / float64(len(listings)))
	report.AverageCommission = round2(commissionTotal / float64(len(listings)))

	ranked := make([]*models.ScoredListing, len(listings))
	copy(ranked, listings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	report.TopProducts = ranked

	return report
}

// TopNiches ranks niches by products found across completed runs.
func (s *InsightService) TopNiches(runs []*models.ResearchRun, limit int) []NicheCount {
	if limit <= 0 {
		limit = 10
	}

	byNiche := make(map[string]*NicheCount)
	for _, r := range runs {
		if r.Status != models.RunCompleted {
			continue
		}
		nc, ok := byNiche[r.Niche]
		if !ok {
			nc = &NicheCount{Niche: r.Niche}
			byNiche[r.Niche] = nc
		}
		nc.Products += r.ProductsFound
		nc.Runs++
	}

	out := make([]NicheCount, 0, len(byNiche))
	for _, nc := range byNiche {
		out = append(out, *nc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Products != out[j].Products {
			return out[i].Products > out[j].Products
		}
		return out[i].Niche < out[j].Niche
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Print renders the report to stdout for the one-shot CLI mode.
func (s *InsightService) Print(r *RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 NICHE RESEARCH: %s\033[0m\n", strings.ToUpper(r.Niche))
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Qualified products : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Printf("  Trend boosted      : \033[1m%d\033[0m\n", r.TrendBoosted)
	if r.TotalProducts > 0 {
		fmt.Printf("  Average score      : \033[1;32m%.1f\033[0m\n", r.AverageScore)
		fmt.Printf("  Avg commission     : \033[1;32m₹%.2f\033[0m\n", r.AverageCommission)
	}
	fmt.Println()

	if r.BestProduct != nil {
		fmt.Printf("\033[1;33m  Best Pick\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.BestProduct.Title, 50))
		fmt.Printf("  Platform : %s\n", r.BestProduct.Platform)
		fmt.Printf("  Score    : \033[1;31m%.1f\033[0m\n", r.BestProduct.Score)
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Top 5 Products\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopProducts) == 0 {
		fmt.Printf("  No qualifying products found\n")
	} else {
		for i, l := range r.TopProducts {
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.1f\033[0m  %s\n",
				i+1, truncate(l.Title, 38), l.Score, l.Platform)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Products by Platform\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ProductsByPlatform) == 0 {
		fmt.Printf("  No platform data\n")
	} else {
		type platCount struct {
			platform models.Platform
			count    int
		}
		var plats []platCount
		for p, cnt := range r.ProductsByPlatform {
			plats = append(plats, platCount{p, cnt})
		}
		sort.Slice(plats, func(i, j int) bool {
			return plats[i].count > plats[j].count
		})
		for _, pc := range plats {
			bar := strings.Repeat("█", pc.count)
			fmt.Printf("  %-30s %s (%d)\n", pc.platform, bar, pc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens s to max characters. It counts runes, not bytes, so
// Devanagari and other multibyte titles are never cut mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
