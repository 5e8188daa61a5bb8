package scraper

import (
	"strings"

	"niche-research/models"
)

// SelectorConfig holds the keyword tables driving platform selection. Tests
// inject smaller tables; production uses DefaultSelectorConfig.
type SelectorConfig struct {
	FashionKeywords []string
	BeautyKeywords  []string
	BabyKeywords    []string
}

// DefaultSelectorConfig returns the stock keyword tables.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		FashionKeywords: []string{
			"clothing", "dress", "saree", "fashion", "wear", "kurta",
			"shirt", "jeans", "lehenga", "tops", "outfit", "apparel",
		},
		BeautyKeywords: []string{
			"beauty", "makeup", "skincare", "cosmetic", "lipstick",
			"moisturizer", "serum", "sunscreen", "hair care", "perfume",
		},
		BabyKeywords: []string{
			"baby", "infant", "toddler", "kids", "children", "newborn",
		},
	}
}

// Selector maps a niche keyword to the ordered set of platforms worth
// scraping.
type Selector struct {
	cfg SelectorConfig
}

// NewSelector creates a Selector with the given keyword tables.
func NewSelector(cfg SelectorConfig) *Selector {
	return &Selector{cfg: cfg}
}

// Select returns the platforms for a niche: Amazon and Flipkart always,
// category-specific marketplaces on keyword match, and Meesho as the
// catch-all. First-seen order is preserved and duplicates removed; the
// ordering only matters for log readability.
func (s *Selector) Select(niche string) []models.Platform {
	nicheLower := strings.ToLower(niche)

	platforms := []models.Platform{models.PlatformAmazon, models.PlatformFlipkart}

	if matchesAny(nicheLower, s.cfg.FashionKeywords) {
		platforms = append(platforms, models.PlatformMyntra, models.PlatformMeesho, models.PlatformAjio)
	}
	if matchesAny(nicheLower, s.cfg.BeautyKeywords) {
		platforms = append(platforms, models.PlatformNykaa, models.PlatformMyntra, models.PlatformMeesho)
	}
	if matchesAny(nicheLower, s.cfg.BabyKeywords) {
		platforms = append(platforms, models.PlatformFirstCry, models.PlatformMeesho)
	}
	platforms = append(platforms, models.PlatformMeesho)

	seen := make(map[models.Platform]struct{}, len(platforms))
	out := platforms[:0]
	for _, p := range platforms {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func matchesAny(niche string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(niche, kw) {
			return true
		}
	}
	return false
}
