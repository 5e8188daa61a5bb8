package models

import "time"

// Platform identifies one of the supported marketplaces.
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformMyntra   Platform = "myntra"
	PlatformMeesho   Platform = "meesho"
	PlatformAjio     Platform = "ajio"
	PlatformNykaa    Platform = "nykaa"
	PlatformFirstCry Platform = "firstcry"
)

// StockStatus is the availability reported on a marketplace listing page.
// Scrapers default to StockInStock when the page does not say otherwise.
type StockStatus string

const (
	StockInStock      StockStatus = "in_stock"
	StockLimitedStock StockStatus = "limited_stock"
	StockOutOfStock   StockStatus = "out_of_stock"
)

// ExclusionReason is a terminal scoring verdict. A listing with a reason
// other than ExcludeNone never appears in final output.
type ExclusionReason string

const (
	ExcludeNone          ExclusionReason = "none"
	ExcludeRatingTooLow  ExclusionReason = "rating_too_low"
	ExcludeTooFewReviews ExclusionReason = "too_few_reviews"
	ExcludeOutOfStock    ExclusionReason = "out_of_stock"
)

// Badges holds Amazon-specific merchandising flags. Empty for every other
// platform.
type Badges struct {
	Bestseller    bool `json:"bestseller"`
	AmazonsChoice bool `json:"amazons_choice"`
	DealOfDay     bool `json:"deal_of_day"`
}

// RawListing is one scraped product before scoring. Optional numeric fields
// are pointers: nil means the marketplace page did not expose the value,
// which scoring treats differently from an explicit zero.
type RawListing struct {
	Title       string      `json:"title"`
	Platform    Platform    `json:"platform"`
	URL         string      `json:"url"`
	Price       *float64    `json:"price,omitempty"`
	MRP         *float64    `json:"mrp,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	ReviewCount *int        `json:"review_count,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	StockStatus StockStatus `json:"stock_status"`
	Badges      Badges      `json:"badges"`
	ASIN        string      `json:"asin,omitempty"`
	ScrapedAt   time.Time   `json:"scraped_at"`
}

// ScoredListing is a RawListing after the scoring engine has run.
type ScoredListing struct {
	RawListing

	// Score is in [0, 100], rounded to one decimal place.
	Score              float64         `json:"score"`
	CommissionEstimate float64         `json:"commission_estimate"`
	DiscountPct        *float64        `json:"discount_pct,omitempty"`
	TrendBonusApplied  bool            `json:"trend_bonus_applied"`
	Excluded           ExclusionReason `json:"excluded"`
}

// Float64 returns a pointer to v. Convenience for optional listing fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
