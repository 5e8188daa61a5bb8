package models

// SearchInterest is the result of the search-interest trend lookup for a
// niche. A failed lookup degrades to the zero value (Available=false,
// InterestPct=0, IsTrending=false) rather than an error.
type SearchInterest struct {
	Niche           string   `json:"niche"`
	InterestPct     int      `json:"interest_pct"`
	IsTrending      bool     `json:"is_trending"`
	RisingQueries   []string `json:"rising_queries,omitempty"`
	BreakoutQueries []string `json:"breakout_queries,omitempty"`
	Available       bool     `json:"available"`
}

// TrendContext aggregates the three independently-fetched trend signals.
// Every field is optional: an empty value only reduces the trend bonus
// awarded during scoring, it never fails a research run.
type TrendContext struct {
	SearchInterest        SearchInterest `json:"search_interest"`
	RealtimeEvents        []string       `json:"realtime_events,omitempty"`
	PlatformTrendKeywords []string       `json:"platform_trend_keywords,omitempty"`
}
