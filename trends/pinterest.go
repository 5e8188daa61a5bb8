package trends

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"niche-research/fetch"
	"niche-research/utils"
)

const (
	pinterestTrendsURL = "https://trends.pinterest.com/"
	maxTrendKeywords   = 20
	// maxFragmentLen filters page chrome: short visible fragments on the
	// trends page are trend labels, long ones are copy.
	maxFragmentLen = 50
	maxFragments   = 100
)

// PinterestTrendSource scrapes the public Pinterest trends page for keywords
// currently trending on the publishing platform.
type PinterestTrendSource struct {
	fetch  fetch.Fetcher
	logger *utils.Logger
}

// NewPinterestTrendSource creates the source over the given fetcher.
func NewPinterestTrendSource(f fetch.Fetcher, logger *utils.Logger) *PinterestTrendSource {
	return &PinterestTrendSource{fetch: f, logger: logger}
}

// TrendingKeywords returns a bounded set of trend fragments: short visible
// texts plus anything mentioning the niche.
func (p *PinterestTrendSource) TrendingKeywords(ctx context.Context, niche string) ([]string, error) {
	doc, err := p.fetch.Fetch(ctx, pinterestTrendsURL)
	if err != nil {
		return nil, err
	}

	nicheLower := strings.ToLower(niche)
	var keywords []string

	doc.Find("h2, h3, span, a").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxFragments {
			return false
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		if strings.Contains(strings.ToLower(text), nicheLower) || len(text) < maxFragmentLen {
			keywords = append(keywords, text)
		}
		return true
	})

	return dedupeStrings(keywords, maxTrendKeywords), nil
}

var _ PlatformTrendSource = (*PinterestTrendSource)(nil)
