package trends

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/groovili/gogtrends"

	"niche-research/fetch"
	"niche-research/utils"
)

const (
	maxEventSnippets  = 10
	maxTrendingTopics = 15
	maxCombinedEvents = 20
)

// WebEventSource detects real-time events relevant to a niche by combining
// a handful of web searches with the trends daily-searches feed. Nothing is
// hardcoded to a season or festival; all queries derive from the niche and
// the configured region.
type WebEventSource struct {
	fetch  fetch.Fetcher
	region string // human-readable, e.g. "India"
	geo    string // trends geo code, e.g. "IN"
	logger *utils.Logger
}

// NewWebEventSource creates an event detector for the given region.
func NewWebEventSource(f fetch.Fetcher, region, geo string, logger *utils.Logger) *WebEventSource {
	return &WebEventSource{fetch: f, region: region, geo: geo, logger: logger}
}

// DetectEvents returns a bounded, deduplicated list of event and topic
// strings. Partial source failures degrade to whatever was collected.
func (w *WebEventSource) DetectEvents(ctx context.Context, niche string) ([]string, error) {
	var events []string

	// Source A — web searches for current trends.
	month := time.Now().Format("January 2006")
	queries := []string{
		"trending in " + w.region + " today",
		"upcoming festivals " + w.region + " " + month,
		niche + " trending " + w.region,
	}
	for _, q := range queries {
		searchURL := "https://www.google.com/search?q=" + url.QueryEscape(q) + "&num=5"
		doc, err := w.fetch.Fetch(ctx, searchURL)
		if err != nil {
			w.logger.Warn("[events] search %q failed: %v", q, err)
			continue
		}
		events = append(events, snippets(doc, 5)...)
	}

	// Source B — trends daily-searches feed.
	trending, err := gogtrends.Daily(ctx, "EN", w.geo)
	if err != nil {
		w.logger.Warn("[events] trending feed failed: %v", err)
	} else {
		for i, item := range trending {
			if i >= maxTrendingTopics {
				break
			}
			if item.Title != nil && item.Title.Query != "" {
				events = append(events, item.Title.Query)
			}
		}
	}

	return dedupeStrings(events, maxCombinedEvents), nil
}

// snippets pulls short result texts out of a search page.
func snippets(doc *goquery.Document, limit int) []string {
	var out []string
	doc.Find("h3, .BNeawe").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(out) >= limit {
			return false
		}
		text := strings.TrimSpace(s.Text())
		if text != "" {
			out = append(out, text)
		}
		return true
	})
	return out
}

func dedupeStrings(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out
}

var _ EventDataSource = (*WebEventSource)(nil)
