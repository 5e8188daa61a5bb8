package scraper

import (
	"context"
	"strings"

	"niche-research/fetch"
	"niche-research/models"
	"niche-research/utils"
)

// Adapter scrapes one marketplace for a niche. Implementations are tolerant
// of structural drift: a malformed item is skipped, a fully failed page fetch
// yields an error the pool downgrades to "zero results for that platform".
type Adapter interface {
	Platform() models.Platform
	Scrape(ctx context.Context, niche string) ([]*models.RawListing, error)
}

// Options are knobs shared by every adapter.
type Options struct {
	// MaxItems caps extraction per result page.
	MaxItems int
	Logger   *utils.Logger
}

// DefaultMaxItems is the per-page extraction cap.
const DefaultMaxItems = 15

// NewRegistry builds the full adapter set over the given fetcher.
func NewRegistry(f fetch.Fetcher, opts Options) map[models.Platform]Adapter {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	adapters := []Adapter{
		&amazonAdapter{fetch: f, opts: opts},
		&flipkartAdapter{fetch: f, opts: opts},
		&myntraAdapter{fetch: f, opts: opts},
		&meeshoAdapter{fetch: f, opts: opts},
		&ajioAdapter{fetch: f, opts: opts},
		&nykaaAdapter{fetch: f, opts: opts},
		&firstcryAdapter{fetch: f, opts: opts},
	}

	reg := make(map[models.Platform]Adapter, len(adapters))
	for _, a := range adapters {
		reg[a.Platform()] = a
	}
	return reg
}

// absoluteURL joins a relative href with the platform's base URL.
func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return base + "/" + href
}
