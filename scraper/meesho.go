package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"niche-research/fetch"
	"niche-research/models"
)

const meeshoBase = "https://www.meesho.com"

type meeshoAdapter struct {
	fetch fetch.Fetcher
	opts  Options
}

func (m *meeshoAdapter) Platform() models.Platform { return models.PlatformMeesho }

func (m *meeshoAdapter) Scrape(ctx context.Context, niche string) ([]*models.RawListing, error) {
	page := meeshoBase + "/search?q=" + url.QueryEscape(niche)

	doc, err := m.fetch.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	var listings []*models.RawListing
	doc.Find(`[class*="ProductList__GridCol"], [data-testid="product-card"]`).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= m.opts.MaxItems {
			return false
		}

		title := strings.TrimSpace(item.Find(`p[class*="Text"], h2`).First().Text())
		if title == "" {
			return true
		}

		href, _ := item.Find("a").First().Attr("href")
		img, _ := item.Find("img").First().Attr("src")

		listings = append(listings, &models.RawListing{
			Title:       title,
			Platform:    models.PlatformMeesho,
			URL:         absoluteURL(meeshoBase, href),
			Price:       ParsePrice(item.Find(`h5[class*="Text"], [class*="price"]`).First().Text()),
			ImageURL:    img,
			StockStatus: models.StockInStock,
			ScrapedAt:   time.Now(),
		})
		return true
	})

	return listings, nil
}
