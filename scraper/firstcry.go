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

const firstcryBase = "https://www.firstcry.com"

type firstcryAdapter struct {
	fetch fetch.Fetcher
	opts  Options
}

func (f *firstcryAdapter) Platform() models.Platform { return models.PlatformFirstCry }

func (f *firstcryAdapter) Scrape(ctx context.Context, niche string) ([]*models.RawListing, error) {
	page := firstcryBase + "/search?q=" + url.QueryEscape(niche) + "&sort=popularity"

	doc, err := f.fetch.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	var listings []*models.RawListing
	doc.Find(".product-box, .prd-box").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= f.opts.MaxItems {
			return false
		}

		title := strings.TrimSpace(item.Find(".prd-name, h2, .product-name").First().Text())
		if title == "" {
			return true
		}

		href, _ := item.Find("a").First().Attr("href")
		img, _ := item.Find("img").First().Attr("src")

		listings = append(listings, &models.RawListing{
			Title:       title,
			Platform:    models.PlatformFirstCry,
			URL:         absoluteURL(firstcryBase, href),
			Price:       ParsePrice(item.Find(".prd-price, .special-price").First().Text()),
			ImageURL:    img,
			StockStatus: models.StockInStock,
			ScrapedAt:   time.Now(),
		})
		return true
	})

	return listings, nil
}
