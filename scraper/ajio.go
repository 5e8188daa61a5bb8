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

const ajioBase = "https://www.ajio.com"

type ajioAdapter struct {
	fetch fetch.Fetcher
	opts  Options
}

func (a *ajioAdapter) Platform() models.Platform { return models.PlatformAjio }

func (a *ajioAdapter) Scrape(ctx context.Context, niche string) ([]*models.RawListing, error) {
	page := ajioBase + "/search/?text=" + url.QueryEscape(niche)

	doc, err := a.fetch.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	var listings []*models.RawListing
	doc.Find(".item, .rizz-product-base").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= a.opts.MaxItems {
			return false
		}

		title := strings.TrimSpace(item.Find(".nameCls, .brand, h2").First().Text())
		if title == "" {
			return true
		}

		href, _ := item.Find("a").First().Attr("href")
		img, _ := item.Find("img").First().Attr("src")

		listings = append(listings, &models.RawListing{
			Title:       title,
			Platform:    models.PlatformAjio,
			URL:         absoluteURL(ajioBase, href),
			Price:       ParsePrice(item.Find(".price, .original-price span").First().Text()),
			ImageURL:    img,
			StockStatus: models.StockInStock,
			ScrapedAt:   time.Now(),
		})
		return true
	})

	return listings, nil
}
