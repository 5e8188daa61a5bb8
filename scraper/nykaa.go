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

const nykaaBase = "https://www.nykaa.com"

type nykaaAdapter struct {
	fetch fetch.Fetcher
	opts  Options
}

func (n *nykaaAdapter) Platform() models.Platform { return models.PlatformNykaa }

func (n *nykaaAdapter) Scrape(ctx context.Context, niche string) ([]*models.RawListing, error) {
	page := nykaaBase + "/search/result/?q=" + url.QueryEscape(niche) + "&sort=popularity"

	doc, err := n.fetch.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	var listings []*models.RawListing
	doc.Find(".productWrapper, .css-1ol9jjv").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= n.opts.MaxItems {
			return false
		}

		title := strings.TrimSpace(item.Find(".productName, h3").First().Text())
		if title == "" {
			return true
		}

		href, _ := item.Find("a").First().Attr("href")
		img, _ := item.Find("img").First().Attr("src")

		listings = append(listings, &models.RawListing{
			Title:       title,
			Platform:    models.PlatformNykaa,
			URL:         absoluteURL(nykaaBase, href),
			Price:       ParsePrice(item.Find(".offerPrice, .price").First().Text()),
			ImageURL:    img,
			StockStatus: models.StockInStock,
			ScrapedAt:   time.Now(),
		})
		return true
	})

	return listings, nil
}
