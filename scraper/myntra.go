package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"niche-research/fetch"
	"niche-research/models"
)

const myntraBase = "https://www.myntra.com"

// myntraAdapter scrapes Myntra category pages. Myntra renders its grid
// client-side, so a plain GET yields sparse data; pair this adapter with the
// browser fetcher for full results.
type myntraAdapter struct {
	fetch fetch.Fetcher
	opts  Options
}

func (m *myntraAdapter) Platform() models.Platform { return models.PlatformMyntra }

func (m *myntraAdapter) Scrape(ctx context.Context, niche string) ([]*models.RawListing, error) {
	slug := strings.ToLower(strings.ReplaceAll(niche, " ", "-"))
	page := myntraBase + "/" + slug

	doc, err := m.fetch.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	var listings []*models.RawListing
	doc.Find(".product-base").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= m.opts.MaxItems {
			return false
		}

		brand := strings.TrimSpace(item.Find(".product-brand").First().Text())
		name := strings.TrimSpace(item.Find(".product-product").First().Text())

		var title string
		switch {
		case brand != "" && name != "":
			title = brand + " " + name
		case brand != "":
			title = brand
		default:
			title = name
		}
		if title == "" {
			return true
		}

		href, _ := item.Find("a").First().Attr("href")

		imgEl := item.Find("picture source, img.img-responsive").First()
		img, ok := imgEl.Attr("srcset")
		if !ok {
			img, _ = imgEl.Attr("src")
		}

		listings = append(listings, &models.RawListing{
			Title:       title,
			Platform:    models.PlatformMyntra,
			URL:         absoluteURL(myntraBase, href),
			Price:       ParsePrice(item.Find(".product-discountedPrice, .product-price").First().Text()),
			MRP:         ParsePrice(item.Find(".product-strike").First().Text()),
			ImageURL:    img,
			StockStatus: models.StockInStock,
			ScrapedAt:   time.Now(),
		})
		return true
	})

	return listings, nil
}
