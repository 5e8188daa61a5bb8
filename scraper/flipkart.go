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

const flipkartBase = "https://www.flipkart.com"

type flipkartAdapter struct {
	fetch fetch.Fetcher
	opts  Options
}

func (f *flipkartAdapter) Platform() models.Platform { return models.PlatformFlipkart }

func (f *flipkartAdapter) Scrape(ctx context.Context, niche string) ([]*models.RawListing, error) {
	page := flipkartBase + "/search?q=" + url.QueryEscape(niche) + "&sort=popularity"

	doc, err := f.fetch.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	// Flipkart product cards vary by category.
	var items *goquery.Selection
	for _, sel := range []string{"div[data-id]", "._1AtVbE", "._13oc-S"} {
		items = doc.Find(sel)
		if items.Length() > 0 {
			break
		}
	}

	var listings []*models.RawListing
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= f.opts.MaxItems {
			return false
		}

		titleEl := item.Find("a.s1Q9rs, ._4rR01T, .IRpwTa, a[title]").First()
		if titleEl.Length() == 0 {
			return true
		}
		title, ok := titleEl.Attr("title")
		if !ok || title == "" {
			title = strings.TrimSpace(titleEl.Text())
		}
		if title == "" {
			return true
		}

		href, _ := item.Find(`a.s1Q9rs, ._4rR01T, a[href*="/p/"]`).First().Attr("href")
		img, _ := item.Find("img._396cs4, img._2r_T1I").First().Attr("src")

		listings = append(listings, &models.RawListing{
			Title:       title,
			Platform:    models.PlatformFlipkart,
			URL:         absoluteURL(flipkartBase, href),
			Price:       ParsePrice(item.Find("._30jeq3, ._1_WHN1").First().Text()),
			MRP:         ParsePrice(item.Find("._3I9_wc, ._2p6lqe").First().Text()),
			Rating:      ParseRating(item.Find("._3LWZlK").First().Text()),
			ImageURL:    img,
			StockStatus: models.StockInStock,
			ScrapedAt:   time.Now(),
		})
		return true
	})

	return listings, nil
}
