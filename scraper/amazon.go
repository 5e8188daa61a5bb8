package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"niche-research/fetch"
	"niche-research/models"
	"niche-research/utils"
)

const amazonBase = "https://www.amazon.in"

// amazonAdapter scrapes Amazon India search results. It is the richest
// adapter: it extracts MRP, review counts, ASINs and merchandising badges,
// and queries two differently-sorted result pages.
type amazonAdapter struct {
	fetch fetch.Fetcher
	opts  Options
}

func (a *amazonAdapter) Platform() models.Platform { return models.PlatformAmazon }

func (a *amazonAdapter) Scrape(ctx context.Context, niche string) ([]*models.RawListing, error) {
	encoded := url.QueryEscape(niche)
	pages := []string{
		amazonBase + "/s?k=" + encoded + "&sort=review-rank",
		amazonBase + "/s?k=" + encoded + "&sort=popularity-rank",
	}

	seen := utils.NewURLSet()
	var listings []*models.RawListing
	fetched := 0

	for _, page := range pages {
		doc, err := a.fetch.Fetch(ctx, page)
		if err != nil {
			a.opts.Logger.Warn("[amazon] page fetch failed: %v", err)
			continue
		}
		fetched++

		doc.Find(`[data-component-type="s-search-result"]`).EachWithBreak(func(i int, item *goquery.Selection) bool {
			if i >= a.opts.MaxItems {
				return false
			}
			l := a.parseItem(item)
			if l == nil {
				return true
			}
			// The two sort orders overlap; keep first occurrence.
			if !seen.Add(l.URL) {
				return true
			}
			listings = append(listings, l)
			return true
		})
	}

	if fetched == 0 {
		return nil, fetch.ErrUnavailable
	}
	return listings, nil
}

func (a *amazonAdapter) parseItem(item *goquery.Selection) *models.RawListing {
	titleEl := item.Find("h2 a span").First()
	linkEl := item.Find("h2 a").First()
	if titleEl.Length() == 0 || linkEl.Length() == 0 {
		return nil
	}

	title := strings.TrimSpace(titleEl.Text())
	href, _ := linkEl.Attr("href")
	if title == "" || href == "" {
		return nil
	}
	productURL := amazonBase + strings.SplitN(href, "?", 2)[0]

	img, _ := item.Find(".s-image").First().Attr("src")
	asin, _ := item.Attr("data-asin")

	itemText := item.Text()
	badges := models.Badges{
		Bestseller:    item.Find(".a-badge-text").Length() > 0,
		AmazonsChoice: strings.Contains(itemText, "Amazon's Choice"),
		DealOfDay:     strings.Contains(itemText, "Deal of the Day"),
	}

	return &models.RawListing{
		Title:       title,
		Platform:    models.PlatformAmazon,
		URL:         productURL,
		Price:       ParsePrice(item.Find(".a-price-whole").First().Text()),
		MRP:         ParsePrice(item.Find(".a-text-price span").First().Text()),
		Rating:      ParseRating(item.Find(".a-icon-star-small .a-icon-alt, .a-icon-alt").First().Text()),
		ReviewCount: ParseReviews(item.Find(".a-size-small .a-link-normal span").First().Text()),
		ImageURL:    img,
		StockStatus: models.StockInStock,
		Badges:      badges,
		ASIN:        asin,
		ScrapedAt:   time.Now(),
	}
}
