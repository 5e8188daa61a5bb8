package scraper

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"niche-research/fetch"
	"niche-research/models"
	"niche-research/utils"
)

// fetchFunc adapts a function to the fetch.Fetcher interface so adapter
// tests can serve canned markup.
type fetchFunc func(ctx context.Context, url string) (*goquery.Document, error)

func (f fetchFunc) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	return f(ctx, url)
}

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func testOptions() Options {
	return Options{MaxItems: DefaultMaxItems, Logger: utils.NewLogger()}
}

const amazonFixture = `
<html><body>
<div data-component-type="s-search-result" data-asin="B0YOGA01">
  <h2><a href="/Yoga-Mat-Pro/dp/B0YOGA01?ref=sr_1_1"><span>Yoga Mat Pro 6mm Anti-Slip</span></a></h2>
  <span class="a-price-whole">1,299</span>
  <span class="a-text-price"><span>2,499</span></span>
  <span class="a-icon-alt">4.5 out of 5 stars</span>
  <div class="a-size-small"><a class="a-link-normal"><span>(12,456)</span></a></div>
  <img class="s-image" src="https://m.media-amazon.com/img/yoga1.jpg"/>
  <span class="a-badge-text">Bestseller</span>
  <span>Amazon's Choice</span>
</div>
<div data-component-type="s-search-result" data-asin="B0YOGA02">
  <h2><a href="/Yoga-Mat-Eco/dp/B0YOGA02"><span>Eco Cork Yoga Mat</span></a></h2>
  <span class="a-price-whole">2,199</span>
  <span class="a-icon-alt">4.1 out of 5 stars</span>
</div>
<div data-component-type="s-search-result" data-asin="B0BROKEN">
  <span class="a-price-whole">999</span>
</div>
</body></html>`

func TestAmazonAdapterParsesItems(t *testing.T) {
	f := fetchFunc(func(ctx context.Context, url string) (*goquery.Document, error) {
		return docFromHTML(t, amazonFixture), nil
	})
	a := &amazonAdapter{fetch: f, opts: testOptions()}

	listings, err := a.Scrape(context.Background(), "yoga mats")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	// Both search pages return the same fixture; the URL set collapses them.
	// The third card has no title and must be skipped, not abort the batch.
	if len(listings) != 2 {
		t.Fatalf("listings: got %d, want 2", len(listings))
	}

	l := listings[0]
	if l.Title != "Yoga Mat Pro 6mm Anti-Slip" {
		t.Errorf("title: got %q", l.Title)
	}
	if l.URL != "https://www.amazon.in/Yoga-Mat-Pro/dp/B0YOGA01" {
		t.Errorf("url: got %q (query params must be stripped)", l.URL)
	}
	if l.Price == nil || *l.Price != 1299 {
		t.Errorf("price: got %v, want 1299", l.Price)
	}
	if l.MRP == nil || *l.MRP != 2499 {
		t.Errorf("mrp: got %v, want 2499", l.MRP)
	}
	if l.Rating == nil || *l.Rating != 4.5 {
		t.Errorf("rating: got %v, want 4.5", l.Rating)
	}
	if l.ReviewCount == nil || *l.ReviewCount != 12456 {
		t.Errorf("review count: got %v, want 12456", l.ReviewCount)
	}
	if l.ASIN != "B0YOGA01" {
		t.Errorf("asin: got %q", l.ASIN)
	}
	if !l.Badges.Bestseller || !l.Badges.AmazonsChoice {
		t.Errorf("badges: got %+v, want bestseller and amazons_choice", l.Badges)
	}

	second := listings[1]
	if second.MRP != nil {
		t.Errorf("second item mrp: got %v, want absent", *second.MRP)
	}
	if second.ReviewCount != nil {
		t.Errorf("second item reviews: got %v, want absent", *second.ReviewCount)
	}
}

func TestAmazonAdapterFetchFailure(t *testing.T) {
	f := fetchFunc(func(ctx context.Context, url string) (*goquery.Document, error) {
		return nil, fetch.ErrUnavailable
	})
	a := &amazonAdapter{fetch: f, opts: testOptions()}

	listings, err := a.Scrape(context.Background(), "yoga mats")
	if err == nil {
		t.Error("expected error when every page fetch fails")
	}
	if len(listings) != 0 {
		t.Errorf("listings: got %d, want 0", len(listings))
	}
}

const flipkartFixture = `
<html><body>
<div data-id="FK1">
  <a title="Premium Yoga Mat 8mm" href="/premium-yoga-mat/p/itm123?pid=1"></a>
  <div class="_30jeq3">₹799</div>
  <div class="_3I9_wc">₹1,599</div>
  <div class="_3LWZlK">4.2</div>
  <img class="_396cs4" src="https://rukminim.flixcart.com/yoga.jpg"/>
</div>
<div data-id="FK2">
  <div class="_30jeq3">₹450</div>
</div>
</body></html>`

func TestFlipkartAdapterParsesItems(t *testing.T) {
	f := fetchFunc(func(ctx context.Context, url string) (*goquery.Document, error) {
		return docFromHTML(t, flipkartFixture), nil
	})
	a := &flipkartAdapter{fetch: f, opts: testOptions()}

	listings, err := a.Scrape(context.Background(), "yoga mats")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("listings: got %d, want 1 (titleless card skipped)", len(listings))
	}

	l := listings[0]
	if l.Title != "Premium Yoga Mat 8mm" {
		t.Errorf("title: got %q", l.Title)
	}
	if l.Platform != models.PlatformFlipkart {
		t.Errorf("platform: got %s", l.Platform)
	}
	if !strings.HasPrefix(l.URL, "https://www.flipkart.com/") {
		t.Errorf("url not absolute: %q", l.URL)
	}
	if l.Price == nil || *l.Price != 799 {
		t.Errorf("price: got %v, want 799", l.Price)
	}
	if l.ReviewCount != nil {
		t.Errorf("flipkart exposes no review counts; got %v", *l.ReviewCount)
	}
}

const meeshoFixture = `
<html><body>
<div data-testid="product-card">
  <a href="/yoga-mat-thick/p/abc"></a>
  <p class="Text-sc">Thick Yoga Mat with Strap</p>
  <h5 class="Text-price">₹349</h5>
  <img src="https://images.meesho.com/yoga.jpg"/>
</div>
</body></html>`

func TestMeeshoAdapterParsesItems(t *testing.T) {
	f := fetchFunc(func(ctx context.Context, url string) (*goquery.Document, error) {
		return docFromHTML(t, meeshoFixture), nil
	})
	a := &meeshoAdapter{fetch: f, opts: testOptions()}

	listings, err := a.Scrape(context.Background(), "yoga mats")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("listings: got %d, want 1", len(listings))
	}
	if listings[0].URL != "https://www.meesho.com/yoga-mat-thick/p/abc" {
		t.Errorf("url: got %q", listings[0].URL)
	}
	if listings[0].Price == nil || *listings[0].Price != 349 {
		t.Errorf("price: got %v, want 349", listings[0].Price)
	}
}

func TestAdapterCapsItemsPerPage(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		b.WriteString(`<div data-testid="product-card"><a href="/p/`)
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString(`"></a><p class="Text">Item</p></div>`)
	}
	b.WriteString("</body></html>")
	html := b.String()

	f := fetchFunc(func(ctx context.Context, url string) (*goquery.Document, error) {
		return docFromHTML(t, html), nil
	})
	a := &meeshoAdapter{fetch: f, opts: testOptions()}

	listings, err := a.Scrape(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(listings) != DefaultMaxItems {
		t.Errorf("listings: got %d, want cap of %d", len(listings), DefaultMaxItems)
	}
}
