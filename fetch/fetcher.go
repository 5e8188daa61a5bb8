package fetch

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"niche-research/utils"
)

// ErrUnavailable is returned when a document could not be fetched within the
// retry budget. Callers treat it as "no data", never as a pipeline failure.
var ErrUnavailable = errors.New("fetch: document unavailable")

// Fetcher retrieves a URL and parses the response body into a document.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Config controls the retry and pacing policy of the RateLimitedFetcher.
type Config struct {
	MaxAttempts int
	// JitterMin/JitterMax bound the random pre-attempt delay.
	JitterMin time.Duration
	JitterMax time.Duration
	// AttemptDelays are fixed extras added per attempt (index 0 = first).
	AttemptDelays []time.Duration
	// Cooldown is the long wait applied after a 403/429 response.
	Cooldown time.Duration
	Timeout  time.Duration
}

// DefaultConfig returns the production fetch policy: 3 attempts, 3–6s jitter
// plus 0/5/15s per-attempt extras, 60s throttle cooldown, 30s timeout.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		JitterMin:     3 * time.Second,
		JitterMax:     6 * time.Second,
		AttemptDelays: []time.Duration{0, 5 * time.Second, 15 * time.Second},
		Cooldown:      60 * time.Second,
		Timeout:       30 * time.Second,
	}
}

// RateLimitedFetcher performs HTTP GETs with randomized headers, bounded
// retries and explicit throttling handling. It never surfaces transport
// errors beyond ErrUnavailable.
type RateLimitedFetcher struct {
	client *resty.Client
	cfg    Config
	logger *utils.Logger

	// sleep is swapped out in tests to keep them fast.
	sleep func(time.Duration)
}

// NewRateLimitedFetcher creates a fetcher with the given policy.
func NewRateLimitedFetcher(cfg Config, logger *utils.Logger) *RateLimitedFetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0) // retries are handled here, not by the client

	return &RateLimitedFetcher{
		client: client,
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Fetch retrieves url and parses it. On exhaustion of the retry budget it
// returns ErrUnavailable.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		f.sleep(f.preAttemptDelay(attempt))

		resp, err := f.client.R().
			SetContext(ctx).
			SetHeaders(randomHeaders()).
			Get(url)
		if err != nil {
			f.logger.Warn("[fetch] request failed (attempt %d/%d): %v",
				attempt+1, f.cfg.MaxAttempts, err)
			continue
		}

		switch code := resp.StatusCode(); {
		case code == http.StatusOK:
			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
			if err != nil {
				f.logger.Warn("[fetch] unparseable body from %s: %v", url, err)
				continue
			}
			return doc, nil

		case code == http.StatusForbidden || code == http.StatusTooManyRequests:
			f.logger.Warn("[fetch] rate limited (%d) — waiting %v", code, f.cfg.Cooldown)
			f.sleep(f.cfg.Cooldown)

		default:
			f.logger.Warn("[fetch] HTTP %d for %s", code, url)
		}
	}

	return nil, ErrUnavailable
}

// preAttemptDelay is a random jitter plus a fixed per-attempt extra, so the
// request pattern does not fingerprint as a bot.
func (f *RateLimitedFetcher) preAttemptDelay(attempt int) time.Duration {
	delay := f.cfg.JitterMin
	if span := f.cfg.JitterMax - f.cfg.JitterMin; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	if attempt < len(f.cfg.AttemptDelays) {
		delay += f.cfg.AttemptDelays[attempt]
	}
	return delay
}
