// Package source acquires weather forecasts from okairos.gr through a
// tiered strategy: the structured widget endpoint when a widget ID is
// configured, the human-readable location page as a coarse scrape
// fallback, and synthesized placeholder data when both fail. Fetch
// always yields a full week of records.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"wxcal/internal/config"
	"wxcal/internal/forecast"
	appLog "wxcal/internal/log"
)

const (
	defaultBaseURL = "https://www.okairos.gr"

	requestTimeout = 10 * time.Second
	maxAttempts    = 3

	userAgent = "wxcal/1.0 (weather forecast calendar generator)"
)

// ErrSourceUnavailable is returned when every acquisition tier failed and
// the records are placeholders. Multi-location runs skip the location;
// single-location callers keep the placeholder data.
var ErrSourceUnavailable = errors.New("weather source unavailable")

// Fetcher acquires forecasts over HTTP. Requests share one rate limiter
// so multi-location runs stay polite toward okairos.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	sleep   func(time.Duration)
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client (primarily for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithSleepFunc overrides the sleep between retry attempts, so tests run
// without real delays.
func WithSleepFunc(fn func(time.Duration)) Option {
	return func(f *Fetcher) { f.sleep = fn }
}

// WithClock overrides the clock supplying "today".
func WithClock(fn func() time.Time) Option {
	return func(f *Fetcher) { f.now = fn }
}

// WithBaseURL points the widget tier at a different host (for tests).
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit overrides the request pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(f *Fetcher) { f.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewFetcher creates a Fetcher with a bounded-timeout client and a
// 1 req/s limiter.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		baseURL: defaultBaseURL,
		sleep:   time.Sleep,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns exactly forecast.Days records for the location, starting
// at today's local date. It never returns fewer records: whichever tier
// produced data is padded forward, and total failure yields placeholder
// records together with ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, loc config.Location) ([]forecast.Record, error) {
	today := forecast.DateOnly(f.now())

	if id := loc.EffectiveWidgetID(); id != "" {
		records, err := f.fetchWidget(ctx, id, today)
		if err == nil {
			appLog.Info("widget forecast fetched", "location", loc.Name, "days", len(records))
			return forecast.Extend(records, today, forecast.Days), nil
		}
		appLog.Warn("widget fetch failed, falling back to page scrape",
			"location", loc.Name, "widget_id", id, "err", err)
	}

	records, err := f.fetchPage(ctx, loc.SourceURL, today)
	if err == nil {
		appLog.Info("page forecast scraped", "location", loc.Name)
		return forecast.Extend(records, today, forecast.Days), nil
	}
	appLog.Error("all forecast tiers failed, using placeholder data", err, "location", loc.Name)

	return forecast.Placeholder(today, forecast.Days), ErrSourceUnavailable
}

// fetchWidget acquires per-day records from the structured widget endpoint.
func (f *Fetcher) fetchWidget(ctx context.Context, widgetID string, today time.Time) ([]forecast.Record, error) {
	body, err := f.get(ctx, f.baseURL+"/widget/get/"+widgetID)
	if err != nil {
		return nil, err
	}
	return parseWidget(body, today)
}

// fetchPage scrapes the location page. The scrape yields at most one
// temperature range and condition, replicated across the whole week.
func (f *Fetcher) fetchPage(ctx context.Context, pageURL string, today time.Time) ([]forecast.Record, error) {
	if pageURL == "" {
		return nil, errors.New("no location page URL configured")
	}
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return scrapePage(body, today), nil
}

// get issues a rate-limited GET with retries. Attempts are spaced by
// exponential backoff (1s, 2s, ...); only the final attempt's failure is
// reported. Response bytes are coerced to valid UTF-8 so malformed
// upstream encodings never propagate.
func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			f.sleep(time.Duration(1<<(attempt-2)) * time.Second)
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}

		body, err := f.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		appLog.Debug("fetch attempt failed", "url", url, "attempt", attempt, "err", err)
	}
	return "", fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (f *Fetcher) getOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}
