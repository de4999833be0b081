package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"quire/internal/artifacts"
	"quire/internal/services"
	"quire/internal/stage"
)

// maxPageBytes bounds a single downloaded page.
const maxPageBytes = 8 * 1024 * 1024

// Chapter is one unit of work for a fetcher. Locator is the remote URL or, for
// seed fetches, the local file path.
type Chapter struct {
	Ordinal int
	Locator string
}

// Fetcher returns the raw page for a chapter.
type Fetcher interface {
	Fetch(ctx context.Context, ch Chapter) (string, error)
}

// ValidatePage checks the page shape every raw download must satisfy. A
// bot-check or error page fails here instead of further down the pipeline.
func ValidatePage(ch Chapter, page string) error {
	if err := stage.PageShape.Check(page); err != nil {
		return stage.Fail(stage.Download, ch.Ordinal, "validate page", fmt.Errorf("%s: %w", ch.Locator, err))
	}
	return nil
}

// SeedFetcher reads previously saved pages from Dir.
type SeedFetcher struct {
	Dir string
}

// Locator returns the seed file path for a chapter.
func (s SeedFetcher) Locator(ordinal int) string {
	name, _ := artifacts.ChapterFile(ordinal, stage.Download)
	return filepath.Join(s.Dir, name)
}

// Fetch reads the seed file; a missing file names the chapter and path.
func (s SeedFetcher) Fetch(_ context.Context, ch Chapter) (string, error) {
	path := ch.Locator
	if path == "" {
		path = s.Locator(ch.Ordinal)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", stage.Fail(stage.Download, ch.Ordinal, "read seed", fmt.Errorf("no cached page at %s", path))
		}
		return "", stage.Fail(stage.Download, ch.Ordinal, "read seed", err)
	}
	page := string(data)
	if err := ValidatePage(Chapter{Ordinal: ch.Ordinal, Locator: path}, page); err != nil {
		return "", err
	}
	return page, nil
}

// HTTPFetcher downloads pages with a plain GET.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds a fetcher with the given request timeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch performs one GET; there is no retry.
func (h *HTTPFetcher) Fetch(ctx context.Context, ch Chapter) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ch.Locator, nil)
	if err != nil {
		return "", stage.Fail(stage.Download, ch.Ordinal, "build request", err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", stage.Fail(stage.Download, ch.Ordinal, "get", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", stage.Fail(stage.Download, ch.Ordinal, "get", fmt.Errorf("HTTP %d for %s", resp.StatusCode, ch.Locator))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", stage.Fail(stage.Download, ch.Ordinal, "read body", err)
	}
	page := string(body)
	if err := ValidatePage(ch, page); err != nil {
		return "", err
	}
	return page, nil
}

// PageSourcer renders a URL and returns its markup.
type PageSourcer interface {
	PageSource(ctx context.Context, url string) (string, error)
}

// BrowserFetcher fetches through a headless browser.
type BrowserFetcher struct {
	Browser PageSourcer
}

// Fetch renders the chapter URL in a fresh browser process.
func (b BrowserFetcher) Fetch(ctx context.Context, ch Chapter) (string, error) {
	page, err := b.Browser.PageSource(ctx, ch.Locator)
	if err != nil {
		return "", stage.Fail(stage.Download, ch.Ordinal, "browser", err)
	}
	if err := ValidatePage(ch, page); err != nil {
		return "", err
	}
	return page, nil
}

// Paced spaces calls to the wrapped fetcher by at least the limiter interval.
// Calls are never issued concurrently.
type Paced struct {
	Fetcher Fetcher
	Limiter *rate.Limiter
}

// NewPaced wraps f so consecutive fetches are at least interval apart. A zero
// interval disables pacing.
func NewPaced(f Fetcher, interval time.Duration) *Paced {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Paced{Fetcher: f, Limiter: rate.NewLimiter(limit, 1)}
}

// Fetch waits for the limiter and then delegates.
func (p *Paced) Fetch(ctx context.Context, ch Chapter) (string, error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return "", services.Wrap(services.ErrFetch, fmt.Sprintf("download chapter %d", ch.Ordinal), "pace", "", err)
		}
	}
	return p.Fetcher.Fetch(ctx, ch)
}

// HealthCheck reports whether the seed directory is readable.
func (s SeedFetcher) HealthCheck(context.Context) stage.Health {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return stage.Unhealthy("seed", err.Error())
	}
	if !info.IsDir() {
		return stage.Unhealthy("seed", s.Dir+" is not a directory")
	}
	return stage.Healthy("seed")
}

// HealthCheck delegates to the browser when it can check itself.
func (b BrowserFetcher) HealthCheck(ctx context.Context) stage.Health {
	if hc, ok := b.Browser.(stage.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return stage.Healthy("browser")
}

// HealthCheck delegates to the paced fetcher.
func (p *Paced) HealthCheck(ctx context.Context) stage.Health {
	if hc, ok := p.Fetcher.(stage.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return stage.Healthy("fetch")
}
