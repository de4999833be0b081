package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quire/internal/fetch"
	"quire/internal/services"
	"quire/internal/testsupport"
)

func TestSeedFetcher(t *testing.T) {
	dir := t.TempDir()
	testsupport.SeedChapters(t, dir, 2)
	seed := fetch.SeedFetcher{Dir: dir}

	page, err := seed.Fetch(context.Background(), fetch.Chapter{Ordinal: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page != testsupport.SamplePage(2) {
		t.Fatal("seed page differs from file contents")
	}

	_, err = seed.Fetch(context.Background(), fetch.Chapter{Ordinal: 3})
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	for _, want := range []string{"download chapter 3", "no cached page", "03_a_orig.html"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestSeedFetcherRejectsMalformedPage(t *testing.T) {
	dir := t.TempDir()
	seed := fetch.SeedFetcher{Dir: dir}
	testsupport.WriteText(t, seed.Locator(1), "<html><body>Checking your browser</body></html>")

	_, err := seed.Fetch(context.Background(), fetch.Chapter{Ordinal: 1})
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "validate page") {
		t.Fatalf("expected shape failure, got %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/s/1/1":
			_, _ = w.Write([]byte(testsupport.SamplePage(1)))
		case "/s/1/2":
			_, _ = w.Write([]byte("<html>short</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := fetch.NewHTTPFetcher("quire-test/1.0", 5*time.Second)

	page, err := fetcher.Fetch(context.Background(), fetch.Chapter{Ordinal: 1, Locator: srv.URL + "/s/1/1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page != testsupport.SamplePage(1) {
		t.Fatal("page body mismatch")
	}
	if userAgent != "quire-test/1.0" {
		t.Fatalf("user agent = %q", userAgent)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "not found", path: "/s/1/9", want: "HTTP 404"},
		{name: "bad shape", path: "/s/1/2", want: "validate page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetcher.Fetch(context.Background(), fetch.Chapter{Ordinal: 9, Locator: srv.URL + tt.path})
			if !errors.Is(err, services.ErrFetch) {
				t.Fatalf("expected fetch error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q missing %q", err, tt.want)
			}
		})
	}
}

type stubBrowser struct {
	urls []string
	page string
	err  error
}

func (s *stubBrowser) PageSource(_ context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	return s.page, s.err
}

func TestBrowserFetcher(t *testing.T) {
	browser := &stubBrowser{page: testsupport.SamplePage(5)}
	f := fetch.BrowserFetcher{Browser: browser}

	page, err := f.Fetch(context.Background(), fetch.Chapter{Ordinal: 5, Locator: "https://example.test/s/1/5"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page != testsupport.SamplePage(5) {
		t.Fatal("page mismatch")
	}
	if len(browser.urls) != 1 || browser.urls[0] != "https://example.test/s/1/5" {
		t.Fatalf("browser urls = %v", browser.urls)
	}

	browser.err = errors.New("chrome crashed")
	_, err = f.Fetch(context.Background(), fetch.Chapter{Ordinal: 5, Locator: "https://example.test/s/1/5"})
	if !errors.Is(err, services.ErrFetch) || !strings.Contains(err.Error(), "chrome crashed") {
		t.Fatalf("expected wrapped browser error, got %v", err)
	}
}

type countingFetcher struct {
	calls int
}

func (c *countingFetcher) Fetch(context.Context, fetch.Chapter) (string, error) {
	c.calls++
	return "page", nil
}

func TestPacedWithoutIntervalDoesNotWait(t *testing.T) {
	inner := &countingFetcher{}
	paced := fetch.NewPaced(inner, 0)
	for i := 1; i <= 3; i++ {
		if _, err := paced.Fetch(context.Background(), fetch.Chapter{Ordinal: i}); err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
	}
	if inner.calls != 3 {
		t.Fatalf("calls = %d", inner.calls)
	}
}

func TestPacedHonoursCancellation(t *testing.T) {
	inner := &countingFetcher{}
	paced := fetch.NewPaced(inner, time.Hour)
	if _, err := paced.Fetch(context.Background(), fetch.Chapter{Ordinal: 1}); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := paced.Fetch(ctx, fetch.Chapter{Ordinal: 2})
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner fetcher called %d times", inner.calls)
	}
}

func TestSeedFetcherHealth(t *testing.T) {
	dir := t.TempDir()
	if h := (fetch.SeedFetcher{Dir: dir}).HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected ready, got %+v", h)
	}
	paced := fetch.NewPaced(fetch.SeedFetcher{Dir: dir + "/missing"}, 0)
	if h := paced.HealthCheck(context.Background()); h.Ready || h.Name != "seed" {
		t.Fatalf("expected unready seed health, got %+v", h)
	}
}
