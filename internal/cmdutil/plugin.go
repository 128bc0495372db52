package cmdutil

import (
	"log/slog"

	"github.com/lepinkainen/bookstw/internal/bookstw"
	"github.com/lepinkainen/bookstw/internal/config"
	"github.com/lepinkainen/bookstw/internal/covercache"
	"github.com/lepinkainen/bookstw/internal/fetch"
	"github.com/lepinkainen/bookstw/internal/ratelimit"
)

// openCoverCache is swapped in tests.
var openCoverCache = covercache.OpenFromConfig

// newHTTPFetcher applies the configured user agent, pacing and timeout.
func newHTTPFetcher() *fetch.HTTPFetcher {
	return fetch.NewHTTPFetcher(
		fetch.WithUserAgent(config.UserAgent()),
		fetch.WithRateLimiter(ratelimit.New("books.com.tw", config.RateLimit())),
		fetch.WithTimeout(config.Timeout()),
	)
}

// NewPlugin builds a books.com.tw source from the loaded configuration.
// The returned func releases the browser and the cover cache.
func NewPlugin() (*bookstw.Plugin, func()) {
	httpFetcher := newHTTPFetcher()

	var closers []func() error
	var pages fetch.Fetcher = httpFetcher
	if config.UseBrowser {
		browser := fetch.NewBrowserFetcher(fetch.BrowserOptions{
			Headless:  config.Headless(),
			UserAgent: config.UserAgent(),
			Timeout:   config.Timeout(),
		})
		pages = browser
		closers = append(closers, browser.Close)
	}

	var covers covercache.Cache
	store, err := openCoverCache()
	if err != nil {
		slog.Warn("Cover cache unavailable, keeping cover URLs in memory", "backend", config.CacheBackend(), "error", err)
		covers = covercache.NewMemory()
	} else {
		covers = store
		closers = append(closers, store.Close)
	}

	plugin := bookstw.New(
		bookstw.WithFetcher(pages),
		bookstw.WithImageFetcher(httpFetcher),
		bookstw.WithCoverCache(covers),
		bookstw.WithTimeout(config.Timeout()),
		bookstw.WithSearchURL(config.SearchURL()),
		bookstw.WithProductURL(config.ProductURL()),
		bookstw.WithMaxFetches(config.MaxFetches()),
	)

	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				slog.Warn("Failed to release resource", "error", err)
			}
		}
	}
	return plugin, cleanup
}
