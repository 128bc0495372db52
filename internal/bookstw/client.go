// Package bookstw looks up book metadata and covers on books.com.tw by
// scraping its search and product pages.
package bookstw

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lepinkainen/bookstw/internal/config"
	"github.com/lepinkainen/bookstw/internal/covercache"
	"github.com/lepinkainen/bookstw/internal/fetch"
	"github.com/lepinkainen/bookstw/internal/source"
)

// Name is the human-readable source name, also stamped on every record.
const Name = "BooksTW"

// MaxDetailFetches caps detail page fetches per identify request.
const MaxDetailFetches = config.DefaultMaxFetches

// pingKey is an arbitrary search term that always has hits.
const pingKey = "Go語言"

// Plugin is the books.com.tw metadata source.
type Plugin struct {
	pages      fetch.Fetcher
	images     fetch.Fetcher
	covers     covercache.Cache
	log        *slog.Logger
	timeout    time.Duration
	searchURL  string
	productURL string
	maxFetches int
}

// Compile-time check that Plugin implements source.Source.
var _ source.Source = (*Plugin)(nil)

// Option is a functional option for configuring the Plugin.
type Option func(*Plugin)

// New creates a plugin that talks to the live site over plain HTTP and keeps
// cover URLs in memory.
func New(opts ...Option) *Plugin {
	httpFetcher := fetch.NewHTTPFetcher()
	p := &Plugin{
		pages:      httpFetcher,
		images:     httpFetcher,
		covers:     covercache.NewMemory(),
		log:        slog.Default().With("source", "bookstw"),
		timeout:    config.DefaultTimeout,
		searchURL:  config.DefaultSearchURL,
		productURL: config.DefaultProductURL,
		maxFetches: MaxDetailFetches,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithFetcher sets the fetcher used for search and product pages.
func WithFetcher(f fetch.Fetcher) Option {
	return func(p *Plugin) {
		if f != nil {
			p.pages = f
		}
	}
}

// WithImageFetcher sets the fetcher used for cover images.
func WithImageFetcher(f fetch.Fetcher) Option {
	return func(p *Plugin) {
		if f != nil {
			p.images = f
		}
	}
}

// WithCoverCache sets the host's cover URL cache.
func WithCoverCache(c covercache.Cache) Option {
	return func(p *Plugin) {
		if c != nil {
			p.covers = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.log = l
		}
	}
}

// WithTimeout bounds each individual fetch.
func WithTimeout(d time.Duration) Option {
	return func(p *Plugin) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithSearchURL overrides the search URL template (one %s for the key).
func WithSearchURL(tmpl string) Option {
	return func(p *Plugin) {
		if tmpl != "" {
			p.searchURL = tmpl
		}
	}
}

// WithProductURL overrides the product URL template (one %s for the id).
func WithProductURL(tmpl string) Option {
	return func(p *Plugin) {
		if tmpl != "" {
			p.productURL = tmpl
		}
	}
}

// WithMaxFetches overrides the detail fetch cap.
func WithMaxFetches(n int) Option {
	return func(p *Plugin) {
		if n > 0 {
			p.maxFetches = n
		}
	}
}

// Name returns the source name.
func (p *Plugin) Name() string {
	return Name
}

// Capabilities reports identify and cover support.
func (p *Plugin) Capabilities() []source.Capability {
	return []source.Capability{source.CapabilityIdentify, source.CapabilityCover}
}

// Ping runs one search to check the site is reachable.
func (p *Plugin) Ping(ctx context.Context) error {
	if _, err := p.fetch(ctx, p.pages, p.searchPageURL(pingKey)); err != nil {
		return fmt.Errorf("pinging %s: %w", Name, err)
	}
	return nil
}

// fetch applies the per-fetch timeout.
func (p *Plugin) fetch(ctx context.Context, f fetch.Fetcher, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return f.Fetch(ctx, u)
}

func (p *Plugin) searchPageURL(key string) string {
	return fmt.Sprintf(p.searchURL, url.PathEscape(key))
}

func (p *Plugin) productPageURL(id string) string {
	return fmt.Sprintf(p.productURL, url.PathEscape(id))
}
