package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// BrowserOptions configures the headless browser fetcher.
type BrowserOptions struct {
	Headless  bool
	UserAgent string
	// Timeout bounds a single page load; zero means 30s.
	Timeout time.Duration
}

// BrowserFetcher renders pages in a Chrome instance driven by chromedp.
// It is used for search and product pages when the site refuses plain HTTP
// clients; images still go through an HTTPFetcher.
type BrowserFetcher struct {
	opts BrowserOptions

	mu             sync.Mutex
	browserCtx     context.Context
	cancelBrowser  context.CancelFunc
	cancelAllocate context.CancelFunc
}

// Compile-time check that BrowserFetcher implements Fetcher.
var _ Fetcher = (*BrowserFetcher)(nil)

// NewBrowserFetcher creates a fetcher; the browser starts on first use.
func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	return &BrowserFetcher{opts: opts}
}

func buildExecAllocatorOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(opts.UserAgent),
	}
}

func (b *BrowserFetcher) browser() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		allocCtx, cancelAllocate := chromedpExecAllocator(context.Background(), buildExecAllocatorOptions(b.opts)...)
		browserCtx, cancelBrowser := chromedpContext(allocCtx)
		b.browserCtx = browserCtx
		b.cancelBrowser = cancelBrowser
		b.cancelAllocate = cancelAllocate
		slog.Debug("Started browser for page fetches", "headless", b.opts.Headless)
	}
	return b.browserCtx
}

// Fetch loads url in a new tab and returns the rendered document HTML.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	tabCtx, cancelTab := chromedpContext(b.browser())
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancelTimeout()

	// Cancelling the caller's context closes the tab.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	tasks := chromedp.Tasks{
		emulation.SetUserAgentOverride(b.opts.UserAgent).WithAcceptLanguage("zh-TW"),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedpRunner(tabCtx, tasks); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("browser fetch of %s: %w", url, ctxErr)
		}
		return nil, fmt.Errorf("browser fetch of %s: %w", url, err)
	}
	if html == "" {
		return nil, errors.New("browser fetch of " + url + ": empty document")
	}
	return []byte(html), nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelBrowser != nil {
		b.cancelBrowser()
	}
	if b.cancelAllocate != nil {
		b.cancelAllocate()
	}
	b.browserCtx = nil
	b.cancelBrowser = nil
	b.cancelAllocate = nil
	return nil
}
