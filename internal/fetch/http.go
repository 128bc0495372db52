package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	apperrors "github.com/lepinkainen/bookstw/internal/errors"
	"github.com/lepinkainen/bookstw/internal/ratelimit"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 8 << 20
	defaultRatePerSec   = 2
)

// ErrBodyTooLarge is returned when a response exceeds the body size cap.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPFetcher fetches URLs over plain HTTP.
type HTTPFetcher struct {
	client       HTTPDoer
	userAgent    string
	limiter      *ratelimit.Limiter
	maxBodyBytes int64
}

// Compile-time check that HTTPFetcher implements Fetcher.
var _ Fetcher = (*HTTPFetcher)(nil)

// Option is a functional option for configuring the HTTPFetcher.
type Option func(*HTTPFetcher)

// NewHTTPFetcher creates a fetcher with a 30s client timeout and gentle pacing.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:       &http.Client{Timeout: defaultTimeout},
		userAgent:    DefaultUserAgent,
		limiter:      ratelimit.New("books.com.tw", defaultRatePerSec),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithTimeout sets the client-level timeout of the default HTTP client.
// It has no effect on a client supplied through WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if c, ok := f.client.(*http.Client); ok && d > 0 {
			c.Timeout = d
		}
	}
}

// Timeout reports the client-level timeout, or 0 for a custom client.
func (f *HTTPFetcher) Timeout() time.Duration {
	if c, ok := f.client.(*http.Client); ok {
		return c.Timeout
	}
	return 0
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithRateLimiter sets a custom rate limiter.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(f *HTTPFetcher) {
		if l != nil {
			f.limiter = l
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// Fetch GETs url and returns the body.
// Non-2xx answers become *errors.FetchError, HTTP 429 becomes *errors.RateLimitError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	slog.Debug("Fetching", "url", url)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.NewRateLimitErrorWithRetry(
			fmt.Sprintf("books.com.tw rate limited request to %s", url),
			parseRetryAfter(resp.Header.Get("Retry-After")),
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewFetchError(url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, f.maxBodyBytes)
	}
	return decodeCharset(resp.Header.Get("Content-Type"), body)
}

// decodeCharset converts text responses declared in a non-UTF-8 charset
// (Big5 still shows up on older catalogue pages) to UTF-8.
func decodeCharset(contentType string, body []byte) ([]byte, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "text/") {
		return body, nil
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", charset, err)
	}
	return decoded, nil
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
