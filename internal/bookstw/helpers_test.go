package bookstw

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lepinkainen/bookstw/internal/covercache"
	"github.com/lepinkainen/bookstw/internal/fetch"
	"github.com/lepinkainen/bookstw/internal/ratelimit"
	"github.com/lepinkainen/bookstw/internal/testutil"
)

const (
	testISBN      = "9787302527459"
	testCatalogID = "CN11363245"
)

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func searchPath(key string) string {
	return "/search/query/key/" + key + "/cat/BKA"
}

func productPath(id string) string {
	return "/products/" + id
}

// imageStub records requested image URLs and answers with a JPEG header.
type imageStub struct {
	mu   sync.Mutex
	urls []string
	err  error
	body []byte
}

func (s *imageStub) Fetch(_ context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	if s.body != nil {
		return s.body, nil
	}
	return jpegBytes, nil
}

func (s *imageStub) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.urls...)
}

type testPlugin struct {
	*Plugin
	srv    *testutil.FixtureServer
	covers *covercache.Memory
	images *imageStub
}

func newTestPlugin(t *testing.T, opts ...Option) *testPlugin {
	t.Helper()

	srv := testutil.NewFixtureServer(t)
	covers := covercache.NewMemory()
	images := &imageStub{}
	pages := fetch.NewHTTPFetcher(
		fetch.WithHTTPClient(srv.Client()),
		fetch.WithRateLimiter(ratelimit.New("test", 0)),
	)

	base := []Option{
		WithFetcher(pages),
		WithImageFetcher(images),
		WithCoverCache(covers),
		WithSearchURL(srv.URL + "/search/query/key/%s/cat/BKA"),
		WithProductURL(srv.URL + "/products/%s"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return &testPlugin{
		Plugin: New(append(base, opts...)...),
		srv:    srv,
		covers: covers,
		images: images,
	}
}
