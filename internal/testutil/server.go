package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// FixtureServer serves canned responses by request path and counts hits.
type FixtureServer struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]fixture
	hits   map[string]int
}

type fixture struct {
	status      int
	contentType string
	body        []byte
}

// NewFixtureServer starts a server bound to IPv4 loopback; unknown paths answer 404.
func NewFixtureServer(t *testing.T) *FixtureServer {
	t.Helper()

	fs := &FixtureServer{
		routes: make(map[string]fixture),
		hits:   make(map[string]int),
	}

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	fs.Server = httptest.NewUnstartedServer(http.HandlerFunc(fs.serve))
	fs.Listener = listener
	fs.Start()

	t.Cleanup(fs.Close)
	return fs
}

func (fs *FixtureServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	fs.hits[r.URL.Path]++
	f, ok := fs.routes[r.URL.Path]
	fs.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	w.WriteHeader(f.status)
	_, _ = w.Write(f.body)
}

// HandleHTML registers an HTML body for path.
func (fs *FixtureServer) HandleHTML(path, body string) {
	fs.Handle(path, http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

// HandleFile registers the content of a testdata file for path.
func (fs *FixtureServer) HandleFile(t *testing.T, path, file string) {
	t.Helper()

	body, err := os.ReadFile(filepath.Clean(file))
	require.NoError(t, err, "failed to read fixture %s", file)
	fs.Handle(path, http.StatusOK, "text/html; charset=utf-8", body)
}

// Handle registers an arbitrary response for path.
func (fs *FixtureServer) Handle(path string, status int, contentType string, body []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.routes[path] = fixture{status: status, contentType: contentType, body: body}
}

// Hits returns how many requests path received.
func (fs *FixtureServer) Hits(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits[path]
}

// TotalHits returns the number of requests received under every path with prefix.
func (fs *FixtureServer) TotalHits(prefix string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	total := 0
	for path, n := range fs.hits {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			total += n
		}
	}
	return total
}
