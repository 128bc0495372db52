// Package covercache remembers which cover image URL belongs to a book
// identifier so a later cover download can skip the detail page.
package covercache

import (
	"fmt"
	"strings"
	"time"

	"github.com/lepinkainen/bookstw/internal/cache"
	"github.com/lepinkainen/bookstw/internal/config"
)

// Cache maps identifiers (catalog ids and ISBNs) to cover URLs.
// Implementations are safe for concurrent use.
type Cache interface {
	CoverURL(id string) (string, bool)
	SetCoverURL(id, url string) error
}

// Store is a Cache with maintenance operations, owned by the host.
type Store interface {
	Cache
	// Prune drops expired entries and reports how many were removed.
	Prune() (int64, error)
	// Clear drops every entry and reports how many were removed.
	Clear() (int64, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendSQLite  = "sqlite"
	BackendLevelDB = "leveldb"
)

// Options locate the persistent backends.
type Options struct {
	DBFile     string
	LevelDBDir string
	TTL        time.Duration
}

// Open returns the named backend.
func Open(backend string, opts Options) (Store, error) {
	if opts.TTL <= 0 {
		opts.TTL = config.DefaultCacheTTL
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite, "":
		db, err := cache.Open(opts.DBFile)
		if err != nil {
			return nil, err
		}
		return NewSQLite(db, opts.TTL), nil
	case BackendLevelDB:
		return NewLevelDB(opts.LevelDBDir, opts.TTL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want %s, %s or %s)", backend, BackendSQLite, BackendLevelDB, BackendMemory)
	}
}

// OpenFromConfig opens the backend selected by cache.backend. The SQLite
// backend shares the process-wide cache database.
func OpenFromConfig() (Store, error) {
	backend := config.CacheBackend()
	if backend == BackendSQLite {
		db, err := cache.GetGlobalCache()
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		s := NewSQLite(db, config.CacheTTL())
		s.closeFn = cache.ResetGlobalCache
		return s, nil
	}
	return Open(backend, Options{
		DBFile:     config.CacheDBFile(),
		LevelDBDir: config.CacheLevelDBDir(),
		TTL:        config.CacheTTL(),
	})
}
