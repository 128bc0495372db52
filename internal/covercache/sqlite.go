package covercache

import (
	"log/slog"
	"time"

	"github.com/lepinkainen/bookstw/internal/cache"
)

// SQLite stores cover URLs in the cover_url_cache table.
type SQLite struct {
	db      *cache.CacheDB
	ttl     time.Duration
	closeFn func() error
}

var _ Store = (*SQLite)(nil)

// NewSQLite wraps an open cache database. Close closes db.
func NewSQLite(db *cache.CacheDB, ttl time.Duration) *SQLite {
	return &SQLite{db: db, ttl: ttl, closeFn: db.Close}
}

// CoverURL returns the cached URL; lookup errors count as a miss.
func (s *SQLite) CoverURL(id string) (string, bool) {
	url, ok, err := s.db.Get(cache.CoverURLTable, id, s.ttl)
	if err != nil {
		slog.Warn("Cover cache lookup failed", "id", id, "error", err)
		return "", false
	}
	return url, ok && url != ""
}

func (s *SQLite) SetCoverURL(id, url string) error {
	if id == "" || url == "" {
		return nil
	}
	return s.db.Set(cache.CoverURLTable, id, url)
}

func (s *SQLite) Prune() (int64, error) {
	return s.db.ClearExpired(cache.CoverURLTable, s.ttl)
}

func (s *SQLite) Clear() (int64, error) {
	return s.db.InvalidateSource(cache.CoverURLTable)
}

func (s *SQLite) Close() error {
	return s.closeFn()
}
