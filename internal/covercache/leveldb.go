package covercache

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const coverKeyPrefix = "cover:"

// LevelDB stores cover URLs as "cover:<id>" -> "<unix seconds>|<url>".
type LevelDB struct {
	db  *leveldb.DB
	ttl time.Duration
	now func() time.Time
}

var _ Store = (*LevelDB)(nil)

// NewLevelDB opens or creates the database directory at path.
func NewLevelDB(path string, ttl time.Duration) (*LevelDB, error) {
	const op = "covercache.NewLevelDB"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LevelDB{db: db, ttl: ttl, now: time.Now}, nil
}

func (l *LevelDB) CoverURL(id string) (string, bool) {
	const op = "covercache.LevelDB.CoverURL"

	raw, err := l.db.Get([]byte(coverKeyPrefix+id), nil)
	if err != nil {
		if !errors.Is(err, leveldb.ErrNotFound) {
			slog.Warn("Cover cache lookup failed", "op", op, "id", id, "error", err)
		}
		return "", false
	}
	storedAt, url, ok := decodeEntry(raw)
	if !ok || l.expired(storedAt) {
		return "", false
	}
	return url, true
}

func (l *LevelDB) SetCoverURL(id, url string) error {
	const op = "covercache.LevelDB.SetCoverURL"

	if id == "" || url == "" {
		return nil
	}
	value := strconv.FormatInt(l.now().Unix(), 10) + "|" + url
	if err := l.db.Put([]byte(coverKeyPrefix+id), []byte(value), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *LevelDB) Prune() (int64, error) {
	const op = "covercache.LevelDB.Prune"

	return l.deleteWhere(op, func(value []byte) bool {
		storedAt, _, ok := decodeEntry(value)
		return !ok || l.expired(storedAt)
	})
}

func (l *LevelDB) Clear() (int64, error) {
	const op = "covercache.LevelDB.Clear"

	return l.deleteWhere(op, func([]byte) bool { return true })
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) deleteWhere(op string, match func(value []byte) bool) (int64, error) {
	batch := new(leveldb.Batch)

	iter := l.db.NewIterator(util.BytesPrefix([]byte(coverKeyPrefix)), nil)
	for iter.Next() {
		if match(iter.Value()) {
			// the iterator reuses its key buffer
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := l.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int64(batch.Len()), nil
}

func (l *LevelDB) expired(storedAt time.Time) bool {
	return l.ttl > 0 && l.now().Sub(storedAt) > l.ttl
}

func decodeEntry(raw []byte) (time.Time, string, bool) {
	stamp, url, found := strings.Cut(string(raw), "|")
	if !found || url == "" {
		return time.Time{}, "", false
	}
	secs, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return time.Time{}, "", false
	}
	return time.Unix(secs, 0), url, true
}
