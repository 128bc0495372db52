package cache

// SQL schemas for cache tables.
// All cache tables use "cache_key" as the primary key column for consistency.

// CoverURLTable maps a book identifier (catalog id or ISBN) to its cover image URL.
const CoverURLTable = "cover_url_cache"

// CoverURLCacheSchema defines the schema for the cover URL cache
const CoverURLCacheSchema = `
CREATE TABLE IF NOT EXISTS cover_url_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cover_url_cached_at ON cover_url_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	CoverURLCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names.
// Table names are interpolated into SQL, so only these are accepted.
var ValidCacheTableNames = map[string]bool{
	CoverURLTable: true,
}

