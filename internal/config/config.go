package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults for the books.com.tw source and the cover cache.
const (
	DefaultSearchURL  = "https://search.books.com.tw/search/query/key/%s/cat/BKA"
	DefaultProductURL = "https://www.books.com.tw/products/%s"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxFetches = 5
	DefaultRateLimit  = 2.0
	DefaultCacheTTL   = 720 * time.Hour
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing output files should be overwritten
	OverwriteFiles bool
	// UseBrowser fetches pages through headless Chrome instead of plain HTTP
	UseBrowser bool
)

// SetDefaults registers every known key with viper.
func SetDefaults() {
	viper.SetDefault("bookstw.searchurl", DefaultSearchURL)
	viper.SetDefault("bookstw.producturl", DefaultProductURL)
	viper.SetDefault("bookstw.timeout", DefaultTimeout.String())
	viper.SetDefault("bookstw.maxfetches", DefaultMaxFetches)
	viper.SetDefault("bookstw.ratelimit", DefaultRateLimit)
	viper.SetDefault("bookstw.useragent", "")
	viper.SetDefault("bookstw.browser", false)
	viper.SetDefault("bookstw.headless", true)

	viper.SetDefault("cache.backend", "sqlite")
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.leveldbdir", "./cache.ldb")
	viper.SetDefault("cache.ttl", DefaultCacheTTL.String())

	viper.SetDefault("OverwriteFiles", false)
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	OverwriteFiles = viper.GetBool("OverwriteFiles")
	UseBrowser = viper.GetBool("bookstw.browser")
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// SearchURL returns the search URL template; %s receives the escaped key.
func SearchURL() string {
	return stringOr("bookstw.searchurl", DefaultSearchURL)
}

// ProductURL returns the product page URL template; %s receives the catalog id.
func ProductURL() string {
	return stringOr("bookstw.producturl", DefaultProductURL)
}

// Timeout returns the per-fetch timeout.
func Timeout() time.Duration {
	return durationOr("bookstw.timeout", DefaultTimeout)
}

// MaxFetches returns the detail fetch cap per identify request.
func MaxFetches() int {
	if n := viper.GetInt("bookstw.maxfetches"); n > 0 {
		return n
	}
	return DefaultMaxFetches
}

// RateLimit returns the allowed requests per second toward the site.
// Zero disables pacing.
func RateLimit() float64 {
	if !viper.IsSet("bookstw.ratelimit") {
		return DefaultRateLimit
	}
	return viper.GetFloat64("bookstw.ratelimit")
}

// UserAgent returns the configured User-Agent override, or "".
func UserAgent() string {
	return viper.GetString("bookstw.useragent")
}

// Headless reports whether the browser fetcher hides its window.
func Headless() bool {
	if !viper.IsSet("bookstw.headless") {
		return true
	}
	return viper.GetBool("bookstw.headless")
}

// CacheBackend returns the cover cache backend name.
func CacheBackend() string {
	return stringOr("cache.backend", "sqlite")
}

// CacheDBFile returns the SQLite cache path.
func CacheDBFile() string {
	return stringOr("cache.dbfile", "./cache.db")
}

// CacheLevelDBDir returns the LevelDB cache directory.
func CacheLevelDBDir() string {
	return stringOr("cache.leveldbdir", "./cache.ldb")
}

// CacheTTL returns how long cached cover URLs stay valid.
func CacheTTL() time.Duration {
	return durationOr("cache.ttl", DefaultCacheTTL)
}

func stringOr(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
