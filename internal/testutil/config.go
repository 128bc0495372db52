package testutil

import (
	"testing"

	"github.com/lepinkainen/bookstw/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles bool
	UseBrowser     bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OverwriteFiles: config.OverwriteFiles,
		UseBrowser:     config.UseBrowser,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OverwriteFiles = state.OverwriteFiles
	config.UseBrowser = state.UseBrowser
}

// ResetConfig saves the current config state, resets viper, and schedules
// restoration when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestConfig resets config and points the source at baseURL, a test
// server standing in for both the search and product hosts.
func SetTestConfig(t *testing.T, baseURL string) {
	t.Helper()

	ResetConfig(t)
	config.OverwriteFiles = true
	config.UseBrowser = false

	viper.Set("bookstw.searchurl", baseURL+"/search/query/key/%s/cat/BKA")
	viper.Set("bookstw.producturl", baseURL+"/products/%s")
	viper.Set("bookstw.ratelimit", 0)
	viper.Set("bookstw.timeout", "5s")
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so an unset key stays at the test value
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupTestCache configures viper for test caching with a temporary directory.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	cacheDir := env.Path("cache")
	env.MkdirAll("cache")

	viper.Set("cache.dbfile", env.Path("cache", "test-cache.db"))
	viper.Set("cache.leveldbdir", env.Path("cache", "covers.ldb"))
	viper.Set("cache.ttl", "24h")

	return cacheDir
}
