package covercache

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookstw/internal/config"
)

// openStore is swapped in tests.
var openStore = OpenFromConfig

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache to invalidate: covers" enum:"covers" default:"covers"`
}

func (i *InvalidateCacheCmd) Run() error {
	slog.Info("Invalidating cache", "source", i.Source, "backend", config.CacheBackend())

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open cover cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	rowsDeleted, err := store.Clear()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

// PruneCacheCmd removes entries older than cache.ttl.
type PruneCacheCmd struct{}

func (p *PruneCacheCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open cover cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	removed, err := store.Prune()
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}

	slog.Info("Cache pruned", "backend", config.CacheBackend(), "ttl", config.CacheTTL(), "removed", removed)
	return nil
}
