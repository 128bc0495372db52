package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookstw/cmd/cover"
	"github.com/lepinkainen/bookstw/cmd/identify"
	"github.com/lepinkainen/bookstw/internal/bookstw"
	"github.com/lepinkainen/bookstw/internal/config"
	"github.com/lepinkainen/bookstw/internal/fileutil"
	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
	"github.com/lepinkainen/bookstw/internal/testutil"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	cli := &CLI{}
	parser, err := newParser(cli, kong.Exit(func(code int) {
		t.Fatalf("unexpected Kong exit %d", code)
	}))
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, ctx
}

// stubCommands replaces the plugin factory and command runners for one test.
func stubCommands(t *testing.T) {
	t.Helper()
	origPlugin, origIdentify, origCover := newPlugin, runIdentify, runCover
	t.Cleanup(func() {
		newPlugin, runIdentify, runCover = origPlugin, origIdentify, origCover
	})

	newPlugin = func() (*bookstw.Plugin, func()) { return bookstw.New(), func() {} }
}

func TestIdentifyCommandParsing(t *testing.T) {
	testutil.ResetConfig(t)

	cli, ctx := parseCLI(t, "identify",
		"--isbn", "9787302527459",
		"--id", "CN11363245",
		"-t", "ROS2",
		"-a", "丁亮", "-a", "曹亞軍",
		"-f", "yaml", "--merge", "-o", "out.yaml")

	assert.Equal(t, "identify", ctx.Command())
	assert.Equal(t, "9787302527459", cli.Identify.ISBN)
	assert.Equal(t, "CN11363245", cli.Identify.ID)
	assert.Equal(t, "ROS2", cli.Identify.Title)
	assert.Equal(t, []string{"丁亮", "曹亞軍"}, cli.Identify.Authors)
	assert.Equal(t, "yaml", cli.Identify.Format)
	assert.True(t, cli.Identify.Merge)
	assert.False(t, cli.Identify.Interactive)
	assert.Contains(t, cli.Identify.Output, "out.yaml")
}

func TestCLIDefaultFlags(t *testing.T) {
	testutil.ResetConfig(t)

	cli, _ := parseCLI(t, "cover", "--isbn", "9787302527459")

	assert.False(t, cli.Debug)
	assert.False(t, cli.Overwrite)
	assert.False(t, cli.Browser)
	assert.Empty(t, cli.CacheBackend)
	assert.Equal(t, 1000, cli.Cover.MaxWidth)
	assert.Empty(t, cli.Cover.Output)
}

func TestCacheCommandParsing(t *testing.T) {
	testutil.ResetConfig(t)

	_, ctx := parseCLI(t, "cache", "invalidate")
	assert.Contains(t, ctx.Command(), "cache invalidate")

	_, ctx = parseCLI(t, "cache", "prune")
	assert.Equal(t, "cache prune", ctx.Command())
}

func TestUpdateGlobalConfig(t *testing.T) {
	testutil.ResetConfig(t)
	config.SetDefaults()

	updateGlobalConfig(&CLI{})
	assert.False(t, config.OverwriteFiles)
	assert.False(t, config.UseBrowser)
	assert.Equal(t, "sqlite", config.CacheBackend())
	assert.Equal(t, config.DefaultCacheTTL, config.CacheTTL())

	updateGlobalConfig(&CLI{
		Overwrite:    true,
		Browser:      true,
		CacheBackend: "leveldb",
		CacheDBFile:  "/tmp/cache.db",
		CacheTTL:     "12h",
	})
	assert.True(t, config.OverwriteFiles)
	assert.True(t, config.UseBrowser)
	assert.Equal(t, "leveldb", viper.GetString("cache.backend"))
	assert.Equal(t, "/tmp/cache.db", config.CacheDBFile())
	assert.Equal(t, 12*time.Hour, config.CacheTTL())
}

func TestInitConfigWritesDefaultsAndReadsEnv(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.Chdir(".")
	env.SetEnv("BOOKSTW_CACHE_TTL", "1h")

	initConfig()

	assert.True(t, env.FileExists("config.yaml"))
	assert.Equal(t, time.Hour, config.CacheTTL())
	assert.Equal(t, config.DefaultMaxFetches, config.MaxFetches())
}

func TestInitLogging(t *testing.T) {
	require.NotPanics(t, func() { initLogging(false) })
	require.NotPanics(t, func() { initLogging(true) })
}

func TestIdentifyCmdRun(t *testing.T) {
	testutil.ResetConfig(t)
	stubCommands(t)
	config.OverwriteFiles = true

	var got identify.Options
	runIdentify = func(_ context.Context, src source.Source, opts identify.Options) error {
		assert.Equal(t, bookstw.Name, src.Name())
		got = opts
		return nil
	}

	cli, ctx := parseCLI(t, "identify", "--isbn", "9787302527459", "-f", "yaml", "-i")
	updateGlobalConfig(cli)
	require.NoError(t, ctx.Run())

	assert.Equal(t, "9787302527459", got.Query.Identifier(metadata.IdentifierISBN))
	assert.Equal(t, "isbn:9787302527459", got.Label)
	assert.Equal(t, "yaml", got.Format)
	assert.True(t, got.Interactive)
	assert.True(t, got.Overwrite)
}

func TestCommandsRequireQuery(t *testing.T) {
	testutil.ResetConfig(t)
	stubCommands(t)
	newPlugin = func() (*bookstw.Plugin, func()) {
		t.Fatal("plugin must not be built for an empty query")
		return nil, nil
	}

	for _, args := range [][]string{{"identify"}, {"cover"}} {
		_, ctx := parseCLI(t, args...)
		err := ctx.Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nothing to look up")
	}
}

func TestCoverCmdRun(t *testing.T) {
	testutil.ResetConfig(t)
	stubCommands(t)

	var got cover.Options
	runCover = func(_ context.Context, _ source.Source, opts cover.Options) (*fileutil.CoverSaveResult, error) {
		got = opts
		return &fileutil.CoverSaveResult{Path: "x.jpg"}, nil
	}

	_, ctx := parseCLI(t, "cover", "--id", "CN11363245", "--max-width", "300")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "CN11363245", got.Query.Identifier(metadata.IdentifierBooksTW))
	assert.Equal(t, "bookstw-CN11363245", got.Label)
	assert.Equal(t, 300, got.MaxWidth)

	_, ctx = parseCLI(t, "cover", "-t", "再啟動")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "再啟動", got.Label)
}

func TestPingCmdRun(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	testutil.SetTestConfig(t, srv.URL)
	viper.Set("cache.backend", "memory")

	_, ctx := parseCLI(t, "ping")
	err := ctx.Run()
	require.Error(t, err, "search page is not served yet")

	srv.HandleHTML("/search/query/key/Go語言/cat/BKA", "<html></html>")
	require.NoError(t, ctx.Run())
}

// captureOutput swaps os.Stdout and os.Stderr for pipes until the returned
// func is called, which restores them and returns what was written.
func captureOutput(t *testing.T) func() (stdout, stderr string) {
	t.Helper()

	origOut, origErr := os.Stdout, os.Stderr
	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout, os.Stderr = outW, errW

	read := func(r *os.File) <-chan string {
		ch := make(chan string, 1)
		go func() {
			data, _ := io.ReadAll(r)
			ch <- string(data)
		}()
		return ch
	}
	outCh, errCh := read(outR), read(errR)

	restored := false
	restore := func() {
		if restored {
			return
		}
		restored = true
		os.Stdout, os.Stderr = origOut, origErr
		_ = outW.Close()
		_ = errW.Close()
	}
	t.Cleanup(restore)

	return func() (string, string) {
		restore()
		return <-outCh, <-errCh
	}
}

func TestIdentifyCmdStdoutIsPureJSON(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	testutil.SetTestConfig(t, srv.URL)
	viper.Set("cache.backend", "memory")
	srv.HandleFile(t, "/search/query/key/9787302527459/cat/BKA", "../internal/bookstw/testdata/search_isbn.html")
	srv.HandleFile(t, "/products/CN11363245", "../internal/bookstw/testdata/product_CN11363245.html")

	origLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origLogger) })

	finish := captureOutput(t)
	initLogging(false)

	_, ctx := parseCLI(t, "identify", "--isbn", "9787302527459")
	runErr := ctx.Run()
	stdout, stderr := finish()
	require.NoError(t, runErr)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records), "stdout: %q", stdout)
	require.Len(t, records, 1)
	assert.Equal(t, "ROS2源代碼分析與工程應用", records[0]["title"])

	assert.Contains(t, stderr, "Fetching book details")
	assert.Contains(t, stderr, "Identify finished")
}
