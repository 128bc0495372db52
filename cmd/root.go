package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookstw/internal/config"
	"github.com/lepinkainen/bookstw/internal/covercache"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// CLI represents the complete command structure for the bookstw application
type CLI struct {
	// Global flags
	Debug     bool `help:"Enable debug logging"`
	Overwrite bool `help:"Overwrite existing output files"`
	Browser   bool `help:"Fetch search and product pages through headless Chrome"`

	// Cache flags, empty keeps the value from config.yaml
	CacheBackend string `help:"Cover cache backend: sqlite, leveldb or memory"`
	CacheDBFile  string `help:"Path to cache SQLite database file"`
	CacheTTL     string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`

	Identify IdentifyCmd `cmd:"" help:"Look a book up on books.com.tw and print its metadata"`
	Cover    CoverCmd    `cmd:"" help:"Download a book cover from books.com.tw"`
	Ping     PingCmd     `cmd:"" help:"Check that books.com.tw is reachable"`
	Cache    CacheCmd    `cmd:"" help:"Maintain the cover URL cache"`
}

// CacheCmd groups the cover cache maintenance commands
type CacheCmd struct {
	Invalidate covercache.InvalidateCacheCmd `cmd:"" help:"Drop every cached cover URL"`
	Prune      covercache.PruneCacheCmd      `cmd:"" help:"Drop cover URLs older than cache.ttl"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("bookstw"),
		kong.Description("Fetch book metadata and covers from books.com.tw."),
		kong.UsageOnError(),
	}
	return kong.New(cli, append(base, options...)...)
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	initLogging(cli.Debug)
	initConfig()
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	viper.SetEnvPrefix("BOOKSTW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.Overwrite {
		config.SetOverwriteFiles(true)
	}
	if cli.Browser {
		config.UseBrowser = true
	}

	if cli.CacheBackend != "" {
		viper.Set("cache.backend", cli.CacheBackend)
	}
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
}

// initLogging logs to stderr; stdout carries identify output.
func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

// commandContext is cancelled on Ctrl-C so in-flight fetches stop.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
