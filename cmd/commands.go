package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/bookstw/cmd/cover"
	"github.com/lepinkainen/bookstw/cmd/identify"
	"github.com/lepinkainen/bookstw/internal/cmdutil"
	"github.com/lepinkainen/bookstw/internal/config"
)

var (
	newPlugin   = cmdutil.NewPlugin
	runIdentify = identify.Run
	runCover    = cover.Run
)

// IdentifyCmd represents the identify command
type IdentifyCmd struct {
	cmdutil.QueryFlags `embed:""`

	Format      string `short:"f" help:"Output format" enum:"json,yaml" default:"json"`
	Merge       bool   `help:"Merge all records found into one"`
	Interactive bool   `short:"i" help:"Pick one record in an interactive list"`
	Output      string `short:"o" help:"Write to this file instead of stdout" type:"path"`
}

// CoverCmd represents the cover command
type CoverCmd struct {
	cmdutil.QueryFlags `embed:""`

	Output   string `short:"o" help:"Cover file path (defaults to '<title> - cover.jpg')" type:"path"`
	MaxWidth int    `help:"Scale covers wider than this down; negative keeps the original size" default:"1000"`
}

// PingCmd represents the ping command
type PingCmd struct{}

func (c *IdentifyCmd) Run() error {
	if err := c.Check(); err != nil {
		return err
	}

	plugin, cleanup := newPlugin()
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	return runIdentify(ctx, plugin, identify.Options{
		Query:       c.Query(),
		Label:       c.Label(),
		Format:      c.Format,
		Merge:       c.Merge,
		Interactive: c.Interactive,
		Output:      c.Output,
		Overwrite:   config.OverwriteFiles,
	})
}

func (c *CoverCmd) Run() error {
	if err := c.Check(); err != nil {
		return err
	}

	plugin, cleanup := newPlugin()
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	label := c.Title
	if label == "" {
		label = strings.NewReplacer(":", "-").Replace(c.Label())
	}

	result, err := runCover(ctx, plugin, cover.Options{
		Query:     c.Query(),
		Label:     label,
		Output:    c.Output,
		MaxWidth:  c.MaxWidth,
		Overwrite: config.OverwriteFiles,
	})
	if err != nil {
		return err
	}
	if result.Written {
		fmt.Println(result.Path)
	}
	return nil
}

func (p *PingCmd) Run() error {
	plugin, cleanup := newPlugin()
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	if err := plugin.Ping(ctx); err != nil {
		return err
	}
	slog.Info("books.com.tw is reachable", "source", plugin.Name())
	return nil
}
