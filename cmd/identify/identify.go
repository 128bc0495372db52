// Package identify implements the identify command: look a book up on
// books.com.tw and print the records found.
package identify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "github.com/lepinkainen/bookstw/internal/errors"
	"github.com/lepinkainen/bookstw/internal/fileutil"
	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
	"github.com/lepinkainen/bookstw/internal/tui"
)

// selectRecord is swapped in tests.
var selectRecord = tui.Select

// Options control one identify run.
type Options struct {
	Query metadata.Query
	// Label names the query in logs and the picker header.
	Label string
	// Format is "json" or "yaml".
	Format string
	// Merge folds every record into one.
	Merge bool
	// Interactive lets the user pick a single record.
	Interactive bool
	// Output is a file path; empty writes to Stdout.
	Output    string
	Overwrite bool
	Stdout    io.Writer
}

// Run identifies the book described by opts and writes the result.
func Run(ctx context.Context, src source.Source, opts Options) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	var found source.Collector
	if err := src.Identify(ctx, opts.Query, &found); err != nil {
		if errors.Is(err, source.ErrNoResults) {
			slog.Warn("No books found", "query", opts.Label)
		}
		return fmt.Errorf("identify %q: %w", opts.Label, err)
	}

	records := found.Records()
	slog.Info("Identify finished", "query", opts.Label, "records", len(records))

	var result any = records
	switch {
	case opts.Merge:
		result = metadata.Merge(records...)
	case opts.Interactive:
		selection, err := selectRecord(opts.Label, records)
		if err != nil {
			return fmt.Errorf("record picker failed: %w", err)
		}
		switch selection.Action {
		case tui.ActionStopped:
			return apperrors.NewStopProcessingError("stopped by user")
		case tui.ActionSelected:
			result = selection.Selection
		default:
			slog.Info("Selection skipped", "query", opts.Label)
			return nil
		}
	}

	data, err := Render(result, opts.Format)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		_, err := opts.Stdout.Write(data)
		return err
	}

	written, err := fileutil.WriteFileWithOverwrite(opts.Output, data, 0o644, opts.Overwrite)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	if !written {
		slog.Info("Output file exists, skipping", "path", opts.Output)
		return nil
	}
	slog.Info("Wrote records", "path", opts.Output, "format", opts.Format)
	return nil
}
