// Package cover implements the cover command: download a book's cover from
// books.com.tw and save it as a resized JPEG.
package cover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookstw/internal/fileutil"
	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
)

// Options control one cover download.
type Options struct {
	Query metadata.Query
	Label string
	// Output is the destination file; empty derives "<label> - cover.jpg".
	Output    string
	MaxWidth  int
	Overwrite bool
}

// Run downloads the cover for opts.Query and saves it.
func Run(ctx context.Context, src source.Source, opts Options) (*fileutil.CoverSaveResult, error) {
	path := opts.Output
	if path == "" {
		path = fileutil.BuildCoverFilename(opts.Label)
	}

	if fileutil.FileExists(path) && !opts.Overwrite {
		slog.Info("Cover file exists, skipping download", "path", path)
		return &fileutil.CoverSaveResult{Path: path}, nil
	}

	cover, err := src.DownloadCover(ctx, opts.Query)
	if err != nil {
		if errors.Is(err, source.ErrNoCover) {
			slog.Warn("No cover found", "query", opts.Label)
		}
		return nil, fmt.Errorf("cover for %q: %w", opts.Label, err)
	}
	slog.Debug("Downloaded cover", "url", cover.URL, "content_type", cover.ContentType, "bytes", len(cover.Data))

	return fileutil.SaveCover(cover.Data, fileutil.CoverSaveOptions{
		Path:      path,
		MaxWidth:  opts.MaxWidth,
		Overwrite: opts.Overwrite,
	})
}
