package fileutil

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultCoverWidth is the width covers are scaled down to when no limit is given.
const DefaultCoverWidth = 1000

// CoverSaveOptions controls how a downloaded cover is written to disk.
type CoverSaveOptions struct {
	// Path is the destination file; the extension picks the encoder.
	Path string
	// MaxWidth scales wider images down, keeping the aspect ratio.
	// Zero uses DefaultCoverWidth, a negative value keeps the original size.
	MaxWidth int
	// Overwrite replaces an existing file.
	Overwrite bool
}

// CoverSaveResult reports what SaveCover did.
type CoverSaveResult struct {
	Written bool
	Path    string
	Width   int
	Height  int
}

// SaveCover decodes image data, resizes it to fit MaxWidth and saves it.
// An existing file is left untouched unless Overwrite is set.
func SaveCover(data []byte, opts CoverSaveOptions) (*CoverSaveResult, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("cover path is empty")
	}

	result := &CoverSaveResult{Path: opts.Path}
	if FileExists(opts.Path) && !opts.Overwrite {
		slog.Debug("Cover already exists, skipping", "path", opts.Path)
		return result, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}

	maxWidth := opts.MaxWidth
	if maxWidth == 0 {
		maxWidth = DefaultCoverWidth
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cover directory: %w", err)
	}

	if err := imaging.Save(img, opts.Path, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	result.Written = true
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()
	slog.Info("Saved cover", "path", opts.Path, "width", result.Width, "height", result.Height)
	return result, nil
}

// BuildCoverFilename creates a standard cover filename from a title.
// Returns: "Title - cover.jpg"
func BuildCoverFilename(title string) string {
	return SanitizeFilename(title) + " - cover.jpg"
}
