package bookstw

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
)

// DownloadCover returns the cover image for q. The cover URL comes from the
// cache when an earlier identify saw the book; otherwise identify runs first
// to populate it.
func (p *Plugin) DownloadCover(ctx context.Context, q metadata.Query) (*source.Cover, error) {
	coverURL := p.cachedCoverURL(q.Identifier(metadata.IdentifierBooksTW), q.Identifier(metadata.IdentifierISBN))

	if coverURL == "" {
		p.log.Info("No cached cover found, running identify")
		var found source.Collector
		if err := p.Identify(ctx, q, &found); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !errors.Is(err, source.ErrNoResults) {
				p.log.Warn("Identify for cover failed", "error", err)
			}
		}

		coverURL = p.cachedCoverURL(q.Identifier(metadata.IdentifierBooksTW), q.Identifier(metadata.IdentifierISBN))
		for _, rec := range found.Records() {
			if coverURL != "" {
				break
			}
			coverURL = p.cachedCoverURL(rec.Identifier(metadata.IdentifierBooksTW), rec.Identifier(metadata.IdentifierISBN))
		}
	}

	if coverURL == "" {
		p.log.Info("Can't find the cover")
		return nil, source.ErrNoCover
	}

	data, err := p.fetch(ctx, p.images, coverURL)
	if err != nil {
		p.log.Info("Download image failed", "url", coverURL, "error", err)
		return nil, fmt.Errorf("%w: %w", source.ErrNoCover, err)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		p.log.Info("Cover URL did not return an image", "url", coverURL, "content_type", contentType)
		return nil, fmt.Errorf("%w: %s returned %s", source.ErrNoCover, coverURL, contentType)
	}

	return &source.Cover{URL: coverURL, ContentType: contentType, Data: data}, nil
}

// cachedCoverURL returns the first cached cover URL among ids.
func (p *Plugin) cachedCoverURL(ids ...string) string {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if u, ok := p.covers.CoverURL(id); ok {
			return u
		}
	}
	return ""
}
