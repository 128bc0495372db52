// Package source defines the contract between a metadata source and the host
// application that drives it.
package source

import (
	"context"

	"github.com/lepinkainen/bookstw/internal/metadata"
)

// Capability names an operation a source supports.
type Capability string

const (
	// CapabilityIdentify means the source can produce records for a query.
	CapabilityIdentify Capability = "identify"
	// CapabilityCover means the source can download cover images.
	CapabilityCover Capability = "cover"
)

// Source defines the interface a host uses to look up book metadata.
// Implementations contain their own failures: a failed search, page or field
// is logged and skipped rather than aborting the whole request.
type Source interface {
	// Name returns the human-readable name of the source (e.g., "BooksTW").
	Name() string

	// Capabilities lists the operations the source supports.
	Capabilities() []Capability

	// Ping tests the connection to the remote site.
	Ping(ctx context.Context) error

	// Identify puts every record found for q on queue.
	// Returns ErrNoResults when every search strategy came back empty.
	Identify(ctx context.Context, q metadata.Query, queue Queue) error

	// DownloadCover returns the cover image for q.
	// Returns ErrNoCover when no image could be produced.
	DownloadCover(ctx context.Context, q metadata.Query) (*Cover, error)
}

// Cover is a downloaded cover image.
type Cover struct {
	URL         string
	ContentType string
	Data        []byte
}
