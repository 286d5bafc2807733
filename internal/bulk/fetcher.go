// Package bulk acquires the low-confidence base catalog from the chain
// price-transparency portals.
package bulk

import (
	"context"
	"io"
)

// Fetcher downloads remote portal files.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
