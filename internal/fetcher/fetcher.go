// Package fetcher handles the file edge of the pipeline: pulling source
// workbooks from the drop server, parsing shelf observation sheets into
// records, deriving store metadata from filenames, and writing the
// consolidated master workbook back out.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads remote source workbooks.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
