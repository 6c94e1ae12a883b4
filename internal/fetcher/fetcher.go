// Package fetcher reads tabular reference data from CSV, XLSX and SQLite
// sources, extracts archive entries and downloads remote source files.
package fetcher

import (
	"context"
	"io"
)

// Row is one record of a tabular source. Num is the 1-based record number,
// header included.
type Row struct {
	Num    int
	Fields []string
}

// Fetcher downloads remote source files.
type Fetcher interface {
	// DownloadIfChanged fetches the URL only if the ETag has changed.
	// Returns (body, newETag, changed, error). If not changed, body is nil and changed is false.
	DownloadIfChanged(ctx context.Context, url string, etag string) (io.ReadCloser, string, bool, error)
}
