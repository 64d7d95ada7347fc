package fetcher

import (
	"context"
	"time"
)

// Fetcher downloads a remote dataset to a local path
type Fetcher interface {
	// Fetch downloads sourceURL to dest. When sourceURL serves an HTML index
	// page, the first CSV link on it is followed instead.
	Fetch(ctx context.Context, sourceURL, dest string) (*Result, error)
}

// Result describes a completed download
type Result struct {
	// URL is the address the dataset was finally read from
	URL      string
	Path     string
	Bytes    int64
	Duration time.Duration
}
