package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoRecords reports a source that yielded zero usable records. A build
// must abort rather than publish an empty index.
var ErrNoRecords = errors.New("catalog: source yielded no usable records")

// Source produces uniform movies from one raw data source.
type Source interface {
	// Name identifies the strategy; it is recorded in the build manifest.
	Name() string

	// Load fetches and normalizes every record. Partial failures are
	// reported in LoadStats; only a total failure returns an error.
	Load(ctx context.Context) ([]Movie, LoadStats, error)
}

// LoadStats counts what a Source saw.
type LoadStats struct {
	Fetched     int // raw records received
	Skipped     int // records dropped for missing mandatory fields or duplicates
	FailedPages int // pages or batches skipped after an error
}

// PartialFetchError describes one page or batch that failed. It is logged
// and skipped; the build continues.
type PartialFetchError struct {
	Source string
	Page   int
	Err    error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("catalog: %s page %d: %v", e.Source, e.Page, e.Err)
}

func (e *PartialFetchError) Unwrap() error { return e.Err }

func noRecords(source string, stats LoadStats) error {
	return fmt.Errorf("%w (source=%s fetched=%d skipped=%d failed_pages=%d)",
		ErrNoRecords, source, stats.Fetched, stats.Skipped, stats.FailedPages)
}
