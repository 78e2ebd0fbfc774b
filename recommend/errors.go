package recommend

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery rejects blank queries.
	ErrEmptyQuery = errors.New("recommend: empty query")

	// ErrUnknownMovie reports an id absent from the loaded catalog.
	ErrUnknownMovie = errors.New("recommend: unknown movie")
)

// EncodingError wraps a failure of the query encoder. It is usually
// transient and the caller may retry.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("recommend: encode query: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Temporary reports whether retrying may succeed. Cancellation is final.
func (e *EncodingError) Temporary() bool {
	return !errors.Is(e.Err, context.Canceled)
}
