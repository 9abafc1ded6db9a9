package fetch

import (
	"errors"
	"fmt"
)

// ErrFetch matches every fetch failure, including ParseError.
var ErrFetch = errors.New("fetch failed")

var (
	errNotArray     = errors.New("payload is not a JSON array")
	errTrailingData = errors.New("unexpected data after JSON array")
	errBodyTooLarge = errors.New("payload exceeds size limit")
)

// FetchError reports a transport failure or a non-success status.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch: %s: unexpected status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("fetch: %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes every FetchError match ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError reports a payload that is not shaped as expected.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fetch: %s: parse payload: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match ErrFetch.
func (e *ParseError) Is(target error) bool { return target == ErrFetch }
