package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrNoResults         = errors.New("no search results")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidSourceURL  = errors.New("invalid source URL")
)

// FetchError reports a failed page fetch. StatusCode is 0 for transport
// errors that never produced an HTTP response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
