package embedding

import (
	"errors"
	"fmt"
)

// Embedding errors.
var (
	// ErrUnavailable indicates an embedding could not be obtained.
	ErrUnavailable = errors.New("embedding unavailable")

	// ErrEmptyText indicates there was no text to embed.
	ErrEmptyText = errors.New("empty text")
)

// UnavailableError reports a failed embedding computation. Stale holds the
// previously cached vector for the key, if one exists.
type UnavailableError struct {
	Key   Key
	Stale []float64
	Err   error
}

// Error implements error.
func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Key, ErrUnavailable)
	}
	return fmt.Sprintf("%s: %v: %v", e.Key, ErrUnavailable, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UnavailableError) Unwrap() error { return e.Err }

// Is matches ErrUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// HasStale reports whether a previously cached vector is available.
func (e *UnavailableError) HasStale() bool { return len(e.Stale) > 0 }
