package fetch

import "fmt"

// NotFoundError means the archive has no resource at the requested
// location. It is reported immediately, never retried, and the unit is
// recorded as skipped.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.URL
}

// AuthError means the archive rejected the supplied credentials. It is
// reported immediately and never retried.
type AuthError struct {
	URL    string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d): %s", e.Status, e.URL)
}

// TransientFetchError is returned once the retry budget is exhausted on
// transient failures (timeouts, resets, 5xx, truncated payloads).
type TransientFetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("download failed after %d attempts: %s: %v", e.Attempts, e.URL, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}
