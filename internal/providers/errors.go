package providers

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error is a structured provider failure. It carries the HTTP status code
// (zero for transport-level failures) so callers can classify retryability
// without matching on message text.
type Error struct {
	Provider   string
	StatusCode int
	Message    string

	// Transient marks transport-level failures (connection reset, timeout)
	// that carry no status code but are still worth retrying.
	Transient bool
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// Retryable reports whether the failure is transient: the service was
// overloaded (503), rate limited (429), returned a server error, or the
// transport timed out or reset.
func (e *Error) Retryable() bool {
	if e.Transient {
		return true
	}
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return e.StatusCode >= 500
}

// IsRetryable classifies an error as transient. Provider errors expose a
// structured Retryable flag; net errors are retryable when they report a
// timeout. Anything else (notably malformed structured output) is terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
