package places

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Sentinel errors a Provider wraps so the engine can classify failures.
var (
	ErrNoNetwork = errors.New("no network")
	ErrTransient = errors.New("transient failure")
	ErrRejected  = errors.New("request rejected")
	ErrClosed    = errors.New("session closed")
)

// FailureClass decides whether a failed search may be retried.
type FailureClass int

const (
	Unrecoverable FailureClass = iota
	Recoverable
)

func (c FailureClass) String() string {
	if c == Recoverable {
		return "recoverable"
	}
	return "unrecoverable"
}

// StatusError is returned by HTTP providers for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout
}

// Classify maps a provider error onto a FailureClass. Explicit rejection wins
// over anything else found in the chain.
func Classify(err error) FailureClass {
	if err == nil || errors.Is(err, ErrRejected) {
		return Unrecoverable
	}
	if errors.Is(err, ErrNoNetwork) || errors.Is(err, ErrTransient) {
		return Recoverable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Recoverable
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Temporary() {
			return Recoverable
		}
		return Unrecoverable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Recoverable
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Recoverable
	}
	return Unrecoverable
}
