package provider

import (
	"context"
	"time"
)

// retryOperation runs operation up to attempts times with exponential backoff,
// stopping early when ctx is done.
func retryOperation(ctx context.Context, attempts int, baseDelay time.Duration, operation func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = operation(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(baseDelay * time.Duration(1<<i)):
		}
	}
	return lastErr
}
