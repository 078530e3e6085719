package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/pders01/nearby/internal/launcher"
	"github.com/pders01/nearby/internal/places"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeErr turns an error into a status bar line.
func describeErr(err error) string {
	switch {
	case errors.Is(err, launcher.ErrNoWebsite):
		return MsgNoWebsite
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out, try again"
	case places.Classify(err) == places.Recoverable:
		return "Network unavailable: " + err.Error()
	default:
		return err.Error()
	}
}
