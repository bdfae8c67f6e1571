package dataflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyike/psxlens/internal/models"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultRetryConfig allows a single reload after a short pause.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 1,
		Delay:      2 * time.Second,
	}
}

// WithRetry runs fn until it succeeds, returns a non-transient error, the
// context ends, or MaxRetries extra attempts have been spent.
func WithRetry(ctx context.Context, config *RetryConfig, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", lastErr)
			case <-time.After(config.Delay):
			}
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsTransient(err) || ctx.Err() != nil {
			return err
		}
	}

	return lastErr
}

// IsTransient reports whether a reload might fix err.
func IsTransient(err error) bool {
	var fetchErr *models.FetchError
	var renderErr *models.RenderError
	return errors.As(err, &fetchErr) || errors.As(err, &renderErr)
}
