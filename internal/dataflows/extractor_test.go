package dataflows

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/psxlens/internal/logger"
	"github.com/dyike/psxlens/internal/models"
)

func fastRetry() ExtractorOption {
	return WithRetryConfig(&RetryConfig{MaxRetries: 1, Delay: time.Millisecond})
}

func TestExtractReloadsOnceOnRenderError(t *testing.T) {
	var calls atomic.Int32
	renderer := RendererFunc(func(ctx context.Context, url string) (string, error) {
		if calls.Add(1) == 1 {
			return "", &models.RenderError{URL: url, Marker: "table"}
		}
		return sectorPage, nil
	})

	ex := NewExtractor(renderer, time.Second, logger.Nop(), fastRetry())
	tables, err := ex.Extract(context.Background(), "https://example.test")
	require.NoError(t, err)
	assert.Len(t, tables, 2)
	assert.EqualValues(t, 2, calls.Load())
}

func TestExtractGivesUpAfterOneReload(t *testing.T) {
	var calls atomic.Int32
	renderer := RendererFunc(func(ctx context.Context, url string) (string, error) {
		calls.Add(1)
		return "", &models.FetchError{URL: url, Err: errors.New("connection refused")}
	})

	ex := NewExtractor(renderer, time.Second, logger.Nop(),
		WithRetryConfig(&RetryConfig{MaxRetries: 5, Delay: time.Millisecond}))
	_, err := ex.Extract(context.Background(), "https://example.test")

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.EqualValues(t, 2, calls.Load(), "retries are capped at a single reload")
}

func TestExtractPageWithoutTables(t *testing.T) {
	renderer := RendererFunc(func(ctx context.Context, url string) (string, error) {
		return "<html><body>closed</body></html>", nil
	})

	ex := NewExtractor(renderer, time.Second, logger.Nop(), fastRetry())
	_, err := ex.Extract(context.Background(), "https://example.test")

	var renderErr *models.RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestExtractEnforcesTimeout(t *testing.T) {
	renderer := RendererFunc(func(ctx context.Context, url string) (string, error) {
		<-ctx.Done()
		return "", &models.FetchError{URL: url, Err: ctx.Err()}
	})

	ex := NewExtractor(renderer, 20*time.Millisecond, logger.Nop(), fastRetry())
	start := time.Now()
	_, err := ex.Extract(context.Background(), "https://example.test")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExtractWrapsUnknownRendererErrors(t *testing.T) {
	renderer := RendererFunc(func(ctx context.Context, url string) (string, error) {
		return "", errors.New("boom")
	})

	ex := NewExtractor(renderer, time.Second, logger.Nop(), fastRetry())
	_, err := ex.Extract(context.Background(), "https://example.test")

	var fetchErr *models.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
