package dataflows

import (
	"context"
	"time"

	"github.com/phuslu/log"

	"github.com/dyike/psxlens/internal/models"
)

// Extractor renders a page and returns the raw tables found on it.
type Extractor struct {
	renderer Renderer
	timeout  time.Duration
	retry    *RetryConfig
	marker   string
	logger   *log.Logger
}

type ExtractorOption func(*Extractor)

// WithRetryConfig overrides the single-reload policy.
func WithRetryConfig(rc *RetryConfig) ExtractorOption {
	return func(e *Extractor) { e.retry = rc }
}

// WithMarker names the selector reported in RenderErrors.
func WithMarker(marker string) ExtractorOption {
	return func(e *Extractor) {
		if marker != "" {
			e.marker = marker
		}
	}
}

func NewExtractor(renderer Renderer, timeout time.Duration, logger *log.Logger, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		renderer: renderer,
		timeout:  timeout,
		retry:    DefaultRetryConfig(),
		marker:   "table",
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.retry.MaxRetries > 1 {
		e.retry.MaxRetries = 1
	}
	return e
}

// Extract renders url under the hard timeout, reloading once on a
// transient failure.
func (e *Extractor) Extract(ctx context.Context, url string) ([]models.RawTable, error) {
	var tables []models.RawTable

	err := WithRetry(ctx, e.retry, func(attempt int) error {
		if attempt > 0 {
			e.logger.Warn().Str("url", url).Int("attempt", attempt+1).Msg("reloading page")
		}

		renderCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		doc, err := e.renderer.Render(renderCtx, url)
		if err != nil {
			if IsTransient(err) {
				return err
			}
			return &models.FetchError{URL: url, Err: err}
		}

		parsed, err := ParseTables(doc)
		if err != nil {
			return &models.RenderError{URL: url, Marker: e.marker, Err: err}
		}
		if len(parsed) == 0 {
			return &models.RenderError{URL: url, Marker: e.marker}
		}
		tables = parsed
		return nil
	})
	if err != nil {
		e.logger.Error().Err(err).Str("url", url).Msg("extraction failed")
		return nil, err
	}

	e.logger.Info().Str("url", url).Int("tables", len(tables)).Msg("tables extracted")
	return tables, nil
}
