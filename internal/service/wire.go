package service

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/dyike/psxlens/config"
	"github.com/dyike/psxlens/internal/cache"
	"github.com/dyike/psxlens/internal/dataflows"
	"github.com/dyike/psxlens/internal/explain"
	"github.com/dyike/psxlens/internal/normalize"
)

// NewRenderer picks the page renderer named by cfg.Renderer.
func NewRenderer(cfg *config.Config, logger *log.Logger) dataflows.Renderer {
	if cfg.Renderer == config.RendererHTTP {
		return dataflows.NewHTTPRenderer(cfg.UserAgent, cfg.WaitSelector, cfg.RenderTimeout)
	}
	return dataflows.NewBrowserRenderer(dataflows.BrowserConfig{
		Headless:     cfg.Headless,
		UserAgent:    cfg.UserAgent,
		WaitSelector: cfg.WaitSelector,
		SettleDelay:  cfg.SettleDelay,
	}, logger)
}

// NewExplainer returns an explainer backed by the configured chat model, or
// a disabled one when no credential is present or the model cannot be built.
func NewExplainer(ctx context.Context, cfg *config.Config, logger *log.Logger) *explain.Explainer {
	if !cfg.ExplanationEnabled() {
		key := "OPENAI_API_KEY"
		if cfg.LLMProvider == config.ProviderDeepSeek {
			key = "DEEPSEEK_API_KEY"
		}
		return explain.Disabled(fmt.Sprintf("explanation disabled: %s is not set", key), logger)
	}

	chatModel, err := explain.NewChatModel(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.LLMProvider).Msg("chat model unavailable")
		return explain.Disabled(fmt.Sprintf("explanation disabled: %v", err), logger)
	}
	completer, err := explain.NewChainCompleter(ctx, chatModel, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("explain chain unavailable")
		return explain.Disabled(fmt.Sprintf("explanation disabled: %v", err), logger)
	}

	logger.Debug().Str("provider", cfg.LLMProvider).Str("model", cfg.Model()).Msg("explainer ready")
	return explain.NewExplainer(completer, cfg.LLMTimeout, logger)
}

// NewFromConfig assembles the full pipeline described by cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) *MarketService {
	extractor := dataflows.NewExtractor(NewRenderer(cfg, logger), cfg.RenderTimeout, logger,
		dataflows.WithMarker(cfg.WaitSelector))

	return NewMarketService(Options{
		URL:        cfg.MarketURL,
		TopN:       cfg.TopN,
		Source:     extractor,
		Normalizer: normalize.New(nil, logger),
		Cache:      cache.NewSnapshotCache(cfg.SnapshotTTL, logger),
		Explainer:  NewExplainer(ctx, cfg, logger),
		Logger:     logger,
	})
}
