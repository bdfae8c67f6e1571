package explain

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/phuslu/log"
)

// newLogHandler logs every component run of the explain chain, with token
// usage when the model reports it.
func newLogHandler(logger *log.Logger) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			if info != nil {
				logger.Debug().Str("component", string(info.Component)).Str("name", info.Name).Msg("explain step started")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			if info == nil {
				return ctx
			}
			entry := logger.Debug().Str("component", string(info.Component)).Str("name", info.Name)
			if out := model.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
				entry = entry.
					Int("prompt_tokens", out.TokenUsage.PromptTokens).
					Int("completion_tokens", out.TokenUsage.CompletionTokens)
			}
			entry.Msg("explain step finished")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			name := ""
			if info != nil {
				name = info.Name
			}
			logger.Warn().Err(err).Str("name", name).Msg("explain step failed")
			return ctx
		}).
		Build()
}
