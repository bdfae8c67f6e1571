package explain

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/phuslu/log"

	"github.com/dyike/psxlens/config"
	"github.com/dyike/psxlens/internal/utils"
)

// Completer is the text-completion capability: a task label and a data
// block in, explanatory text out.
type Completer interface {
	Complete(ctx context.Context, task, data string) (string, error)
}

// ChainCompleter runs the guardrail template and a chat model as one eino chain.
type ChainCompleter struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
	handler  callbacks.Handler
}

// NewChainCompleter compiles the explain chain around chatModel. The system
// prompt is rendered as an FString template and must not contain braces.
func NewChainCompleter(ctx context.Context, chatModel model.ChatModel, logger *log.Logger) (*ChainCompleter, error) {
	system, err := utils.LoadPrompt("explain_system")
	if err != nil {
		return nil, err
	}
	user, err := utils.LoadPrompt("explain_user")
	if err != nil {
		return nil, err
	}
	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.
		AppendChatTemplate(tpl).
		AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile explain chain: %w", err)
	}
	return &ChainCompleter{runnable: runnable, handler: newLogHandler(logger)}, nil
}

func (c *ChainCompleter) Complete(ctx context.Context, task, data string) (string, error) {
	msg, err := c.runnable.Invoke(ctx, map[string]any{
		"task": task,
		"data": data,
	}, compose.WithCallbacks(c.handler))
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", nil
	}
	return msg.Content, nil
}

// NewChatModel builds the chat model of the configured provider.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.ChatModel, error) {
	maxTokens := cfg.MaxTokens

	switch cfg.LLMProvider {
	case config.ProviderDeepSeek:
		cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			BaseURL:   cfg.LLMBaseURL,
			Model:     cfg.Model(),
			MaxTokens: maxTokens,
			Timeout:   cfg.LLMTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create deepseek model: %w", err)
		}
		return cm, nil
	default:
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.LLMBaseURL,
			Model:     cfg.Model(),
			MaxTokens: &maxTokens,
			Timeout:   cfg.LLMTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return cm, nil
	}
}
