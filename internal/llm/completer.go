package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"graph_router/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Completer turns a rendered prompt into the model's text reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatCompleter runs prompts through an eino chain: Template → ChatModel
type ChatCompleter struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewChatCompleter compiles the chain around the given chat model
func NewChatCompleter(ctx context.Context, chatModel model.BaseChatModel, timeout time.Duration) (*ChatCompleter, error) {
	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage(SystemPrompt),
		schema.UserMessage("{prompt}"),
	)

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(chatModel).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating Eino chain: %w", err)
	}

	return &ChatCompleter{chain: chain, timeout: timeout}, nil
}

// Complete sends one prompt and returns the trimmed reply
func (c *ChatCompleter) Complete(ctx context.Context, text string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.chain.Invoke(ctx, map[string]any{"prompt": text})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("completion aborted: %w", ctxErr)
		}
		return "", fmt.Errorf("completion failed: %w", err)
	}

	logger.Debug().
		Int("prompt_length", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("🧠 LLM completion finished")

	return strings.TrimSpace(out.Content), nil
}
