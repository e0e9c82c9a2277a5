package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"
)

// Supported providers
const (
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderDeepSeek = "deepseek"
	ProviderArk      = "ark"
)

// Config holds LLM provider settings
type Config struct {
	Provider    string        `envconfig:"LLM_PROVIDER" yaml:"provider"`
	Model       string        `envconfig:"LLM_MODEL" yaml:"model"`
	APIKey      string        `envconfig:"LLM_API_KEY" yaml:"-"`
	BaseURL     string        `envconfig:"LLM_BASE_URL" yaml:"base_url"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" yaml:"max_tokens"`
	Temperature float32       `envconfig:"LLM_TEMPERATURE" yaml:"temperature"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" yaml:"timeout"`
}

// NewChatModel creates the chat model for the configured provider
func NewChatModel(ctx context.Context, config Config) (model.BaseChatModel, error) {
	maxTokens := config.MaxTokens
	temperature := config.Temperature

	switch strings.ToLower(config.Provider) {
	case ProviderOpenAI, "":
		if config.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY or OPENAI_API_KEY is required for provider %q", ProviderOpenAI)
		}
		m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      config.APIKey,
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating openai chat model: %w", err)
		}
		return m, nil

	case ProviderOllama:
		baseURL := config.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		m, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   config.Model,
			Timeout: config.Timeout,
			Options: &api.Options{
				Temperature: temperature,
				NumPredict:  maxTokens,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ollama chat model: %w", err)
		}
		return m, nil

	case ProviderDeepSeek:
		if config.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for provider %q", ProviderDeepSeek)
		}
		m, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      config.APIKey,
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Timeout:     config.Timeout,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating deepseek chat model: %w", err)
		}
		return m, nil

	case ProviderArk:
		if config.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for provider %q", ProviderArk)
		}
		timeout := config.Timeout
		m, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:      config.APIKey,
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Timeout:     &timeout,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ark chat model: %w", err)
		}
		return m, nil
	}

	return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
}
