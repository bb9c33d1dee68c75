package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/CortexChat/config"
)

// NewChatModel creates the chat model named by cfg.LLMProvider. The openai provider also
// covers OpenAI-compatible servers such as Ollama through cfg.BackendURL.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	switch cfg.LLMProvider {
	case "deepseek":
		chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.LLMAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
		}
		return chatModel, nil
	case "openai", "":
		maxTokens := cfg.MaxTokens
		temperature := cfg.Temperature
		apiKey := cfg.LLMAPIKey
		if apiKey == "" {
			// Local OpenAI-compatible servers ignore the key but the client requires one.
			apiKey = "ollama"
		}
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.BackendURL,
			APIKey:      apiKey,
			Model:       cfg.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI-compatible model: %w", err)
		}
		return chatModel, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

// ToolCalling returns m as a tool-calling model, or an error when the provider cannot bind tools.
func ToolCalling(m model.BaseChatModel) (model.ToolCallingChatModel, error) {
	tc, ok := m.(model.ToolCallingChatModel)
	if !ok {
		return nil, fmt.Errorf("chat model %T does not support tool calling", m)
	}
	return tc, nil
}
