package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// messageGenerator is the part of an eino chat model the completer needs.
type messageGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatCompleter adapts an eino chat model to Completer.
type ChatCompleter struct {
	model messageGenerator
}

func NewChatCompleter(m messageGenerator) *ChatCompleter {
	return &ChatCompleter{model: m}
}

// Complete sends history, when present, as a system message ahead of the prompt.
func (c *ChatCompleter) Complete(ctx context.Context, prompt, history string) (string, error) {
	var msgs []*schema.Message
	if history != "" {
		msgs = append(msgs, schema.SystemMessage(history))
	}
	msgs = append(msgs, schema.UserMessage(prompt))

	out, err := c.model.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	if out == nil {
		return "", errors.New("chat model returned no message")
	}
	return out.Content, nil
}
