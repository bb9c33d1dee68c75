package agents

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/dyike/CortexChat/internal/tools"
)

// ReActLoop runs an eino ReAct agent over the search tools.
type ReActLoop struct {
	agent  *react.Agent
	logger *zap.Logger
}

func NewReActLoop(ctx context.Context, chatModel model.ToolCallingChatModel, searchTools []tools.SearchTool, maxStep int, logger *zap.Logger) (*ReActLoop, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxStep <= 0 {
		maxStep = 12
	}
	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		MaxStep:          maxStep,
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools.AsEinoTools(searchTools),
		},
		StreamToolCallChecker: ToolCallChecker,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create react agent: %w", err)
	}
	return &ReActLoop{agent: agent, logger: logger}, nil
}

func (l *ReActLoop) Run(ctx context.Context, prefix, question string) (string, []string, error) {
	rec := &tools.Recorder{}
	ctx = tools.WithRecorder(ctx, rec)

	msgs := []*schema.Message{schema.UserMessage(question)}
	if prefix != "" {
		msgs = append([]*schema.Message{schema.SystemMessage(prefix)}, msgs...)
	}

	out, err := l.agent.Generate(ctx, msgs)
	if err != nil {
		return "", nil, fmt.Errorf("react agent: %w", err)
	}
	toolLog := rec.Entries()
	l.logger.Debug("react loop finished", zap.Int("tool_calls", len(toolLog)))
	if out == nil {
		return "", toolLog, errors.New("react agent returned no message")
	}
	return out.Content, toolLog, nil
}

// ToolCallChecker reports whether a streamed model turn asks for a tool call.
func ToolCallChecker(_ context.Context, sr *schema.StreamReader[*schema.Message]) (bool, error) {
	defer sr.Close()
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if len(msg.ToolCalls) > 0 {
			return true, nil
		}
	}
}

type unavailableLoop struct {
	err error
}

// UnavailableLoop fails every run with err, so a missing tool-calling model surfaces
// as a marked answer instead of stopping the program.
func UnavailableLoop(err error) ReasoningLoop {
	return unavailableLoop{err: err}
}

func (u unavailableLoop) Run(context.Context, string, string) (string, []string, error) {
	return "", nil, u.err
}
