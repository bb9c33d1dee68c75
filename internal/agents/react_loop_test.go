package agents

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dyike/CortexChat/internal/tools"
)

// scriptedModel replays canned replies in order, one per Generate call.
type scriptedModel struct {
	mu      sync.Mutex
	replies []*schema.Message
	inputs  [][]*schema.Message
	err     error
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return schema.AssistantMessage("out of script", nil), nil
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type echoTool struct{}

func (echoTool) Name() string        { return "Google Search" }
func (echoTool) Description() string { return "search" }
func (echoTool) Run(_ context.Context, q string) (string, error) {
	return "results for " + q, nil
}

func TestReActLoopRecordsToolCalls(t *testing.T) {
	ctx := context.Background()
	m := &scriptedModel{replies: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{{
			ID: "call-1",
			Function: schema.FunctionCall{
				Name:      "google_search",
				Arguments: `{"query":"ai news"}`,
			},
		}}),
		schema.AssistantMessage("Final Answer: AI is busy this week", nil),
	}}

	loop, err := NewReActLoop(ctx, m, []tools.SearchTool{echoTool{}}, 6, zaptest.NewLogger(t))
	require.NoError(t, err)

	text, toolLog, err := loop.Run(ctx, "You are a helpful assistant.", "find the latest AI news")
	require.NoError(t, err)
	assert.Equal(t, "Final Answer: AI is busy this week", text)
	assert.Equal(t, []string{"Google Search(ai news) -> results for ai news"}, toolLog)

	require.NotEmpty(t, m.inputs)
	first := m.inputs[0]
	require.Len(t, first, 2)
	assert.Equal(t, schema.System, first[0].Role)
	assert.Equal(t, "find the latest AI news", first[1].Content)
}

func TestReActLoopModelError(t *testing.T) {
	ctx := context.Background()
	m := &scriptedModel{err: errors.New("model offline")}

	loop, err := NewReActLoop(ctx, m, []tools.SearchTool{echoTool{}}, 0, nil)
	require.NoError(t, err)

	_, _, err = loop.Run(ctx, "", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}

func TestToolCalling(t *testing.T) {
	_, err := ToolCalling(&scriptedModel{})
	assert.NoError(t, err)

	_, err = ToolCalling(plainModel{})
	assert.Error(t, err)
}

type plainModel struct{}

func (plainModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage("plain", nil), nil
}

func (plainModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("plain", nil)}), nil
}

func TestChatCompleter(t *testing.T) {
	m := &scriptedModel{replies: []*schema.Message{schema.AssistantMessage("hello back", nil)}}
	c := NewChatCompleter(m)

	out, err := c.Complete(context.Background(), "hello", "earlier turns")
	require.NoError(t, err)
	assert.Equal(t, "hello back", out)

	require.Len(t, m.inputs, 1)
	require.Len(t, m.inputs[0], 2)
	assert.Equal(t, "earlier turns", m.inputs[0][0].Content)
	assert.Equal(t, "hello", m.inputs[0][1].Content)

	_, err = NewChatCompleter(&scriptedModel{err: errors.New("down")}).Complete(context.Background(), "x", "")
	assert.ErrorContains(t, err, "down")
}

func TestToolCallChecker(t *testing.T) {
	withCall := schema.StreamReaderFromArray([]*schema.Message{
		schema.AssistantMessage("thinking", nil),
		schema.AssistantMessage("", []schema.ToolCall{{ID: "1", Function: schema.FunctionCall{Name: "google_search"}}}),
	})
	ok, err := ToolCallChecker(context.Background(), withCall)
	require.NoError(t, err)
	assert.True(t, ok)

	plain := schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("done", nil)})
	ok, err = ToolCallChecker(context.Background(), plain)
	require.NoError(t, err)
	assert.False(t, ok)
}
