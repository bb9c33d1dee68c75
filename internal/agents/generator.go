package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/dyike/CortexChat/consts"
	"github.com/dyike/CortexChat/internal/persona"
)

// Completer is the text-in, text-out generation backend.
type Completer interface {
	Complete(ctx context.Context, prompt, history string) (string, error)
}

// ContextLookup returns passages relevant to a query, most relevant first. It may return none.
type ContextLookup interface {
	RelevantDocuments(ctx context.Context, query string) ([]string, error)
}

// ReasoningLoop answers a question with tools, guided by a behavioral prefix.
type ReasoningLoop interface {
	Run(ctx context.Context, prefix, question string) (text string, toolLog []string, err error)
}

// Result is what one persona produced for one question. Err is set when a collaborator
// failed; Text then carries the failure marker so it can be shown as an ordinary answer.
type Result struct {
	Text    string
	ToolLog []string
	Err     error
}

func (r Result) Failed() bool { return r.Err != nil }

var (
	errNoLookup = errors.New("context lookup is not configured")
	errNoLoop   = errors.New("tool reasoning loop is not configured")
)

type Generator struct {
	completer  Completer
	lookup     ContextLookup
	loop       ReasoningLoop
	dispatcher *Dispatcher
	logger     *zap.Logger
}

type GeneratorOption func(*Generator)

func WithContextLookup(l ContextLookup) GeneratorOption {
	return func(g *Generator) { g.lookup = l }
}

func WithReasoningLoop(l ReasoningLoop) GeneratorOption {
	return func(g *Generator) { g.loop = l }
}

func WithDispatcher(d *Dispatcher) GeneratorOption {
	return func(g *Generator) { g.dispatcher = d }
}

func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

func NewGenerator(completer Completer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		completer:  completer,
		dispatcher: defaultDispatcher,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate never returns an error: collaborator failures come back as marked text.
// A nil useTools lets the dispatcher decide from the question.
func (g *Generator) Generate(ctx context.Context, question string, p persona.Persona, useTools *bool) (res Result) {
	tools := g.dispatcher.ShouldUseTools(question)
	if useTools != nil {
		tools = *useTools
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = failure(fmt.Errorf("panic: %v", r))
		}
		fields := []zap.Field{
			zap.String("persona", p.ID),
			zap.Bool("tools", tools),
			zap.Duration("duration", time.Since(start)),
			zap.Int("tool_log", len(res.ToolLog)),
		}
		if res.Err != nil {
			g.logger.Warn("generation failed", append(fields, zap.Error(res.Err))...)
			return
		}
		g.logger.Debug("generation finished", fields...)
	}()

	if tools {
		return g.withTools(ctx, question, p)
	}
	return g.templated(ctx, question, p)
}

func (g *Generator) withTools(ctx context.Context, question string, p persona.Persona) Result {
	if g.loop == nil {
		return failure(errNoLoop)
	}
	text, toolLog, err := g.loop.Run(ctx, p.ToolPrefix, question)
	if err != nil {
		return failure(err)
	}
	return Result{Text: text, ToolLog: toolLog}
}

func (g *Generator) templated(ctx context.Context, question string, p persona.Persona) Result {
	var history string
	if p.UsesRetrieval {
		if g.lookup == nil {
			return failure(errNoLookup)
		}
		docs, err := g.lookup.RelevantDocuments(ctx, question)
		if err != nil {
			return failure(fmt.Errorf("context lookup: %w", err))
		}
		history = strings.Join(docs, "\n\n")
	}

	rendered, err := RenderTemplate(ctx, p.PromptTemplate, question, history)
	if err != nil {
		return failure(err)
	}

	// The context is already bound into the template.
	text, err := g.completer.Complete(ctx, rendered, "")
	if err != nil {
		return failure(err)
	}
	return Result{Text: text}
}

// RenderTemplate binds {input} and {history} in an f-string persona template.
func RenderTemplate(ctx context.Context, tpl, input, history string) (string, error) {
	msgs, err := prompt.FromMessages(schema.FString, schema.UserMessage(tpl)).
		Format(ctx, map[string]any{
			"input":   input,
			"history": history,
		})
	if err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	if len(msgs) == 0 {
		return "", errors.New("render prompt template: no output")
	}
	return msgs[0].Content, nil
}

func failure(err error) Result {
	return Result{
		Text: fmt.Sprintf("%s %v", consts.FailureMarker, err),
		Err:  err,
	}
}
