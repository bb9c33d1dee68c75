package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dyike/CortexChat/internal/agents"
	"github.com/dyike/CortexChat/internal/extract"
	"github.com/dyike/CortexChat/internal/persona"
)

// Rejected transitions leave the conversation untouched.
var (
	ErrClosed          = errors.New("conversation is closed")
	ErrNotOpenQuestion = errors.New("question is not open for persona selection")
	ErrUnknownPersona  = errors.New("unknown persona")
	ErrEmptyInput      = errors.New("empty input")
)

// Responder produces one persona's answer. *agents.Generator implements it.
type Responder interface {
	Generate(ctx context.Context, question string, p persona.Persona, useTools *bool) agents.Result
}

type Orchestrator struct {
	registry  *persona.Registry
	responder Responder
	extractor *extract.Extractor
	useTools  *bool
	logger    *zap.Logger
}

type Option func(*Orchestrator)

func WithExtractor(e *extract.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithToolMode forces the tool path on or off; nil lets each question decide.
func WithToolMode(useTools *bool) Option {
	return func(o *Orchestrator) { o.useTools = useTools }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func NewOrchestrator(registry *persona.Registry, responder Responder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:  registry,
		responder: responder,
		extractor: extract.Default(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Registry() *persona.Registry { return o.registry }

// Submit appends a user question and returns its id. The close keyword closes the
// conversation instead and returns -1.
func (o *Orchestrator) Submit(c *Conversation, text string) (int, error) {
	if c.closed {
		return -1, ErrClosed
	}
	if strings.TrimSpace(text) == "" {
		return -1, ErrEmptyInput
	}
	if c.isCloseKeyword(text) {
		c.closed = true
		o.logger.Info("conversation closed", zap.String("conversation", c.ID))
		return -1, nil
	}
	id := c.appendQuestion(text)
	o.logger.Info("question submitted",
		zap.String("conversation", c.ID),
		zap.Int("question_id", id))
	return id, nil
}

// SelectPersonas queues the given personas for the open question. Personas that already
// answered or are already queued are skipped. The returned triggers are the ones added.
func (o *Orchestrator) SelectPersonas(c *Conversation, questionID int, ids []string) ([]Trigger, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if open, ok := c.OpenQuestion(); !ok || open != questionID {
		return nil, fmt.Errorf("%w: %d", ErrNotOpenQuestion, questionID)
	}

	resolved := make([]persona.Persona, 0, len(ids))
	for _, id := range ids {
		p, err := o.registry.Resolve(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPersona, id)
		}
		resolved = append(resolved, p)
	}

	var added []Trigger
	for _, p := range resolved {
		t := Trigger{QuestionID: questionID, Persona: p.ID}
		if c.enqueue(t) {
			added = append(added, t)
		}
	}
	o.logger.Info("personas selected",
		zap.String("conversation", c.ID),
		zap.Int("question_id", questionID),
		zap.Strings("requested", ids),
		zap.Int("queued", len(added)))
	return added, nil
}

// Pending lists the personas that have not answered questionID yet, in registry order.
func (o *Orchestrator) Pending(c *Conversation, questionID int) []persona.Persona {
	var out []persona.Persona
	for _, p := range o.registry.List() {
		if !c.HasAnswer(questionID, p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// DispatchNext answers the trigger at the head of the queue. It returns false when the
// queue was empty or the popped trigger had already been answered.
func (o *Orchestrator) DispatchNext(ctx context.Context, c *Conversation) (Message, bool) {
	t, ok := c.pop()
	if !ok {
		return Message{}, false
	}
	if c.HasAnswer(t.QuestionID, t.Persona) {
		o.logger.Debug("dropping already answered trigger",
			zap.Int("question_id", t.QuestionID),
			zap.String("persona", t.Persona))
		return Message{}, false
	}

	question, ok := c.Question(t.QuestionID)
	if !ok {
		o.logger.Error("trigger without originating question",
			zap.String("conversation", c.ID),
			zap.Int("question_id", t.QuestionID),
			zap.String("persona", t.Persona))
		panic(fmt.Sprintf("conversation %s: no user message for question %d", c.ID, t.QuestionID))
	}
	p, err := o.registry.Resolve(t.Persona)
	if err != nil {
		o.logger.Error("trigger for unregistered persona", zap.String("persona", t.Persona), zap.Error(err))
		panic(fmt.Sprintf("conversation %s: %v", c.ID, err))
	}

	start := time.Now()
	res := o.responder.Generate(ctx, question.Content, p, o.useTools)
	sections := o.extractor.Extract(res.Text)
	msg := c.appendAnswer(t, Render(p.DisplayName, res.Text, sections), res.ToolLog)

	o.logger.Info("trigger dispatched",
		zap.String("conversation", c.ID),
		zap.Int("question_id", t.QuestionID),
		zap.String("persona", p.ID),
		zap.Duration("duration", time.Since(start)),
		zap.Int("tool_log", len(res.ToolLog)),
		zap.Bool("failed", res.Failed()))
	return msg, true
}

// Drain dispatches until the queue is empty. onStart, when set, runs before each trigger.
func (o *Orchestrator) Drain(ctx context.Context, c *Conversation, onStart func(Trigger, persona.Persona)) []Message {
	var out []Message
	for {
		queue := c.Queue()
		if len(queue) == 0 {
			return out
		}
		if onStart != nil && !c.HasAnswer(queue[0].QuestionID, queue[0].Persona) {
			if p, err := o.registry.Resolve(queue[0].Persona); err == nil {
				onStart(queue[0], p)
			}
		}
		if msg, ok := o.DispatchNext(ctx, c); ok {
			out = append(out, msg)
		}
	}
}
