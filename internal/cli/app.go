package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/dyike/CortexChat/config"
	"github.com/dyike/CortexChat/internal/agents"
	"github.com/dyike/CortexChat/internal/conversation"
	"github.com/dyike/CortexChat/internal/history"
	"github.com/dyike/CortexChat/internal/persona"
	"github.com/dyike/CortexChat/internal/retrieval"
	"github.com/dyike/CortexChat/internal/tools"
)

// app is the wired orchestrator plus the resources it keeps open.
type app struct {
	registry     *persona.Registry
	orchestrator *conversation.Orchestrator
	store        *retrieval.Store
	history      *history.Store
	recorder     *history.Recorder
	logger       *zap.Logger
}

func newApp(ctx context.Context, opts *rootOptions, useTools *bool) (*app, error) {
	cfg, logger := opts.cfg, opts.logger

	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	store, err := retrieval.NewStore(ctx, cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open retrieval index: %w", err)
	}
	retriever := retrieval.NewRetriever(store, opts.deps.newEmbedder(cfg), cfg.RetrievalTopK, logger.Named("retrieval"))

	responder, err := opts.deps.newResponder(ctx, cfg, retriever, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	orchestrator := conversation.NewOrchestrator(registry, responder,
		conversation.WithToolMode(useTools),
		conversation.WithLogger(logger.Named("conversation")))

	a := &app{registry: registry, orchestrator: orchestrator, store: store, logger: logger}
	if cfg.HistoryPath != "" {
		a.history, err = history.Open(ctx, cfg.HistoryPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		a.recorder = history.NewRecorder(a.history, logger)
	}
	return a, nil
}

// record persists c; history is best effort and never interrupts the chat.
func (a *app) record(ctx context.Context, c *conversation.Conversation) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.Sync(ctx, c); err != nil {
		a.logger.Warn("failed to record conversation", zap.String("conversation", c.ID), zap.Error(err))
	}
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.history.Close())
}

// newGenerator wires the chat model, the ReAct tool loop and the retriever into a Generator.
// A model without tool binding still answers templated questions; the tool path then fails per answer.
func newGenerator(ctx context.Context, cfg *config.Config, lookup *retrieval.Retriever, logger *zap.Logger) (conversation.Responder, error) {
	chatModel, err := agents.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	var loop agents.ReasoningLoop
	toolModel, err := agents.ToolCalling(chatModel)
	if err == nil {
		loop, err = agents.NewReActLoop(ctx, toolModel, tools.NewSearchTools(cfg), cfg.MaxToolSteps, logger.Named("react"))
	}
	if err != nil {
		logger.Warn("tool reasoning unavailable", zap.String("model", cfg.Model), zap.Error(err))
		loop = agents.UnavailableLoop(err)
	}

	return agents.NewGenerator(agents.NewChatCompleter(chatModel),
		agents.WithContextLookup(lookup),
		agents.WithReasoningLoop(loop),
		agents.WithLogger(logger.Named("agents"))), nil
}

// runAsk submits one question to a fresh conversation and prints every answer.
func runAsk(ctx context.Context, opts *rootOptions, out io.Writer, question string, personaIDs []string, useTools *bool) error {
	a, err := newApp(ctx, opts, useTools)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(personaIDs) == 0 {
		personaIDs = a.registry.IDs()
	}

	conv := conversation.New(opts.cfg.CloseKeyword)
	qid, err := a.orchestrator.Submit(conv, question)
	if err != nil {
		return err
	}
	if qid < 0 {
		fmt.Fprintln(out, mutedStyle.Render("Conversation closed before any question was asked."))
		return nil
	}
	if _, err := a.orchestrator.SelectPersonas(conv, qid, personaIDs); err != nil {
		return err
	}

	renderer := opts.renderer()
	a.orchestrator.Drain(ctx, conv, func(_ conversation.Trigger, p persona.Persona) {
		fmt.Fprintln(out, thinkingStyle.Render(fmt.Sprintf("⏳ %s is thinking...", p.DisplayName)))
	})
	a.record(ctx, conv)
	for _, msg := range conv.Messages() {
		if msg.IsUser() {
			continue
		}
		fmt.Fprint(out, renderer.Render(msg.Content))
	}
	return nil
}

func runIngest(ctx context.Context, opts *rootOptions, out io.Writer, path string, reset bool) error {
	cfg := opts.cfg
	store, err := retrieval.NewStore(ctx, cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to open retrieval index: %w", err)
	}
	defer store.Close()

	if reset {
		if err := store.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "🧹 Existing index cleared")
	}

	fmt.Fprintf(out, "📚 Ingesting %s...\n", path)
	ingester := retrieval.NewIngester(store, opts.deps.newEmbedder(cfg), cfg.ChunkSize, cfg.ChunkOverlap, opts.logger.Named("ingest"))
	n, err := ingester.Ingest(ctx, path)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Ingestion failed"))
		return err
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, completedStyle.Render(fmt.Sprintf("✅ Indexed %d chunks (%d in index)", n, total)))
	return nil
}
