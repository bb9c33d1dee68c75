package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2/terminal"
	"go.uber.org/zap"

	"github.com/dyike/CortexChat/config"
	"github.com/dyike/CortexChat/internal/conversation"
	"github.com/dyike/CortexChat/internal/debug"
	"github.com/dyike/CortexChat/internal/persona"
	"github.com/dyike/CortexChat/pkg/utils"
)

// chatSession is one interactive run. /clear swaps conv for a fresh conversation.
type chatSession struct {
	out          io.Writer
	prompter     prompter
	orchestrator *conversation.Orchestrator
	record       func(context.Context, *conversation.Conversation)
	renderer     *markdownRenderer
	logger       *zap.Logger

	mu           sync.Mutex
	closeKeyword string
	resultsDir   string

	conv         *conversation.Conversation
	lastQuestion int
}

func runChat(ctx context.Context, opts *rootOptions, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := debug.NewEinoDebugger(opts.cfg, opts.logger).Initialize(ctx); err != nil {
		opts.logger.Warn("eino debug unavailable", zap.Error(err))
	}

	a, err := newApp(ctx, opts, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	s := &chatSession{
		out:          out,
		prompter:     opts.deps.prompter,
		orchestrator: a.orchestrator,
		record:       a.record,
		renderer:     opts.renderer(),
		logger:       opts.logger.Named("chat"),
		closeKeyword: opts.cfg.CloseKeyword,
		resultsDir:   opts.cfg.ResultsDir,
	}
	s.reset()

	if err := opts.manager.Watch(ctx, s.applyConfig); err != nil {
		s.logger.Warn("config hot reload disabled", zap.Error(err))
	} else {
		defer opts.manager.Wait()
		defer cancel()
	}

	return s.run(ctx)
}

func (s *chatSession) reset() {
	s.mu.Lock()
	keyword := s.closeKeyword
	s.mu.Unlock()

	s.conv = conversation.New(keyword)
	s.lastQuestion = -1
	s.logger.Info("conversation started", zap.String("conversation", s.conv.ID))
}

// applyConfig takes effect for the next conversation.
func (s *chatSession) applyConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeKeyword = cfg.CloseKeyword
	s.resultsDir = cfg.ResultsDir
	s.logger.Info("configuration reloaded", zap.String("close_keyword", cfg.CloseKeyword))
}

func (s *chatSession) run(ctx context.Context) error {
	s.showWelcome()

	for {
		input, err := s.prompter.Input("You:")
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out, "👋 Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch lower := strings.ToLower(input); {
		case lower == "exit" || lower == "quit":
			fmt.Fprintln(s.out, "👋 Goodbye!")
			return nil
		case strings.HasPrefix(input, "/"):
			s.handleCommand(ctx, lower)
		default:
			s.ask(ctx, input)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *chatSession) handleCommand(ctx context.Context, command string) {
	switch strings.Fields(command)[0] {
	case "/help":
		s.showHelp()
	case "/clear":
		s.reset()
		fmt.Fprintln(s.out, completedStyle.Render("🧹 Started a new conversation"))
	case "/select":
		qid, ok := s.conv.OpenQuestion()
		if !ok {
			fmt.Fprintln(s.out, mutedStyle.Render("No question is open for persona selection."))
			return
		}
		s.selectAndAnswer(ctx, qid)
	case "/tools":
		s.showToolLogs()
	case "/save":
		s.save()
	default:
		fmt.Fprintf(s.out, "❌ Unknown command: %s. Type /help for available commands.\n", command)
	}
}

func (s *chatSession) ask(ctx context.Context, text string) {
	qid, err := s.orchestrator.Submit(s.conv, text)
	if errors.Is(err, conversation.ErrClosed) {
		fmt.Fprintln(s.out, mutedStyle.Render("This conversation is closed. Type /clear to start a new one or exit to leave."))
		return
	}
	if err != nil {
		fmt.Fprintf(s.out, "❌ %v\n", err)
		return
	}
	s.record(ctx, s.conv)
	if qid < 0 {
		fmt.Fprintln(s.out, completedStyle.Render("✅ Conversation closed. Type /save to keep it, /clear to start over."))
		return
	}

	s.lastQuestion = qid
	s.selectAndAnswer(ctx, qid)
}

// selectAndAnswer offers the personas that have not answered qid and runs the chosen ones.
func (s *chatSession) selectAndAnswer(ctx context.Context, qid int) {
	pending := s.orchestrator.Pending(s.conv, qid)
	if len(pending) == 0 {
		fmt.Fprintln(s.out, mutedStyle.Render("Every persona has answered this question."))
		return
	}

	chosen, err := s.prompter.SelectPersonas(pending)
	if err != nil {
		if !errors.Is(err, terminal.InterruptErr) {
			fmt.Fprintf(s.out, "❌ %v\n", err)
		}
		return
	}
	if len(chosen) == 0 {
		fmt.Fprintln(s.out, mutedStyle.Render("No persona selected. Type /select to choose later."))
		return
	}

	if _, err := s.orchestrator.SelectPersonas(s.conv, qid, chosen); err != nil {
		fmt.Fprintf(s.out, "❌ %v\n", err)
		return
	}

	msgs := s.orchestrator.Drain(ctx, s.conv, s.thinking)
	s.record(ctx, s.conv)
	for _, msg := range msgs {
		fmt.Fprint(s.out, s.renderer.Render(msg.Content))
	}
}

func (s *chatSession) thinking(_ conversation.Trigger, p persona.Persona) {
	fmt.Fprintln(s.out, thinkingStyle.Render(fmt.Sprintf("⏳ %s is thinking...", p.DisplayName)))
}

func (s *chatSession) showToolLogs() {
	if s.lastQuestion < 0 {
		fmt.Fprintln(s.out, mutedStyle.Render("Ask a question first."))
		return
	}
	answered := s.conv.Answered(s.lastQuestion)
	if len(answered) == 0 {
		fmt.Fprintln(s.out, mutedStyle.Render("No persona has answered the latest question yet."))
		return
	}

	var b strings.Builder
	for _, id := range answered {
		name := id
		if p, err := s.orchestrator.Registry().Resolve(id); err == nil {
			name = p.DisplayName
		}
		fmt.Fprintf(&b, "### 🔧 %s\n\n%s\n\n", name, conversation.RenderToolLog(s.conv.ToolLog(s.lastQuestion, id)))
	}
	fmt.Fprint(s.out, s.renderer.Render(b.String()))
}

func (s *chatSession) save() {
	s.mu.Lock()
	dir := s.resultsDir
	s.mu.Unlock()

	path, err := utils.WriteMarkdown(dir, "conversation-"+s.conv.ID, conversation.Transcript(s.conv))
	if err != nil {
		fmt.Fprintln(s.out, errorStyle.Render("❌ "+err.Error()))
		return
	}
	s.logger.Info("transcript saved", zap.String("path", path))
	fmt.Fprintln(s.out, completedStyle.Render("💾 Saved to "+path))
}

func (s *chatSession) showWelcome() {
	fmt.Fprintln(s.out, titleStyle.Render("💬 CortexChat "+version))
	fmt.Fprintf(s.out, "Ask anything, then pick which personas answer. Type %q to close the conversation or /help for commands.\n\n", s.conv.CloseKeyword())
}

func (s *chatSession) showHelp() {
	fmt.Fprintln(s.out, headerStyle.Render("📚 CortexChat Help"))
	fmt.Fprintf(s.out, "  %-10s - close the current conversation\n", s.conv.CloseKeyword())
	fmt.Fprintln(s.out, "  /select    - choose more personas for the open question")
	fmt.Fprintln(s.out, "  /tools     - show tool activity for the latest question")
	fmt.Fprintln(s.out, "  /save      - write the transcript to the results directory")
	fmt.Fprintln(s.out, "  /clear     - start a new conversation")
	fmt.Fprintln(s.out, "  /help      - show this help")
	fmt.Fprintln(s.out, "  exit, quit - leave CortexChat")
}
