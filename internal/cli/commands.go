package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/CortexChat/config"
	"github.com/dyike/CortexChat/internal/conversation"
	"github.com/dyike/CortexChat/internal/logging"
	"github.com/dyike/CortexChat/internal/persona"
	"github.com/dyike/CortexChat/internal/retrieval"
)

const version = "v1.0.0"

// dependencies are the collaborators commands build on. Tests replace them with fakes.
type dependencies struct {
	prompter     prompter
	newResponder func(ctx context.Context, cfg *config.Config, lookup *retrieval.Retriever, logger *zap.Logger) (conversation.Responder, error)
	newEmbedder  func(cfg *config.Config) retrieval.Embedder
}

func defaultDependencies() dependencies {
	return dependencies{
		prompter:     surveyPrompter{},
		newResponder: newGenerator,
		newEmbedder: func(cfg *config.Config) retrieval.Embedder {
			return retrieval.NewOllamaEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)
		},
	}
}

// rootOptions holds what PersistentPreRunE resolves for every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	plain      bool

	deps    dependencies
	manager *config.Manager
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDependencies())
}

func newRootCmd(deps dependencies) *cobra.Command {
	opts := &rootOptions{deps: deps}

	rootCmd := &cobra.Command{
		Use:   "cortexchat",
		Short: "CortexChat - multi-persona AI chat",
		Long: `CortexChat lets you ask a question once and choose which AI personas answer it.
Each persona either answers from its prompt template, optionally grounded in your
ingested documents, or reasons with web search tools when the question calls for it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start the chat
			return runChat(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newAskCmd(opts))
	rootCmd.AddCommand(newIngestCmd(opts))
	rootCmd.AddCommand(newPersonasCmd(opts))
	rootCmd.AddCommand(newTranscriptsCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "Print raw markdown instead of rendering it")

	return rootCmd
}

// load reads the persisted config, overlays the environment and opens the log file.
func (o *rootOptions) load() error {
	root := ""
	if o.configPath != "" {
		root = filepath.Dir(o.configPath)
	} else if cwd, err := os.Getwd(); err == nil {
		root = cwd
	}

	managerOpts := []config.ManagerOption{config.WithInitialConfig(config.DefaultConfigWithRoot(root))}
	if o.configPath != "" {
		managerOpts = append(managerOpts, config.WithConfigPath(o.configPath))
	}
	manager, err := config.NewManager(managerOpts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg := manager.Get().WithEnv()
	if o.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	logger, err := logging.New(cfg.DataDir, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	manager.SetLogger(logger)

	o.manager = manager
	o.cfg = cfg
	o.logger = logger
	logger.Debug("configuration loaded", zap.String("path", manager.Path()))
	return nil
}

func (o *rootOptions) close() {
	if o.logger != nil {
		_ = o.logger.Sync()
	}
}

func (o *rootOptions) renderer() *markdownRenderer {
	return newMarkdownRenderer(o.plain)
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive multi-persona chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		personas []string
		toolMode string
	)
	cmd := &cobra.Command{
		Use:   "ask [QUESTION]",
		Short: "Ask one question and print each selected persona's answer",
		Long: `Ask a single question without entering the chat.
Example: cortexchat ask "What is empathy in leadership?" --persona generic --persona twin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			useTools, err := parseToolMode(toolMode)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), opts, cmd.OutOrStdout(), strings.Join(args, " "), personas, useTools)
		},
	}

	cmd.Flags().StringSliceVarP(&personas, "persona", "p", nil, "Persona id or display name (repeatable, default: all)")
	cmd.Flags().StringVar(&toolMode, "tools", "auto", "Tool usage: auto, on or off")
	return cmd
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "ingest [FILE]",
		Short: "Index a text document for retrieval-grounded personas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), opts, cmd.OutOrStdout(), args[0], reset)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Drop the existing index before ingesting")
	return cmd
}

func newPersonasCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List the available personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(opts.cfg)
			if err != nil {
				return err
			}
			printPersonas(cmd.OutOrStdout(), registry.List())
			return nil
		},
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "CortexChat %s\n", version)
			fmt.Fprintln(out, "Multi-persona chat built with Go and Eino")
		},
	}
}

// parseToolMode maps auto to nil so each question decides for itself.
func parseToolMode(mode string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return nil, nil
	case "on", "true", "yes":
		v := true
		return &v, nil
	case "off", "false", "no":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("invalid --tools value %q (use auto, on or off)", mode)
	}
}

func loadRegistry(cfg *config.Config) (*persona.Registry, error) {
	if cfg.PersonasFile == "" {
		return persona.DefaultRegistry(), nil
	}
	registry, err := persona.LoadFile(cfg.PersonasFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load personas: %w", err)
	}
	return registry, nil
}
