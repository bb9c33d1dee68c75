package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/CortexChat/config"
)

// newConfigCmd creates the config command
func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage CortexChat configuration settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), opts.cfg, opts.manager.Path())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), opts.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set [KEY] [VALUE]",
		Short: "Persist one setting to the config file",
		Long: `Set a configuration key by its JSON name.
Example: cortexchat config set close_keyword bye`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setConfigValue(opts.manager, args[0], args[1]); err != nil {
				return err
			}
			opts.logger.Info("configuration updated", zap.String("key", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s updated in %s\n", args[0], opts.manager.Path())
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration
func showConfig(out io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(out, "📋 Current CortexChat Configuration:")
	fmt.Fprintln(out, "═══════════════════════════════════════")
	fmt.Fprintf(out, "Config File:          %s\n", path)
	fmt.Fprintf(out, "Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Fprintf(out, "Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Fprintf(out, "Data Directory:       %s\n", cfg.DataDir)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Fprintf(out, "Model:                %s\n", cfg.Model)
	fmt.Fprintf(out, "Backend URL:          %s\n", cfg.BackendURL)
	fmt.Fprintf(out, "Temperature:          %.2f\n", cfg.Temperature)
	fmt.Fprintf(out, "Max Tokens:           %d\n", cfg.MaxTokens)
	fmt.Fprintf(out, "Max Tool Steps:       %d\n", cfg.MaxToolSteps)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Embedding Model:      %s\n", cfg.EmbeddingModel)
	fmt.Fprintf(out, "Embedding URL:        %s\n", cfg.EmbeddingURL)
	fmt.Fprintf(out, "Index Path:           %s\n", cfg.IndexPath)
	fmt.Fprintf(out, "Retrieval Top K:      %d\n", cfg.RetrievalTopK)
	fmt.Fprintf(out, "Chunk Size/Overlap:   %d/%d\n", cfg.ChunkSize, cfg.ChunkOverlap)
	fmt.Fprintln(out)
	personas := cfg.PersonasFile
	if personas == "" {
		personas = "(built-in)"
	}
	fmt.Fprintf(out, "Personas:             %s\n", personas)
	fmt.Fprintf(out, "Close Keyword:        %s\n", cfg.CloseKeyword)
	fmt.Fprintf(out, "Debug Mode:           %t\n", cfg.Debug)
	fmt.Fprintf(out, "Eino Debug:           %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Fprintf(out, "Debug URL:            http://localhost:%d\n", cfg.EinoDebugPort)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "🔌 API Configuration:")
	fmt.Fprintln(out, "─────────────────────")
	fmt.Fprintf(out, "LLM API Key:          %s\n", configured(cfg.LLMAPIKey != ""))
	fmt.Fprintf(out, "Google Search:        %s\n", configured(cfg.GoogleAPIKey != "" && cfg.GoogleCSEID != ""))
	fmt.Fprintf(out, "GitHub Issues:        %s (%s)\n", configured(cfg.GitHubToken != ""), cfg.GitHubRepo)
}

func configured(ok bool) string {
	if ok {
		return "✅ Configured"
	}
	return "❌ Not configured"
}

// validateConfig validates the configuration and reports missing credentials as warnings
func validateConfig(out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "🔍 Validating CortexChat Configuration...")
	fmt.Fprintln(out, "═══════════════════════════════════════")

	fmt.Fprint(out, "⚙️  Checking configuration values... ")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(out, "❌")
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	fmt.Fprintln(out, "✅")

	fmt.Fprint(out, "📁 Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintln(out, "❌")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Fprintln(out, "✅")

	fmt.Fprint(out, "🎭 Checking personas... ")
	if _, err := loadRegistry(cfg); err != nil {
		fmt.Fprintln(out, "❌")
		return err
	}
	fmt.Fprintln(out, "✅")

	fmt.Fprint(out, "🔑 Checking API keys... ")
	var warnings []string
	if cfg.LLMProvider == "deepseek" && cfg.LLMAPIKey == "" {
		warnings = append(warnings, "DeepSeek API key not configured")
	}
	if cfg.GoogleAPIKey == "" || cfg.GoogleCSEID == "" {
		warnings = append(warnings, "Google Search credentials not configured")
	}
	if cfg.GitHubToken == "" {
		warnings = append(warnings, "GitHub token not configured")
	}
	if len(warnings) > 0 {
		fmt.Fprintln(out, "⚠️")
		for _, warning := range warnings {
			fmt.Fprintf(out, "  ⚠️  %s\n", warning)
		}
	} else {
		fmt.Fprintln(out, "✅")
	}

	fmt.Fprintln(out)
	if len(warnings) == 0 {
		fmt.Fprintln(out, "✅ Configuration validation completed successfully!")
	} else {
		fmt.Fprintf(out, "⚠️  Configuration validation completed with %d warnings.\n", len(warnings))
		fmt.Fprintln(out, "Search tools without credentials answer that they are unavailable.")
	}
	return nil
}

// setConfigValue converts value to the type the key currently holds and persists it.
func setConfigValue(manager *config.Manager, key, value string) error {
	current, err := json.Marshal(manager.Get())
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(current, &fields); err != nil {
		return err
	}

	key = strings.ToLower(strings.TrimSpace(key))
	existing, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	var typed any
	switch existing.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		typed = b
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		typed = f
	default:
		typed = value
	}

	patch, err := json.Marshal(map[string]any{key: typed})
	if err != nil {
		return err
	}
	return manager.UpdateFromJSON(string(patch))
}
