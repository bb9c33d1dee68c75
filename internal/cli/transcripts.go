package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// transcriptSummary describes one saved conversation in the results directory.
type transcriptSummary struct {
	Name      string
	Path      string
	Questions int
	ModTime   time.Time
	Size      int64
}

func newTranscriptsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Browse conversations saved with /save",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved transcripts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := listTranscripts(opts.cfg.ResultsDir)
			if err != nil {
				return err
			}
			printTranscripts(cmd.OutOrStdout(), list)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [NAME]",
		Short: "Render a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !strings.HasSuffix(name, ".md") {
				name += ".md"
			}
			data, err := os.ReadFile(filepath.Join(opts.cfg.ResultsDir, filepath.Base(name)))
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), opts.renderer().Render(string(data)))
			return nil
		},
	})

	return cmd
}

func listTranscripts(dir string) ([]transcriptSummary, error) {
	var out []transcriptSummary
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, "conversation-") || !strings.HasSuffix(name, ".md") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		questions := 0
		if data, err := os.ReadFile(path); err == nil {
			questions = strings.Count(string(data), "\n## Question ")
		}

		out = append(out, transcriptSummary{
			Name:      strings.TrimSuffix(name, ".md"),
			Path:      path,
			Questions: questions,
			ModTime:   info.ModTime(),
			Size:      info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan results directory: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

func printTranscripts(out io.Writer, list []transcriptSummary) {
	if len(list) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No saved transcripts yet. Use /save in the chat."))
		return
	}
	fmt.Fprintln(out, headerStyle.Render("🗂  Saved transcripts"))
	for _, t := range list {
		fmt.Fprintf(out, "  %s  %d question(s)  %s\n", t.Name, t.Questions, t.ModTime.Format("2006-01-02 15:04"))
	}
}
