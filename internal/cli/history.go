package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dyike/CortexChat/internal/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse conversations recorded in the history database",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), opts, func(store *history.Store) error {
				convs, err := store.ListConversations(cmd.Context(), 0, limit)
				if err != nil {
					return err
				}
				printConversations(cmd.OutOrStdout(), convs)
				return nil
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of conversations to list")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show [ID]",
		Short: "Render a recorded conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), opts, func(store *history.Store) error {
				conv, err := store.GetConversation(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if conv == nil {
					return fmt.Errorf("conversation %s not found", args[0])
				}
				msgs, err := store.ListMessages(cmd.Context(), conv.ID)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), opts.renderer().Render(history.Markdown(*conv, msgs)))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [ID]",
		Short: "Delete a recorded conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), opts, func(store *history.Store) error {
				if err := store.DeleteConversation(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "🗑  Deleted conversation %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func withHistory(ctx context.Context, opts *rootOptions, fn func(*history.Store) error) error {
	if opts.cfg.HistoryPath == "" {
		return fmt.Errorf("history is disabled: history_path is empty")
	}
	store, err := history.Open(ctx, opts.cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func printConversations(out io.Writer, convs []history.ConversationWithMeta) {
	if len(convs) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No conversations recorded yet."))
		return
	}
	fmt.Fprintln(out, headerStyle.Render("🕘 Recorded conversations"))
	for _, c := range convs {
		question := c.FirstQuestion
		if r := []rune(question); len(r) > 60 {
			question = string(r[:60]) + "..."
		}
		fmt.Fprintf(out, "  %s  %-6s  %2d msg  %s\n", c.ID, c.Status, c.Messages, question)
	}
}
