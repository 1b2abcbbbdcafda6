package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

type commentResult struct {
	Path     string `json:"path"`
	Comment  string `json:"comment"`
	Previous string `json:"previous,omitempty"`
}

func newCommentCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment {get|set}",
		Short: "Read or replace archive comments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
	}
	cmd.AddCommand(newCommentGetCommand(g), newCommentSetCommand(g))
	return cmd
}

func newCommentGetCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH",
		Short: "Print the archive comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := g.client(cmd)
			if err != nil {
				return err
			}
			comment, err := c.Comment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if g.output == formatJSON {
				return render(cmd.OutOrStdout(), g.output, nil, nil, commentResult{Path: args[0], Comment: comment})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), comment)
			return err
		},
		DisableAutoGenTag: true,
	}
}

func newCommentSetCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "set PATH TEXT",
		Short: "Replace the archive comment",
		Long: `Replace the archive comment with TEXT. Replacing the comment of a signed
archive removes its signature.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, logger, err := g.client(cmd)
			if err != nil {
				return err
			}
			prev, err := c.SetComment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			logger.Info("comment updated", slog.String("path", args[0]), slog.Int("bytes", len(args[1])))
			if g.output == formatJSON {
				return render(cmd.OutOrStdout(), g.output, nil, nil, commentResult{Path: args[0], Comment: args[1], Previous: prev})
			}
			return nil
		},
		DisableAutoGenTag: true,
	}
}
