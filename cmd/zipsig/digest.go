package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/meigma/zipsig"
)

func newDigestCommand(g *globals) *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "digest PATH...",
		Short: "Print the comment-independent digest of archives",
		Long: `Print the digest of each archive: a SHA-256 over the archive with its
comment excluded, formatted as "sha256:<hex>".

With --export the digest is also written to "<archive>.sig.ps1", ready to be
signed by an external tool.`,
		Example: `  zipsig digest release.zip
  zipsig digest --export 'dist/*.zip'
  zipsig digest https://example.com/release.zip`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, logger, err := g.client(cmd)
			if err != nil {
				return err
			}
			paths, err := expandPaths(args)
			if err != nil {
				return err
			}

			infos, runErr := c.DigestAll(cmd.Context(), paths, zipsig.DigestWithExport(export))
			var ok []zipsig.DigestInfo
			var rows []table.Row
			for _, info := range infos {
				if info.Digest == "" {
					continue
				}
				ok = append(ok, info)
				row := table.Row{info.Digest, info.Path}
				if export {
					row = append(row, info.Sidecar)
				}
				rows = append(rows, row)
			}

			header := table.Row{"Digest", "Path"}
			if export {
				header = append(header, "Sidecar")
			}
			if err := render(cmd.OutOrStdout(), g.output, header, rows, ok); err != nil {
				return err
			}
			return reportFailures(logger, runErr)
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().BoolVar(&export, "export", false, "also write the digest to <archive>.sig.ps1")
	return cmd
}

func newHashCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "hash PATH...",
		Short: "Print the SHA-256 of whole files, comment included",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, logger, err := g.client(cmd)
			if err != nil {
				return err
			}
			paths, err := expandPaths(args)
			if err != nil {
				return err
			}

			var (
				infos  []zipsig.FileHashInfo
				rows   []table.Row
				failed pathErrors
			)
			for _, p := range paths {
				info, err := c.FileHash(cmd.Context(), p)
				if err != nil {
					failed.add("hash", p, err)
					continue
				}
				infos = append(infos, info)
				rows = append(rows, table.Row{info.Algorithm, info.Hash, info.Path})
			}
			if err := render(cmd.OutOrStdout(), g.output, table.Row{"Algorithm", "Hash", "Path"}, rows, infos); err != nil {
				return err
			}
			return reportFailures(logger, failed.err())
		},
		DisableAutoGenTag: true,
	}
}
