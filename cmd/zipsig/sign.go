package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/meigma/zipsig"
)

func newSignCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "sign PATH...",
		Short: "Sign archives with the configured signing command",
		Long: `Sign each archive: write its digest to "<archive>.sig.ps1", run the signing
command from --config on that file, and store the signed result in the archive
comment. The catalog file is kept as a detached signature.`,
		Example: `  zipsig --config signer.yaml sign release.zip`,
		Args:    cobra.MinimumNArgs(1),
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
				sigs   []zipsig.Signature
				rows   []table.Row
				failed pathErrors
			)
			for _, p := range paths {
				sig, err := c.Sign(cmd.Context(), p)
				if err != nil {
					failed.add("sign", p, err)
					continue
				}
				sigs = append(sigs, sig)
				rows = append(rows, table.Row{sig.Digest, sig.Path, sig.Sidecar})
			}
			if err := render(cmd.OutOrStdout(), g.output, table.Row{"Digest", "Path", "Sidecar"}, rows, sigs); err != nil {
				return err
			}
			return reportFailures(logger, failed.err())
		},
		DisableAutoGenTag: true,
	}
}

func newVerifyCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "verify PATH...",
		Short: "Check archive signatures",
		Long: `Check that each archive's digest matches the digest in its signature. When
the --config file has a verifyCommand, the signature block is checked with it
too.`,
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

			sigs, runErr := c.VerifyAll(cmd.Context(), paths)
			var (
				ok   []zipsig.Signature
				rows []table.Row
			)
			for _, sig := range sigs {
				if sig.Digest == "" {
					continue
				}
				status := "DigestMatch"
				if sig.Verified {
					status = "Valid"
				}
				ok = append(ok, sig)
				rows = append(rows, table.Row{status, sig.Digest, sig.Path})
			}
			if err := render(cmd.OutOrStdout(), g.output, table.Row{"Status", "Digest", "Path"}, rows, ok); err != nil {
				return err
			}
			return reportFailures(logger, runErr)
		},
		DisableAutoGenTag: true,
	}
}

func newExportCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export PATH...",
		Short: "Write embedded signatures to catalog files",
		Long: `Write the signature stored in each archive's comment to "<archive>.sig.ps1".
Unsigned archives are reported and nothing is written for them.`,
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

			type exported struct {
				Path    string `json:"path"`
				Sidecar string `json:"sidecar"`
			}
			var (
				out    []exported
				rows   []table.Row
				failed pathErrors
			)
			for _, p := range paths {
				sidecar, err := c.ExportSignature(cmd.Context(), p)
				if err != nil {
					failed.add("export", p, err)
					continue
				}
				out = append(out, exported{Path: p, Sidecar: sidecar})
				rows = append(rows, table.Row{p, sidecar})
			}
			if err := render(cmd.OutOrStdout(), g.output, table.Row{"Path", "Sidecar"}, rows, out); err != nil {
				return err
			}
			return reportFailures(logger, failed.err())
		},
		DisableAutoGenTag: true,
	}
}
