package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meigma/zipsig"
	"github.com/meigma/zipsig/signer"
)

const (
	flagConfig      = "config"
	flagVerbose     = "verbose"
	flagOutput      = "output"
	flagConcurrency = "concurrency"
)

// errPathsFailed is returned when at least one path failed; details are logged.
var errPathsFailed = errors.New("one or more paths failed")

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	config      string
	verbose     bool
	output      outputFormat
	concurrency int
}

func newRootCommand() *cobra.Command {
	g := &globals{output: formatTable}
	cmd := &cobra.Command{
		Use:   "zipsig [command]",
		Short: "Sign and verify ZIP archives with comment-embedded signatures",
		Long: `zipsig computes a digest of a ZIP archive that ignores the archive comment,
has an external tool sign that digest, and stores the signature in the comment
as a single "ZipAuthenticode=sha256:<hex>,<block>" line.

Signing and signature checks run the commands from the --config file against
the catalog file "<archive>.sig.ps1".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	registerGlobalFlags(cmd.PersistentFlags(), g)

	cmd.AddCommand(
		newDigestCommand(g),
		newHashCommand(g),
		newExportCommand(g),
		newSignCommand(g),
		newVerifyCommand(g),
		newCommentCommand(g),
	)
	return cmd
}

func registerGlobalFlags(fs *pflag.FlagSet, g *globals) {
	fs.StringVar(&g.config, flagConfig, "", "path to a YAML signer configuration")
	fs.BoolVarP(&g.verbose, flagVerbose, "v", false, "enable debug logging")
	fs.VarP(&g.output, flagOutput, "o", "output format (table, json)")
	fs.IntVar(&g.concurrency, flagConcurrency, zipsig.DefaultConcurrency, "number of archives processed at once")
}

// logger returns a text logger on the command's stderr.
func (g *globals) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// client builds a zipsig.Client from the global flags and signer config.
func (g *globals) client(cmd *cobra.Command) (*zipsig.Client, *slog.Logger, error) {
	logger := g.logger(cmd)
	opts := []zipsig.Option{
		zipsig.WithLogger(logger),
		zipsig.WithConcurrency(g.concurrency),
	}

	if g.config != "" {
		cfg, err := signer.LoadConfig(g.config)
		if err != nil {
			return nil, nil, err
		}
		s, err := signer.NewCommandSigner(cfg, signer.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, zipsig.WithSigner(s))
		if len(cfg.VerifyCommand) > 0 {
			v, err := signer.NewCommandVerifier(cfg, signer.WithLogger(logger))
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, zipsig.WithVerifier(v))
		}
		logger.Debug("loaded signer config", slog.String("path", g.config))
	}

	c, err := zipsig.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create client: %w", err)
	}
	return c, logger, nil
}
