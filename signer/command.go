package signer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// maxStderr bounds how much command stderr is kept in an error.
const maxStderr = 4 << 10

// CommandOption configures a CommandSigner or CommandVerifier.
type CommandOption func(*command) error

// WithLogger sets the logger for command execution.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) CommandOption {
	return func(c *command) error {
		if logger == nil {
			return errors.New("signer: nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithEnv appends "KEY=value" entries to the command environment.
func WithEnv(env ...string) CommandOption {
	return func(c *command) error {
		c.env = append(c.env, env...)
		return nil
	}
}

type command struct {
	cfg    *Config
	logger *slog.Logger
	env    []string
}

func newCommand(cfg *Config, opts []CommandOption) (command, error) {
	if cfg == nil {
		return command{}, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	c := command{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return command{}, err
		}
	}
	return c, nil
}

// run executes template with {file} bound to file and returns stderr in the
// error on failure.
func (c command) run(ctx context.Context, template []string, file string) error {
	args := c.cfg.Expand(template, file)
	c.logger.Debug("signer: run command",
		slog.String("program", args[0]),
		slog.String("file", file))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // argv comes from the user's signer config
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "..."
		}
		if msg == "" {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return fmt.Errorf("%s: %w: %s", args[0], err, msg)
	}
	return nil
}

// CommandSigner signs catalog files by running Config.Command.
type CommandSigner struct {
	cmd command
}

// NewCommandSigner creates a signer from a validated config.
func NewCommandSigner(cfg *Config, opts ...CommandOption) (*CommandSigner, error) {
	c, err := newCommand(cfg, opts)
	if err != nil {
		return nil, err
	}
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("%w: command is required", ErrInvalidConfig)
	}
	return &CommandSigner{cmd: c}, nil
}

// SignFile runs the signing command on path. The command is expected to
// rewrite path in place with a signature block appended.
func (s *CommandSigner) SignFile(ctx context.Context, path string) error {
	if err := s.cmd.run(ctx, s.cmd.cfg.Command, path); err != nil {
		return fmt.Errorf("%w: %w", ErrSignFailed, err)
	}
	return nil
}

// CommandVerifier checks catalogs by running Config.VerifyCommand on a
// temporary copy. A non-zero exit status rejects the catalog.
type CommandVerifier struct {
	cmd command
}

// NewCommandVerifier creates a verifier from a validated config with a VerifyCommand.
func NewCommandVerifier(cfg *Config, opts ...CommandOption) (*CommandVerifier, error) {
	c, err := newCommand(cfg, opts)
	if err != nil {
		return nil, err
	}
	if len(cfg.VerifyCommand) == 0 {
		return nil, fmt.Errorf("%w: verifyCommand is required", ErrInvalidConfig)
	}
	return &CommandVerifier{cmd: c}, nil
}

// VerifyCatalog writes catalog to a temporary directory under name and runs
// the verify command on it.
func (v *CommandVerifier) VerifyCatalog(ctx context.Context, name string, catalog []byte) error {
	dir, err := os.MkdirTemp("", "zipsig-verify-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	base := filepath.Base(name)
	if name == "" || base == "." || base == string(filepath.Separator) {
		base = "catalog.sig.ps1"
	}
	path := filepath.Join(dir, base)
	if err := os.WriteFile(path, catalog, 0o600); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := v.cmd.run(ctx, v.cmd.cfg.VerifyCommand, path); err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	return nil
}
