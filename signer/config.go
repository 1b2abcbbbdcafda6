package signer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultHashAlgorithm is used when a Config leaves HashAlgorithm empty.
const DefaultHashAlgorithm = "SHA256"

// ErrInvalidConfig is returned when a signer configuration fails validation.
var ErrInvalidConfig = errors.New("signer: invalid config")

// Placeholders substituted in each command argument.
const (
	PlaceholderFile            = "{file}"
	PlaceholderCertificate     = "{certificate}"
	PlaceholderTimestampServer = "{timestampServer}"
	PlaceholderHashAlgorithm   = "{hashAlgorithm}"
)

// Config describes external signing and verification commands.
type Config struct {
	// Command is the argv template run to sign a catalog file in place.
	Command []string `yaml:"command"`

	// VerifyCommand is the argv template run to check a catalog's signature.
	// Optional.
	VerifyCommand []string `yaml:"verifyCommand,omitempty"`

	// Certificate is substituted for {certificate}.
	Certificate string `yaml:"certificate,omitempty"`

	// TimestampServer is substituted for {timestampServer}.
	TimestampServer string `yaml:"timestampServer,omitempty"`

	// HashAlgorithm is substituted for {hashAlgorithm}. One of SHA256, SHA384
	// or SHA512; defaults to SHA256.
	HashAlgorithm string `yaml:"hashAlgorithm,omitempty"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signer config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates YAML config data. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes HashAlgorithm and checks the command templates.
func (c *Config) Validate() error {
	if len(c.Command) == 0 || strings.TrimSpace(c.Command[0]) == "" {
		return fmt.Errorf("%w: command is required", ErrInvalidConfig)
	}
	if !mentionsFile(c.Command) {
		return fmt.Errorf("%w: command must reference %s", ErrInvalidConfig, PlaceholderFile)
	}
	if len(c.VerifyCommand) > 0 {
		if strings.TrimSpace(c.VerifyCommand[0]) == "" {
			return fmt.Errorf("%w: verifyCommand has an empty program", ErrInvalidConfig)
		}
		if !mentionsFile(c.VerifyCommand) {
			return fmt.Errorf("%w: verifyCommand must reference %s", ErrInvalidConfig, PlaceholderFile)
		}
	}

	switch alg := strings.ToUpper(strings.TrimSpace(c.HashAlgorithm)); alg {
	case "":
		c.HashAlgorithm = DefaultHashAlgorithm
	case "SHA256", "SHA384", "SHA512":
		c.HashAlgorithm = alg
	default:
		return fmt.Errorf("%w: unsupported hashAlgorithm %q", ErrInvalidConfig, c.HashAlgorithm)
	}
	return nil
}

// Expand substitutes placeholders in template for the catalog at file.
func (c *Config) Expand(template []string, file string) []string {
	r := strings.NewReplacer(
		PlaceholderFile, file,
		PlaceholderCertificate, c.Certificate,
		PlaceholderTimestampServer, c.TimestampServer,
		PlaceholderHashAlgorithm, c.HashAlgorithm,
	)
	args := make([]string, len(template))
	for i, arg := range template {
		args[i] = r.Replace(arg)
	}
	return args
}

func mentionsFile(template []string) bool {
	for _, arg := range template {
		if strings.Contains(arg, PlaceholderFile) {
			return true
		}
	}
	return false
}
