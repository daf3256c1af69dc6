package bruntime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type NumericModel string

const (
	NumericInteger NumericModel = "integer"
	NumericFloat   NumericModel = "float"
)

const (
	DefaultMaxCallDepth = 1000
	// DefaultEmbedMaxSteps bounds runs started by hosts that cannot
	// interrupt a program.
	DefaultEmbedMaxSteps = 1_000_000
)

// Config selects the language variant and the resource bounds of a run.
type Config struct {
	// Numeric chooses whether decimal literals become floats.
	Numeric NumericModel `yaml:"numeric"`
	// Strict rejects binary operators whose operands differ in kind.
	// Lenient mode promotes int/float mixes and compares across kinds.
	Strict       bool `yaml:"strict"`
	MaxCallDepth int  `yaml:"max_call_depth"`
	// MaxSteps bounds executed lines; 0 disables the bound.
	MaxSteps int  `yaml:"max_steps"`
	Trace    bool `yaml:"trace"`
}

func DefaultConfig() Config {
	return Config{
		Numeric:      NumericInteger,
		Strict:       true,
		MaxCallDepth: DefaultMaxCallDepth,
		MaxSteps:     0,
		Trace:        false,
	}
}

// Bounded returns c with MaxSteps set to DefaultEmbedMaxSteps when it is
// unlimited.
func (c Config) Bounded() Config {
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultEmbedMaxSteps
	}
	return c
}

// ConfigError aggregates config validation failures.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

func (c Config) Validate() error {
	var errs ConfigError
	switch c.Numeric {
	case NumericInteger, NumericFloat:
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("numeric must be %q or %q, got %q", NumericInteger, NumericFloat, c.Numeric))
	}
	if c.MaxCallDepth < 1 {
		errs.Issues = append(errs.Issues, "max_call_depth must be at least 1")
	}
	if c.MaxSteps < 0 {
		errs.Issues = append(errs.Issues, "max_steps must not be negative")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), fmt.Errorf("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := decodeConfig(file)
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig is LoadConfig for an in-memory document. Empty input yields
// the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg, err := decodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultConfig(), nil
		}
		return cfg, err
	}
	cfg.Numeric = NumericModel(strings.ToLower(strings.TrimSpace(string(cfg.Numeric))))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
