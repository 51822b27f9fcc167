// Package config loads quill.yml, the settings shared by the quill command
// line tools: preparation levels, interpreter limits and printer layout.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"quill/interpreter-go/pkg/interpreter"
	"quill/interpreter-go/pkg/printer"
)

const (
	// FileName is looked up in the working directory when no path is given.
	FileName = "quill.yml"

	EnvConfig   = "QUILL_CONFIG"
	EnvOptimize = "QUILL_OPTIMIZE"
)

// Config mirrors the quill.yml document. Fields left out of the file keep
// their defaults.
type Config struct {
	Optimize         int          `yaml:"optimize"`
	Check            bool         `yaml:"check"`
	WarningsAsErrors bool         `yaml:"warnings-as-errors"`
	MaxCallDepth     int          `yaml:"max-call-depth"`
	PatternCacheSize int          `yaml:"pattern-cache-size"`
	Format           FormatConfig `yaml:"format"`
	Syntax           SyntaxConfig `yaml:"syntax"`

	// Path is the file the settings came from, empty for defaults.
	Path string `yaml:"-"`
}

// FormatConfig is the printer layout section. Indent and OperatorSpacing
// are pointers so an explicit zero value is not replaced by the default.
type FormatConfig struct {
	Indent          *int  `yaml:"indent"`
	Tabs            bool  `yaml:"tabs"`
	BraceNewline    bool  `yaml:"brace-newline"`
	OperatorSpacing *bool `yaml:"operator-spacing"`
}

// SyntaxConfig respells keywords and operators when printing.
type SyntaxConfig struct {
	Keywords  map[string]string `yaml:"keywords"`
	Operators map[string]string `yaml:"operators"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	indent, spacing := 4, true
	return &Config{
		MaxCallDepth:     512,
		PatternCacheSize: 64,
		Format:           FormatConfig{Indent: &indent, OperatorSpacing: &spacing},
	}
}

// Load reads the configuration. An empty path falls back to $QUILL_CONFIG
// and then to quill.yml in the working directory; a missing default file
// is not an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if env := strings.TrimSpace(os.Getenv(EnvConfig)); env != "" {
			path, explicit = env, true
		} else {
			path = FileName
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, os.ErrNotExist):
		cfg := Default()
		return cfg, cfg.applyEnv()
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		cfg.Path = abs
	} else {
		cfg.Path = path
	}
	return cfg, cfg.applyEnv()
}

// Parse decodes a quill.yml document and layers the defaults underneath.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Optimize < 0 || c.Optimize > 2 {
		return fmt.Errorf("optimize must be 0, 1 or 2, got %d", c.Optimize)
	}
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max-call-depth must not be negative")
	}
	if c.PatternCacheSize < 0 {
		return fmt.Errorf("pattern-cache-size must not be negative")
	}
	if c.Format.Indent != nil && *c.Format.Indent < 1 {
		return fmt.Errorf("format.indent must be at least 1, got %d", *c.Format.Indent)
	}
	return nil
}

func (c *Config) applyEnv() error {
	raw := strings.TrimSpace(os.Getenv(EnvOptimize))
	if raw == "" {
		return nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", EnvOptimize, err)
	}
	c.Optimize = level
	if err := c.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", EnvOptimize, err)
	}
	return nil
}

// Options converts the settings into interpreter options. The caller fills
// in Stdout.
func (c *Config) Options() interpreter.Options {
	return interpreter.Options{
		Optimize:         c.Optimize,
		Check:            c.Check,
		WarningsAsErrors: c.WarningsAsErrors,
		MaxDepth:         c.MaxCallDepth,
		PatternCacheSize: c.PatternCacheSize,
	}
}

func (c *Config) FormatConfig() printer.FormatConfig {
	indent := 4
	if c.Format.Indent != nil {
		indent = *c.Format.Indent
	}
	spacing := c.Format.OperatorSpacing == nil || *c.Format.OperatorSpacing
	return printer.FormatConfig{
		Indent:          indent,
		Tabs:            c.Format.Tabs,
		BraceNewline:    c.Format.BraceNewline,
		OperatorSpacing: spacing,
	}
}

func (c *Config) SyntaxTable() *printer.SyntaxTable {
	return &printer.SyntaxTable{Keywords: c.Syntax.Keywords, Operators: c.Syntax.Operators}
}
