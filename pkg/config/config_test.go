package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestParseLayersDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
optimize: 2
check: true
format:
  indent: 2
  operator-spacing: false
syntax:
  keywords: {var: let}
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Optimize != 2 || !cfg.Check {
		t.Fatalf("explicit settings lost: %+v", cfg)
	}
	if cfg.MaxCallDepth != 512 || cfg.PatternCacheSize != 64 {
		t.Fatalf("defaults not applied: depth=%d cache=%d", cfg.MaxCallDepth, cfg.PatternCacheSize)
	}
	format := cfg.FormatConfig()
	if format.Indent != 2 || format.OperatorSpacing {
		t.Fatalf("format section not honoured: %+v", format)
	}
	if got := cfg.SyntaxTable().Keywords["var"]; got != "let" {
		t.Fatalf("syntax keywords = %q, want let", got)
	}

	opts := cfg.Options()
	if opts.Optimize != 2 || !opts.Check || opts.MaxDepth != 512 {
		t.Fatalf("interpreter options unexpected: %+v", opts)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	format := cfg.FormatConfig()
	if format.Indent != 4 || !format.OperatorSpacing {
		t.Fatalf("expected default layout, got %+v", format)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "optimise: 1\n",
		"optimize":        "optimize: 3\n",
		"negative size":   "pattern-cache-size: -1\n",
		"zero indent":     "format:\n  indent: 0\n",
		"negative indent": "format:\n  indent: -2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected %q to be rejected", doc)
			}
		})
	}
}

func TestLoadPathAndEnvironment(t *testing.T) {
	path := writeConfig(t, "optimize: 1\nmax-call-depth: 10\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvOptimize, "0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Optimize != 0 || cfg.MaxCallDepth != 10 {
		t.Fatalf("unexpected settings: %+v", cfg)
	}

	t.Setenv(EnvOptimize, "seven")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), EnvOptimize) {
		t.Fatalf("expected a %s error, got %v", EnvOptimize, err)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvOptimize, "")
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file should not fail: %v", err)
	}
	if cfg.Path != "" || cfg.PatternCacheSize != 64 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("an explicit missing path should fail")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
