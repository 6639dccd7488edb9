package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// The tests that swap generateRunner run sequentially.

func TestGenerateConfigFromFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--verbose",
		"generate",
		"--input", "catalog.yaml",
		"--format", "OpenAPI",
		"--out", "./build",
		"--encoding", "yml",
		"--include-classes", "Widget,Order",
		"--exclude-classes", "Internal",
		"--verbs", "get, post",
		"--paths", "^/widgets",
		"--title", "Shop API",
		"--api-version", "2.0.0",
		"--base-path", "/api",
		"--sanitize",
		"--progress",
		"--dry-run",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	want := GenerateConfig{
		Input:          "catalog.yaml",
		Format:         FormatOpenAPI3,
		Out:            "./build",
		Encoding:       "yaml",
		IncludeClasses: []string{"Widget", "Order"},
		ExcludeClasses: []string{"Internal"},
		Verbs:          []string{"get", "post"},
		PathPatterns:   []string{"^/widgets"},
		Title:          "Shop API",
		APIVersion:     "2.0.0",
		BasePath:       "/api",
		Sanitize:       true,
		DryRun:         true,
		Force:          true,
		Verbose:        true,
		Progress:       true,
	}
	if diff := cmp.Diff(want, *captured); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-catalog.yaml
format: xlsx
out: from-config
includeClasses:
  - Widget
exclude_classes: Internal
verbs: [get]
apiVersion: 3
dryRun: true
force: false
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "flag-catalog.yaml",
		"--include-classes", "Order",
		"--dry-run=false",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "flag-catalog.yaml" {
		t.Errorf("input: want %q got %q", "flag-catalog.yaml", captured.Input)
	}
	if captured.Format != FormatXLSX {
		t.Errorf("format: want xlsx got %q", captured.Format)
	}
	if captured.Out != "from-config" {
		t.Errorf("out: want from-config got %q", captured.Out)
	}
	if want := []string{"Order"}; !equalStringSlices(captured.IncludeClasses, want) {
		t.Errorf("include classes: want %v got %v", want, captured.IncludeClasses)
	}
	if want := []string{"Internal"}; !equalStringSlices(captured.ExcludeClasses, want) {
		t.Errorf("exclude classes: want %v got %v", want, captured.ExcludeClasses)
	}
	if want := []string{"get"}; !equalStringSlices(captured.Verbs, want) {
		t.Errorf("verbs: want %v got %v", want, captured.Verbs)
	}
	if captured.APIVersion != "3" {
		t.Errorf("api version: want 3 got %q", captured.APIVersion)
	}
	if captured.Encoding != "json" {
		t.Errorf("encoding: want json default got %q", captured.Encoding)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigPathPatternsKeepCommas(t *testing.T) {
	const quantified = "^/v[0-9]{1,2}/widgets"

	tmpDir := t.TempDir()
	listConfig := filepath.Join(tmpDir, "list.yaml")
	if err := os.WriteFile(listConfig, []byte("input: c.yaml\npaths:\n  - \"^/v[0-9]{1,2}/widgets\"\n  - \"/parts$\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	scalarConfig := filepath.Join(tmpDir, "scalar.yaml")
	if err := os.WriteFile(scalarConfig, []byte("input: c.yaml\npathPatterns: \"^/v[0-9]{1,2}/widgets\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"flag", []string{"generate", "--input", "c.yaml", "--paths", quantified}, []string{quantified}},
		{"repeated flag", []string{"generate", "--input", "c.yaml", "--paths", quantified, "--paths", "/parts$"}, []string{quantified, "/parts$"}},
		{"config list", []string{"--config", listConfig, "generate"}, []string{quantified, "/parts$"}},
		{"config string", []string{"--config", scalarConfig, "generate"}, []string{quantified}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured *GenerateConfig
			generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
				captured = cfg
				return nil
			}
			t.Cleanup(func() { generateRunner = runGenerate })

			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)
			if err := root.Execute(); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if diff := cmp.Diff(tc.want, captured.PathPatterns); diff != "" {
				t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "catalog.yaml",
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"generate"}, "--input is required"},
		{"bad format", []string{"generate", "--input", "c.yaml", "--format", "raml"}, "unsupported --format"},
		{"bad encoding", []string{"generate", "--input", "c.yaml", "--encoding", "toml"}, "encoding"},
		{"overlap", []string{"generate", "--input", "c.yaml", "--include-classes", "A,B", "--exclude-classes", "B"}, "overlap: B"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)

			err := root.Execute()
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDeriveOutDir(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Shop API":        "shop-api-docs",
		"  Orders/v2.1  ": "orders-v2-1-docs",
		"":                "api-docs",
		"!!!":             "api-docs",
	}
	for in, want := range tests {
		if got := deriveOutDir(in); got != want {
			t.Errorf("deriveOutDir(%q) = %q, want %q", in, got, want)
		}
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
