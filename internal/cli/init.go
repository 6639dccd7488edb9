package cli

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "init",
        Short: "Scaffold a sample routedoc configuration file",
        Long:  "Scaffold a commented routedoc configuration file that documents available options.",
        RunE: func(cmd *cobra.Command, args []string) error {
            out, err := cmd.Flags().GetString("out")
            if err != nil {
                return err
            }
            force, err := cmd.Flags().GetBool("force")
            if err != nil {
                return err
            }
            verbose, err := cmd.Flags().GetBool("verbose")
            if err != nil {
                return err
            }
            cfg := &InitConfig{
                OutputPath: out,
                Force:      force,
                Verbose:    verbose,
            }
            return initRunner(cmd.Context(), cfg)
        },
    }

    cmd.Flags().String("out", "routedoc.yaml", "Where to write the sample config file")
    cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

    return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
    _ = ctx

    out := strings.TrimSpace(cfg.OutputPath)
    if out == "" {
        out = "routedoc.yaml"
    }
    absPath, err := filepath.Abs(out)
    if err != nil {
        return fmt.Errorf("init: resolve output path: %w", err)
    }

    if st, err := os.Stat(absPath); err == nil && !cfg.Force {
        if st.Mode().IsRegular() {
            return usageErrorf("init: %q already exists (use --force to overwrite)", absPath)
        }
    }

    if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
        return usageErrorf("init: cannot create parent directory: %v", err)
    }

    content := strings.TrimSpace(sampleConfigYAML) + "\n"

    // Atomic write via temp + rename
    tmp := absPath + ".tmp"
    if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
        return usageErrorf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err)
    }
    if err := os.Rename(tmp, absPath); err != nil {
        _ = os.Remove(tmp)
        return usageErrorf("init: cannot place file at %s: %v", absPath, err)
    }
    fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
    return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# routedoc configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL to the catalog: a YAML/JSON file, a directory of them, or http/https.
# input: ./catalog.yaml

# Output format (swagger12|swagger2|openapi3|xlsx). Defaults to swagger12.
# format: swagger12

# Output directory. When omitted, derived from the catalog title.
# out: ./docs

# Document encoding (json|yaml). Defaults to json; ignored for xlsx.
# encoding: json

# Only document these classes (comma-separated or list).
# includeClasses: [Widget,Order]

# Skip these classes.
# excludeClasses: [Internal]

# Only document routes with these HTTP verbs.
# verbs: [get,post]

# Only document routes whose path matches one of these regular expressions.
# paths: ["^/widgets"]

# Override catalog metadata.
# title: Shop API
# apiVersion: 1.0.0
# basePath: /api

# Strip HTML from summaries and descriptions.
# sanitize: false

# Also write every log line to this file.
# logFile: ./routedoc.log

# Show a progress bar while documenting classes.
# progress: false

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite non-empty output directory.
# force: false

# Enable verbose logging.
# verbose: false
`
