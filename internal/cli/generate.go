package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routedoc/internal/docgen"
	"github.com/mark3labs/routedoc/internal/emitter"
	"github.com/mark3labs/routedoc/internal/emitter/openapiemitter"
	"github.com/mark3labs/routedoc/internal/emitter/swaggeremitter"
	"github.com/mark3labs/routedoc/internal/emitter/xlsxemitter"
	"github.com/mark3labs/routedoc/internal/logger"
	"github.com/mark3labs/routedoc/internal/spec"
	"github.com/mark3labs/routedoc/internal/swagger"
)

// Output formats accepted by --format.
const (
	FormatSwagger12 = "swagger12"
	FormatSwagger2  = openapiemitter.FormatSwagger2
	FormatOpenAPI3  = openapiemitter.FormatOpenAPI3
	FormatXLSX      = "xlsx"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input          string
	Format         string
	Out            string
	Encoding       string
	IncludeClasses []string
	ExcludeClasses []string
	Verbs          []string
	PathPatterns   []string
	Title          string
	APIVersion     string
	BasePath       string
	Sanitize       bool
	LogFile        string
	ConfigPath     string
	DryRun         bool
	Force          bool
	Verbose        bool
	Progress       bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Format: FormatSwagger12, Encoding: emitter.EncodingJSON}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate API documentation from a route and model catalog",
		Long: "Generate Swagger 1.2 documentation (or a Swagger 2.0, OpenAPI 3 or spreadsheet export) " +
			"from a catalog of route and model descriptors. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  routedoc generate --input catalog.yaml --out ./docs
  routedoc generate --input ./catalog --format openapi3 --encoding yaml
  routedoc --config routedoc.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the catalog (file or directory of .yaml/.json files)")
	flags.String("format", "", "Output format (swagger12|swagger2|openapi3|xlsx); defaults to swagger12")
	flags.String("out", "", "Output directory (derived from the catalog title when omitted)")
	flags.String("encoding", "", "Document encoding (json|yaml); defaults to json")
	flags.StringSlice("include-classes", nil, "Only document these classes")
	flags.StringSlice("exclude-classes", nil, "Skip these classes")
	flags.StringSlice("verbs", nil, "Only document routes with these HTTP verbs")
	flags.StringArray("paths", nil, "Only document routes whose path matches this regular expression (repeatable)")
	flags.String("title", "", "Override the documentation title")
	flags.String("api-version", "", "Override the API version")
	flags.String("base-path", "", "Override the base path")
	flags.Bool("sanitize", false, "Strip HTML from summaries and descriptions")
	flags.String("log-file", "", "Also write every log line to this file")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")
	flags.Bool("progress", false, "Show a progress bar while documenting classes")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"input":       &cfg.Input,
		"format":      &cfg.Format,
		"out":         &cfg.Out,
		"encoding":    &cfg.Encoding,
		"title":       &cfg.Title,
		"api-version": &cfg.APIVersion,
		"base-path":   &cfg.BasePath,
		"log-file":    &cfg.LogFile,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	lists := map[string]*[]string{
		"include-classes": &cfg.IncludeClasses,
		"exclude-classes": &cfg.ExcludeClasses,
		"verbs":           &cfg.Verbs,
	}
	for name, dst := range lists {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
	}
	// Regular expressions may contain commas: one flag, one pattern.
	if flags.Changed("paths") {
		value, err := flags.GetStringArray("paths")
		if err != nil {
			return err
		}
		cfg.PathPatterns = sanitizePatterns(value)
	}

	bools := map[string]*bool{
		"sanitize": &cfg.Sanitize,
		"dry-run":  &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
		"progress": &cfg.Progress,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Out = strings.TrimSpace(c.Out)
	c.Encoding = strings.ToLower(strings.TrimSpace(c.Encoding))
	c.Title = strings.TrimSpace(c.Title)
	c.APIVersion = strings.TrimSpace(c.APIVersion)
	c.BasePath = strings.TrimSpace(c.BasePath)
	c.LogFile = strings.TrimSpace(c.LogFile)
	c.IncludeClasses = sanitizeList(c.IncludeClasses)
	c.ExcludeClasses = sanitizeList(c.ExcludeClasses)
	c.Verbs = sanitizeList(c.Verbs)
	c.PathPatterns = sanitizePatterns(c.PathPatterns)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	switch c.Format {
	case "":
		c.Format = FormatSwagger12
	case FormatSwagger12, FormatXLSX:
	default:
		f, err := openapiemitter.NormalizeFormat(c.Format)
		if err != nil {
			return usageErrorf("generate: unsupported --format %q (allowed: swagger12, swagger2, openapi3, xlsx)", c.Format)
		}
		c.Format = f
	}

	enc, err := emitter.NormalizeEncoding(c.Encoding)
	if err != nil {
		return usageErrorf("generate: %v", err)
	}
	c.Encoding = enc

	overlap := intersect(c.IncludeClasses, c.ExcludeClasses)
	if len(overlap) > 0 {
		return usageErrorf("generate: include/exclude classes overlap: %s", strings.Join(overlap, ", "))
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log, err := logger.Open(os.Stderr, cfg.LogFile, cfg.Verbose)
	if err != nil {
		return usageErrorf("generate: %w", err)
	}
	prev := logger.Default()
	logger.SetDefault(log)
	defer func() {
		logger.SetDefault(prev)
		_ = log.Close()
	}()

	// 1) Load and validate the catalog (file, directory or http/https URL)
	cat, err := spec.Load(ctx, cfg.Input)
	if err != nil {
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("catalog: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.Path != "" {
				msg = fmt.Sprintf("%s\nPath: %s", msg, se.Path)
			}
			return usageError{msg: msg, cause: se}
		}
		return err
	}
	log.Debugf("loaded %d classes and %d models from %s", len(cat.Classes), len(cat.Models), cfg.Input)

	// 2) Translate every class that survives the filters
	opts := []docgen.BuildOption{
		docgen.WithIncludeClasses(cfg.IncludeClasses),
		docgen.WithExcludeClasses(cfg.ExcludeClasses),
		docgen.WithVerbs(cfg.Verbs),
		docgen.WithPathPatterns(cfg.PathPatterns),
		docgen.WithTitle(cfg.Title),
		docgen.WithAPIVersion(cfg.APIVersion),
		docgen.WithBasePath(cfg.BasePath),
		docgen.WithSanitizeHTML(cfg.Sanitize),
		docgen.WithLogger(log),
	}
	var bar *progressbar.ProgressBar
	if cfg.Progress {
		opts = append(opts, docgen.WithProgress(func(done, total int) {
			if bar == nil {
				bar = newProgressBar(total)
			}
			_ = bar.Set(done)
		}))
	}
	res, err := docgen.Build(ctx, cat, opts...)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		var te *swagger.TranslateError
		if errors.As(err, &te) {
			return usageErrorf("catalog: %w", te)
		}
		return fmt.Errorf("build documentation: %w", err)
	}
	if len(res.Declarations) == 0 {
		log.Warnf("no routes left to document; check the class, verb and path filters")
	}

	// 3) Derive the output directory when omitted
	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(res.Title)
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 4) Emit the chosen format
	var planned []emitter.PlannedFile
	switch cfg.Format {
	case FormatSwagger12:
		out, err := swaggeremitter.Emit(ctx, res, swaggeremitter.Options{
			OutDir:   outDir,
			Encoding: cfg.Encoding,
			Force:    cfg.Force,
			DryRun:   cfg.DryRun,
			Verbose:  cfg.Verbose,
		})
		if err != nil {
			return wrapOutputError(err, absOut)
		}
		planned = out.Planned
	case FormatSwagger2, FormatOpenAPI3:
		out, err := openapiemitter.Emit(ctx, res, openapiemitter.Options{
			OutDir:   outDir,
			Format:   cfg.Format,
			Encoding: cfg.Encoding,
			Force:    cfg.Force,
			DryRun:   cfg.DryRun,
			Logger:   log,
		})
		if err != nil {
			return wrapOutputError(err, absOut)
		}
		planned = out.Planned
	case FormatXLSX:
		out, err := xlsxemitter.Emit(ctx, res, xlsxemitter.Options{
			OutDir: outDir,
			Force:  cfg.Force,
			DryRun: cfg.DryRun,
		})
		if err != nil {
			return wrapOutputError(err, absOut)
		}
		planned = out.Planned
	default:
		return usageErrorf("generate: unsupported --format %q", cfg.Format)
	}

	if cfg.DryRun {
		paths := make([]string, 0, len(planned))
		for _, p := range planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(planned), paths)
		return nil
	}
	log.Infof("wrote %d files to %s", len(planned), absOut)
	return nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("[Documenting]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return usageErrorf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg)
	}
	return err
}

// deriveOutDir turns a title into a directory name: "Shop API" -> "shop-api-docs".
func deriveOutDir(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	parts := strings.Fields(repl.Replace(t))
	var b strings.Builder
	for _, r := range strings.Join(parts, "-") {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "api-docs"
	}
	return name + "-docs"
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// sanitizePatterns drops blank and repeated patterns. Patterns are kept
// verbatim otherwise.
func sanitizePatterns(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var result []string
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		if _, exists := seen[item]; exists {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return usageErrorf("read config file %q: %v", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return usageErrorf("parse config file %q: %v", path, err)
	}

	strs := map[string]*string{
		"input":      &cfg.Input,
		"format":     &cfg.Format,
		"out":        &cfg.Out,
		"encoding":   &cfg.Encoding,
		"title":      &cfg.Title,
		"apiversion": &cfg.APIVersion,
		"basepath":   &cfg.BasePath,
		"logfile":    &cfg.LogFile,
	}
	lists := map[string]*[]string{
		"includeclasses": &cfg.IncludeClasses,
		"excludeclasses": &cfg.ExcludeClasses,
		"verbs":          &cfg.Verbs,
	}
	bools := map[string]*bool{
		"sanitize": &cfg.Sanitize,
		"dryrun":   &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
		"progress": &cfg.Progress,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = str
			continue
		}
		if dst, ok := lists[normalized]; ok {
			list, err := valueAsStringSlice(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = sanitizeList(list)
			continue
		}
		if normalized == "paths" || normalized == "pathpatterns" {
			patterns, err := valueAsPatterns(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			cfg.PathPatterns = sanitizePatterns(patterns)
			continue
		}
		if dst, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = val
			continue
		}
		return usageErrorf("config file %q: unknown field %q", path, key)
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	case int, float64:
		// Unquoted versions like `apiVersion: 2` decode as numbers.
		return fmt.Sprint(val), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

// valueAsPatterns reads a single pattern or a list of patterns. Unlike the
// other list fields a string is never split on commas.
func valueAsPatterns(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", idx, elem)
			}
			items = append(items, str)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
