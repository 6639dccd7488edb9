// Package openapiemitter exports the generated documentation as a single
// Swagger 2.0 or OpenAPI 3 document, for tooling that no longer reads
// Swagger 1.2.
package openapiemitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/routedoc/internal/docgen"
	"github.com/mark3labs/routedoc/internal/emitter"
	"github.com/mark3labs/routedoc/internal/logger"
)

// Output formats.
const (
	FormatSwagger2 = "swagger2"
	FormatOpenAPI3 = "openapi3"
)

// Options controls how the OpenAPI emitter renders a document.
type Options struct {
	OutDir   string // required; target directory
	Format   string // swagger2 (default) or openapi3
	Encoding string // json (default) or yaml
	Force    bool   // overwrite a non-empty directory
	DryRun   bool   // don't write, only plan
	Logger   *logger.Logger
}

// Result returns the planned file and the number of documented operations.
type Result struct {
	Format     string
	Encoding   string
	Operations int
	Planned    []emitter.PlannedFile
}

// NormalizeFormat maps aliases onto the supported formats.
func NormalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatSwagger2, "swagger", "v2", "2.0":
		return FormatSwagger2, nil
	case FormatOpenAPI3, "openapi", "v3", "3":
		return FormatOpenAPI3, nil
	default:
		return "", fmt.Errorf("unsupported openapi format %q (allowed: swagger2, openapi3)", format)
	}
}

// Emit converts res and writes it as swagger.<ext> or openapi.<ext>. An
// OpenAPI 3 document is validated before anything is written.
func Emit(ctx context.Context, res *docgen.Result, opts Options) (*Result, error) {
	if res == nil {
		return nil, fmt.Errorf("openapiemitter: nil result")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("openapiemitter: OutDir is required")
	}
	format, err := NormalizeFormat(opts.Format)
	if err != nil {
		return nil, fmt.Errorf("openapiemitter: %w", err)
	}
	enc, err := emitter.NormalizeEncoding(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("openapiemitter: %w", err)
	}

	doc2, err := ToSwagger2(res, opts.Logger)
	if err != nil {
		return nil, err
	}
	ops := 0
	for _, item := range doc2.Paths {
		ops += len(item.Operations())
	}

	var doc any = doc2
	name := "swagger"
	if format == FormatOpenAPI3 {
		doc3, err := ToOpenAPI3(ctx, doc2)
		if err != nil {
			return nil, err
		}
		doc, name = doc3, "openapi"
	}

	data, err := emitter.Marshal(doc, enc)
	if err != nil {
		return nil, fmt.Errorf("marshal %s document: %w", format, err)
	}
	files := map[string][]byte{name + emitter.Ext(enc): data}
	planned := emitter.Plan(files)
	if !opts.DryRun {
		if err := emitter.WriteFiles("openapiemitter", opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Format: format, Encoding: enc, Operations: ops, Planned: planned}, nil
}

// ToOpenAPI3 converts a Swagger 2.0 document and validates the result. The
// base path becomes the only server since the document carries no host.
// The conversion shares schemas with doc2, which must not be reused.
func ToOpenAPI3(ctx context.Context, doc2 *openapi2.T) (*openapi3.T, error) {
	doc3, err := openapi2conv.ToV3(doc2)
	if err != nil {
		return nil, fmt.Errorf("convert to openapi3: %w", err)
	}
	if doc3.Paths == nil {
		doc3.Paths = openapi3.Paths{}
	}
	if doc2.BasePath != "" {
		doc3.AddServer(&openapi3.Server{URL: doc2.BasePath})
	}
	// Defaults are copied from descriptors verbatim and are not checked
	// against their schema.
	if err := doc3.Validate(ctx, openapi3.DisableSchemaDefaultsValidation()); err != nil {
		return nil, fmt.Errorf("validate openapi3: %w", err)
	}
	return doc3, nil
}
