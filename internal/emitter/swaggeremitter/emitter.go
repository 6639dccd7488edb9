// Package swaggeremitter writes Swagger 1.2 documentation: the resource
// listing plus one API declaration file per resource.
package swaggeremitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/routedoc/internal/docgen"
	"github.com/mark3labs/routedoc/internal/emitter"
)

// ListingFile is the base name of the resource listing.
const ListingFile = "resources"

// Options controls how the Swagger 1.2 emitter writes documents.
type Options struct {
	OutDir   string // required; target directory
	Encoding string // json (default) or yaml
	Force    bool   // overwrite a non-empty directory
	DryRun   bool   // don't write, only plan
	Verbose  bool
}

// Result returns the planned files.
type Result struct {
	Encoding  string
	Resources int
	Planned   []emitter.PlannedFile
}

// Emit renders res as a resource listing and one declaration per resource.
// Declaration files are named after the resource path, so a listing entry
// "/Widget" is served by "Widget.json".
func Emit(ctx context.Context, res *docgen.Result, opts Options) (*Result, error) {
	if res == nil {
		return nil, fmt.Errorf("swaggeremitter: nil result")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("swaggeremitter: OutDir is required")
	}
	enc, err := emitter.NormalizeEncoding(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("swaggeremitter: %w", err)
	}
	ext := emitter.Ext(enc)

	files := map[string][]byte{}
	listing, err := emitter.Marshal(res.Listing, enc)
	if err != nil {
		return nil, fmt.Errorf("marshal resource listing: %w", err)
	}
	files[ListingFile+ext] = listing

	for i := range res.Declarations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decl := &res.Declarations[i]
		name := strings.TrimPrefix(decl.ResourcePath, "/")
		if name == "" || name == ListingFile {
			return nil, fmt.Errorf("swaggeremitter: resource path %q cannot be written next to the listing", decl.ResourcePath)
		}
		data, err := emitter.Marshal(decl, enc)
		if err != nil {
			return nil, fmt.Errorf("marshal declaration %s: %w", decl.ResourcePath, err)
		}
		files[name+ext] = data
	}

	planned := emitter.Plan(files)
	if !opts.DryRun {
		if err := emitter.WriteFiles("swaggeremitter", opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Encoding: enc, Resources: len(res.Declarations), Planned: planned}, nil
}
