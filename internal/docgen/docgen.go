// Package docgen builds Swagger 1.2 documentation for a whole descriptor
// catalog: one API declaration per class plus the resource listing that
// indexes them.
package docgen

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/routedoc/internal/spec"
	"github.com/mark3labs/routedoc/internal/swagger"
)

const (
	SwaggerVersion    = "1.2"
	DefaultAPIVersion = "1.0.0"
	DefaultBasePath   = "/"
	MediaTypeJSON     = "application/json"
)

// Listing is the resource listing document.
type Listing struct {
	APIVersion     string         `json:"apiVersion"`
	SwaggerVersion string         `json:"swaggerVersion"`
	APIs           []ListingEntry `json:"apis"`
	Info           *Info          `json:"info,omitempty"`
}

type ListingEntry struct {
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

type Info struct {
	Title string `json:"title"`
}

// APIDeclaration documents the routes of one class.
type APIDeclaration struct {
	Class          string              `json:"-"`
	APIVersion     string              `json:"apiVersion"`
	SwaggerVersion string              `json:"swaggerVersion"`
	BasePath       string              `json:"basePath"`
	ResourcePath   string              `json:"resourcePath"`
	APIs           []swagger.PathEntry `json:"apis"`
	Models         swagger.Definitions `json:"models"`
	Consumes       []string            `json:"consumes"`
	Produces       []string            `json:"produces"`
}

// Operations counts the operations in the declaration.
func (d *APIDeclaration) Operations() int {
	doc := swagger.Declaration{APIs: d.APIs}
	return doc.Operations()
}

// Result is the documentation for a catalog.
type Result struct {
	Title        string
	APIVersion   string
	BasePath     string
	Listing      Listing
	Declarations []APIDeclaration
	// Definitions is the union of every declaration's models.
	Definitions swagger.Definitions
}

// Declaration returns the declaration built for class.
func (r *Result) Declaration(class string) (*APIDeclaration, bool) {
	for i := range r.Declarations {
		if r.Declarations[i].Class == class {
			return &r.Declarations[i], true
		}
	}
	return nil, false
}

// Build translates every class of cat that survives the filters. Classes are
// processed in catalog order and routes in declaration order. A translation
// error aborts the build; no partial result is returned.
func Build(ctx context.Context, cat *spec.Catalog, opts ...BuildOption) (*Result, error) {
	if cat == nil {
		return nil, fmt.Errorf("docgen: nil catalog")
	}
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	res := &Result{
		Title:       firstNonEmpty(cfg.title, cat.Title),
		APIVersion:  firstNonEmpty(cfg.apiVersion, cat.APIVersion, DefaultAPIVersion),
		BasePath:    firstNonEmpty(cfg.basePath, cat.BasePath, DefaultBasePath),
		Definitions: swagger.Definitions{},
	}
	res.Listing = Listing{
		APIVersion:     res.APIVersion,
		SwaggerVersion: SwaggerVersion,
		APIs:           []ListingEntry{},
	}
	if res.Title != "" {
		res.Listing.Info = &Info{Title: res.Title}
	}

	trOpts := []swagger.Option{swagger.WithModelResolver(cat)}
	if cfg.keys != nil {
		trOpts = append(trOpts, swagger.WithKeyTranslator(cfg.keys))
	}
	tr := swagger.New(trOpts...)
	title := cases.Title(language.English, cases.NoLower)

	total := len(cat.Classes)
	for i := range cat.Classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		class := &cat.Classes[i]
		if !cfg.keepClass(class.Name) {
			cfg.log.Debugf("docgen: class %s excluded", class.Name)
			cfg.report(i+1, total)
			continue
		}

		decl, err := buildDeclaration(tr, cat, class, cfg, res)
		if err != nil {
			return nil, err
		}
		cfg.report(i+1, total)
		if decl == nil {
			cfg.log.Debugf("docgen: class %s has no documented routes", class.Name)
			continue
		}

		desc := class.Description
		if desc == "" {
			desc = title.String(strings.NewReplacer("-", " ", "_", " ").Replace(class.Name))
		}
		res.Listing.APIs = append(res.Listing.APIs, ListingEntry{Path: decl.ResourcePath, Description: desc})
		res.Declarations = append(res.Declarations, *decl)
		for name, def := range decl.Models {
			if _, ok := res.Definitions[name]; !ok {
				res.Definitions[name] = def
			}
		}
		cfg.log.Infof("documented %s: %d operations, %d models", class.Name, decl.Operations(), len(decl.Models))
	}

	if cfg.sanitize {
		sanitizeResult(res)
	}
	return res, nil
}

// buildDeclaration returns nil when every route of class is filtered out.
func buildDeclaration(tr *swagger.Translator, cat *spec.Catalog, class *spec.ClassDescriptor, cfg *buildConfig, res *Result) (*APIDeclaration, error) {
	var doc swagger.Declaration
	for _, route := range class.Routes {
		if !cfg.keepRoute(swagger.ConvertVerb(route.Verb), swagger.ConvertPath(route.Path)) {
			continue
		}
		if err := tr.AddRoute(&doc, route, class); err != nil {
			return nil, err
		}
	}
	if len(doc.APIs) == 0 {
		return nil, nil
	}

	defs := tr.NewDefinitionsBuilder()
	refs := doc.ModelRefs()
	if _, ok := cat.Model(class.Name); ok {
		refs = append([]string{class.Name}, refs...)
	}
	for _, name := range refs {
		if defs.Has(name) {
			continue
		}
		m, ok := cat.Model(name)
		if !ok {
			cfg.log.Warnf("docgen: %s references unknown model %q; no definition emitted", class.Name, name)
			continue
		}
		if err := defs.Add(m); err != nil {
			return nil, err
		}
	}

	return &APIDeclaration{
		Class:          class.Name,
		APIVersion:     res.APIVersion,
		SwaggerVersion: SwaggerVersion,
		BasePath:       res.BasePath,
		ResourcePath:   "/" + class.Name,
		APIs:           doc.APIs,
		Models:         defs.Definitions(),
		Consumes:       []string{MediaTypeJSON},
		Produces:       []string{MediaTypeJSON},
	}, nil
}

func (c *buildConfig) report(done, total int) {
	if c.progress != nil {
		c.progress(done, total)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
