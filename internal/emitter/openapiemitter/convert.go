package openapiemitter

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/routedoc/internal/docgen"
	"github.com/mark3labs/routedoc/internal/logger"
	"github.com/mark3labs/routedoc/internal/swagger"
)

const (
	// DefaultTitle fills info.title when the catalog has none; both
	// Swagger 2.0 and OpenAPI 3 require one.
	DefaultTitle = "API"
	// ResponseDescription documents the single success response of every
	// operation.
	ResponseDescription = "Request was successful"

	definitionsPrefix = "#/definitions/"
)

var supportedMethods = map[string]struct{}{
	http.MethodDelete: {}, http.MethodGet: {}, http.MethodHead: {}, http.MethodOptions: {},
	http.MethodPatch: {}, http.MethodPost: {}, http.MethodPut: {},
}

// Swagger 1.2 paramType to Swagger 2.0 "in".
var locations = map[string]string{
	swagger.LocationPath:  "path",
	swagger.LocationQuery: "query",
	swagger.LocationBody:  "body",
	swagger.LocationForm:  "formData",
	"formData":            "formData",
	"header":              "header",
}

type converter struct {
	defs swagger.Definitions
	log  *logger.Logger
	ids  map[string]int
}

// ToSwagger2 converts the documentation in res into a single Swagger 2.0
// document. Every class becomes a tag. Operations Swagger 2.0 cannot hold
// (unknown methods, a second operation for the same method and path) are
// skipped with a warning.
func ToSwagger2(res *docgen.Result, log *logger.Logger) (*openapi2.T, error) {
	if res == nil {
		return nil, fmt.Errorf("openapiemitter: nil result")
	}
	c := &converter{defs: res.Definitions, log: log, ids: map[string]int{}}

	title := strings.TrimSpace(res.Title)
	if title == "" {
		title = DefaultTitle
	}
	doc := &openapi2.T{
		Swagger:     "2.0",
		Info:        openapi3.Info{Title: title, Version: res.APIVersion},
		BasePath:    res.BasePath,
		Consumes:    []string{docgen.MediaTypeJSON},
		Produces:    []string{docgen.MediaTypeJSON},
		Paths:       map[string]*openapi2.PathItem{},
		Definitions: map[string]*openapi3.SchemaRef{},
	}

	descriptions := make(map[string]string, len(res.Listing.APIs))
	for _, e := range res.Listing.APIs {
		descriptions[e.Path] = e.Description
	}
	for i := range res.Declarations {
		decl := &res.Declarations[i]
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: decl.Class, Description: descriptions[decl.ResourcePath]})
		for _, api := range decl.APIs {
			for _, op := range api.Operations {
				c.addOperation(doc, decl.Class, api.Path, op)
			}
		}
	}
	for _, name := range res.Definitions.Names() {
		doc.Definitions[name] = c.definition(res.Definitions[name])
	}
	return doc, nil
}

func (c *converter) addOperation(doc *openapi2.T, tag, path string, op swagger.Operation) {
	method := strings.ToUpper(op.Method)
	if _, ok := supportedMethods[method]; !ok {
		c.log.Warnf("openapi: skipping %s %s (%s): method not supported", op.Method, path, op.Nickname)
		return
	}
	item := doc.Paths[path]
	if item == nil {
		item = &openapi2.PathItem{}
		doc.Paths[path] = item
	}
	if prev := item.GetOperation(method); prev != nil {
		c.log.Warnf("openapi: skipping %s %s (%s): already documented by %s", method, path, op.Nickname, prev.OperationID)
		return
	}

	out := &openapi2.Operation{
		OperationID: c.operationID(op.Nickname),
		Summary:     op.Summary,
		Description: op.Notes,
		Tags:        []string{tag},
		Responses:   map[string]*openapi2.Response{"200": c.response(op)},
	}
	for _, p := range op.Parameters {
		in, ok := locations[p.Location]
		if !ok {
			c.log.Warnf("openapi: %s: parameter %q has unsupported location %q; skipped", op.Nickname, p.Name, p.Location)
			continue
		}
		out.Parameters = append(out.Parameters, c.parameter(in, p))
	}
	fixOperation(path, out, c.log)
	item.SetOperation(method, out)
}

// operationID keeps nicknames unique across the document.
func (c *converter) operationID(nickname string) string {
	c.ids[nickname]++
	if n := c.ids[nickname]; n > 1 {
		id := nickname + "_" + strconv.Itoa(n)
		c.log.Warnf("openapi: duplicate operation id %q renamed to %q", nickname, id)
		return id
	}
	return nickname
}

func (c *converter) response(op swagger.Operation) *openapi2.Response {
	r := &openapi2.Response{Description: ResponseDescription}
	if op.Type != "" && op.Type != swagger.TypeVoid {
		r.Schema = c.schema(&swagger.Schema{Type: op.Type, Format: op.Format, Items: op.Items})
	}
	return r
}

func (c *converter) parameter(in string, p swagger.Parameter) *openapi2.Parameter {
	out := &openapi2.Parameter{
		In:          in,
		Name:        p.Name,
		Description: p.Description,
		Required:    p.Required || in == "path",
		Default:     p.DefaultValue,
		Minimum:     toFloat(p.Minimum),
		Maximum:     toFloat(p.Maximum),
	}
	if in == "body" {
		out.Schema = c.schema(&swagger.Schema{Type: p.Type, Format: p.Format, Items: p.Items})
		return out
	}
	out.Type, out.Format = simpleType(p.Type, p.Format, in == "formData")
	if out.Type == swagger.TypeArray {
		it, itf := swagger.TypeString, ""
		if p.Items != nil && p.Items.Type != swagger.TypeArray {
			it, itf = simpleType(p.Items.Type, p.Items.Format, false)
		}
		out.Items = openapi3.NewSchemaRef("", &openapi3.Schema{Type: it, Format: itf})
	}
	return out
}

// simpleType degrades a Swagger 1.2 type to one a non-body parameter can
// carry. Models, objects and untyped values travel as strings.
func simpleType(typ, format string, allowFile bool) (string, string) {
	switch typ {
	case swagger.TypeString, swagger.TypeInteger, swagger.TypeNumber, swagger.TypeBoolean:
		return typ, format
	case swagger.TypeArray:
		return typ, ""
	case swagger.TypeFile:
		if allowFile {
			return typ, ""
		}
		return swagger.TypeString, "binary"
	}
	return swagger.TypeString, ""
}

func (c *converter) schema(s *swagger.Schema) *openapi3.SchemaRef {
	var out *openapi3.Schema
	switch s.Type {
	case "", swagger.TypeAny, swagger.TypeVoid:
		out = &openapi3.Schema{}
	case swagger.TypeString, swagger.TypeInteger, swagger.TypeNumber, swagger.TypeBoolean:
		out = &openapi3.Schema{Type: s.Type, Format: s.Format}
	case swagger.TypeFile:
		out = &openapi3.Schema{Type: openapi3.TypeString, Format: "binary"}
	case swagger.TypeObject:
		out = openapi3.NewObjectSchema()
	case swagger.TypeArray:
		out = openapi3.NewArraySchema()
		if s.Items != nil {
			out.Items = c.schema(s.Items)
		} else {
			out.Items = openapi3.NewSchemaRef("", &openapi3.Schema{})
		}
	default:
		if _, ok := c.defs[s.Type]; ok {
			return openapi3.NewSchemaRef(definitionsPrefix+s.Type, nil)
		}
		out = openapi3.NewObjectSchema()
	}
	applyExtra(out, s.Extra)
	return openapi3.NewSchemaRef("", out)
}

func (c *converter) definition(d *swagger.Definition) *openapi3.SchemaRef {
	s := openapi3.NewObjectSchema()
	s.Description = d.Description
	for _, name := range d.PropertyNames() {
		s.Properties[name] = c.schema(d.Properties[name])
	}
	if len(d.Required) > 0 {
		s.Required = append([]string(nil), d.Required...)
	}
	return openapi3.NewSchemaRef("", s)
}

// applyExtra carries the property attributes OpenAPI has a field for.
func applyExtra(s *openapi3.Schema, extra map[string]any) {
	if d, ok := extra["description"].(string); ok {
		s.Description = d
	}
	if v, ok := extra["defaultValue"]; ok {
		s.Default = v
	}
	s.Min = toFloat(extra["minimum"])
	s.Max = toFloat(extra["maximum"])
	if enum, ok := extra["enum"].([]any); ok {
		s.Enum = append([]any(nil), enum...)
	}
}

func toFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}
