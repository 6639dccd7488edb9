package openapiemitter

import (
	"regexp"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/routedoc/internal/logger"
	"github.com/mark3labs/routedoc/internal/swagger"
)

const (
	mediaMultipart  = "multipart/form-data"
	mediaURLEncoded = "application/x-www-form-urlencoded"
)

var templateVar = regexp.MustCompile(`\{([^{}]+)\}`)

// fixOperation rewrites parameter lists that Swagger 1.2 allows but Swagger
// 2.0 (and the conversion to OpenAPI 3) rejects:
//   - duplicate parameters keep their first occurrence
//   - path parameters missing from the template move to the query
//   - template variables without a parameter get a required string one
//   - body parameters next to form fields become form fields
//   - several body parameters merge into one object body
func fixOperation(path string, op *openapi2.Operation, log *logger.Logger) {
	vars := map[string]bool{}
	var order []string
	for _, m := range templateVar.FindAllStringSubmatch(path, -1) {
		if _, ok := vars[m[1]]; !ok {
			order = append(order, m[1])
		}
		vars[m[1]] = false
	}

	seen := map[string]struct{}{}
	params := make(openapi2.Parameters, 0, len(op.Parameters))
	bodies, forms, files := 0, 0, false
	for _, p := range op.Parameters {
		if p.In == "path" {
			if _, ok := vars[p.Name]; !ok {
				log.Warnf("openapi: %s: path parameter %q is not in %s; moved to query", op.OperationID, p.Name, path)
				p.In = "query"
			}
		}
		key := p.In + ":" + p.Name
		if _, dup := seen[key]; dup {
			log.Warnf("openapi: %s: duplicate %s parameter %q dropped", op.OperationID, p.In, p.Name)
			continue
		}
		seen[key] = struct{}{}
		switch p.In {
		case "path":
			vars[p.Name] = true
		case "body":
			bodies++
		case "formData":
			forms++
			files = files || p.Type == swagger.TypeFile
		}
		params = append(params, p)
	}
	for _, name := range order {
		if !vars[name] {
			params = append(params, &openapi2.Parameter{In: "path", Name: name, Type: openapi3.TypeString, Required: true})
		}
	}

	switch {
	case bodies > 0 && forms > 0:
		for i, p := range params {
			if p.In == "body" {
				params[i] = formDataFromBody(p)
			}
		}
		op.Consumes = appendMissing(op.Consumes, mediaMultipart)
	case bodies > 1:
		params = mergeBodies(params)
	case forms > 0:
		if files {
			op.Consumes = appendMissing(op.Consumes, mediaMultipart)
		} else if len(op.Consumes) == 0 {
			op.Consumes = []string{mediaURLEncoded}
		}
	}
	op.Parameters = params
}

// mergeBodies folds every body parameter into a single object body named
// "body" that leads the list.
func mergeBodies(params openapi2.Parameters) openapi2.Parameters {
	body := openapi3.NewObjectSchema()
	rest := make(openapi2.Parameters, 0, len(params))
	for _, p := range params {
		if p.In != "body" {
			rest = append(rest, p)
			continue
		}
		schema := p.Schema
		if schema == nil {
			schema = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
		}
		body.Properties[p.Name] = schema
		if p.Required {
			body.Required = append(body.Required, p.Name)
		}
	}
	merged := &openapi2.Parameter{In: "body", Name: "body", Required: len(body.Required) > 0, Schema: openapi3.NewSchemaRef("", body)}
	return append(openapi2.Parameters{merged}, rest...)
}

// formDataFromBody derives a form field from a body parameter. References
// and objects cannot be form encoded and degrade to strings.
func formDataFromBody(p *openapi2.Parameter) *openapi2.Parameter {
	out := &openapi2.Parameter{
		In:          "formData",
		Name:        p.Name,
		Description: p.Description,
		Required:    p.Required,
		Type:        openapi3.TypeString,
	}
	if p.Schema == nil || p.Schema.Ref != "" || p.Schema.Value == nil {
		return out
	}
	s := p.Schema.Value
	switch s.Type {
	case openapi3.TypeString, openapi3.TypeInteger, openapi3.TypeNumber, openapi3.TypeBoolean:
		out.Type, out.Format = s.Type, s.Format
	case openapi3.TypeArray:
		out.Type = openapi3.TypeArray
		it, itf := openapi3.TypeString, ""
		if s.Items != nil && s.Items.Value != nil {
			it, itf = simpleType(s.Items.Value.Type, s.Items.Value.Format, false)
			if it == openapi3.TypeArray {
				it, itf = openapi3.TypeString, ""
			}
		}
		out.Items = openapi3.NewSchemaRef("", &openapi3.Schema{Type: it, Format: itf})
	}
	return out
}

func appendMissing(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
