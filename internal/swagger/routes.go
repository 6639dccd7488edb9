package swagger

import (
	"fmt"
	"strings"

	"github.com/mark3labs/routedoc/internal/spec"
)

// ConvertVerb maps a route verb to the documented HTTP method.
func ConvertVerb(verb string) string {
	switch strings.ToLower(verb) {
	case "all":
		return "POST"
	case "del":
		return "DELETE"
	}
	return strings.ToUpper(verb)
}

// ConvertPath rewrites positional segments (":id") as placeholders ("{id}").
func ConvertPath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// pathParams returns the names of the positional segments of path.
func pathParams(path string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			out[seg[1:]] = struct{}{}
		}
	}
	return out
}

// Return is the single value an operation documents as its result.
type Return struct {
	Arg    string
	Model  string
	Type   spec.TypeRef
	Fields spec.Fields
}

// placeholderReturn stands in for routes with several return values.
var placeholderReturn = Return{Model: TypeObject}

// TranslateRoute documents route as a path entry with a single operation.
// class is the owning class and may be nil.
func (t *Translator) TranslateRoute(route spec.RouteDescriptor, class *spec.ClassDescriptor) (PathEntry, error) {
	params, err := t.DeriveParameters(route, class)
	if err != nil {
		return PathEntry{}, err
	}
	ret, err := t.DeriveReturn(route, class)
	if err != nil {
		return PathEntry{}, err
	}
	result, err := ResultSchema(ret)
	if err != nil {
		return PathEntry{}, routeError(route.Method, "returns", err)
	}

	op := Operation{
		Method: ConvertVerb(route.Verb),
		// Dots are not valid in nicknames.
		Nickname:         strings.ReplaceAll(route.Method, ".", "_"),
		Type:             result.Type,
		Format:           result.Format,
		Items:            result.Items,
		Parameters:       params,
		ResponseMessages: []ResponseMessage{},
		Summary:          string(route.Description),
		Notes:            "",
	}
	return PathEntry{Path: ConvertPath(route.Path), Operations: []Operation{op}}, nil
}

// DeriveParameters documents the user-supplied arguments of route.
//
// Instance routes also receive the class constructor's parameters.
// Derived arguments and arguments bound to the raw request are dropped.
// The location defaults to query for GET and form otherwise, becomes path
// when the name matches a positional segment, and is finally overridden by
// an explicit binding source.
func (t *Translator) DeriveParameters(route spec.RouteDescriptor, class *spec.ClassDescriptor) ([]Parameter, error) {
	accepts := cloneSpecs(route.Accepts)
	if class != nil && class.SharedCtor != nil && len(class.SharedCtor.Accepts) > 0 && route.IsInstance() {
		accepts = append(accepts, cloneSpecs(class.SharedCtor.Accepts)...)
	}

	location := LocationForm
	if strings.EqualFold(route.Verb, "get") {
		location = LocationQuery
	}
	placeholders := pathParams(route.Path)

	out := make([]Parameter, 0, len(accepts))
	for _, a := range accepts {
		if a.HTTP != nil && (a.HTTP.Derived || a.HTTP.Source == "req") {
			continue
		}
		fields := t.translate(a.Fields)
		name := a.Ident()

		loc := location
		if _, ok := placeholders[name]; ok {
			loc = LocationPath
		}
		if a.HTTP != nil && a.HTTP.Source != "" {
			loc = a.HTTP.Source
		}

		mapped, err := MapType(a.Type)
		if err != nil {
			return nil, routeError(route.Method, "parameter "+name, err)
		}
		p := Parameter{
			Location:      loc,
			Name:          name,
			Description:   describe(fields["description"]),
			Type:          mapped.Type,
			Format:        mapped.Format,
			Items:         mapped.Items,
			Required:      a.Required,
			DefaultValue:  fields["defaultValue"],
			Minimum:       fields["minimum"],
			Maximum:       fields["maximum"],
			AllowMultiple: false,
		}
		// Generated CRUD routes take the whole model as their payload.
		if name == "data" && p.Type == TypeObject {
			p.Type = route.Subject()
			p.Format = ""
		}
		out = append(out, p)
	}
	return out, nil
}

// DeriveReturn collapses the declared return values of route into one.
//
// A first return named "data" typed as a bare object or array is narrowed
// to the owning class (or a one-element array of it). No return values
// yield the zero Return; more than one yield a placeholder object model.
func (t *Translator) DeriveReturn(route spec.RouteDescriptor, class *spec.ClassDescriptor) (Return, error) {
	returns := cloneSpecs(route.Returns)
	if len(returns) > 0 && returns[0].Ident() == "data" && class != nil {
		switch {
		case returns[0].Type.IsBareObject():
			returns[0].Type = spec.Named(class.Name)
		case returns[0].Type.IsBareArray():
			returns[0].Type = spec.ArrayOf(spec.Named(class.Name))
		}
	}

	switch len(returns) {
	case 0:
		return Return{}, nil
	case 1:
		r := returns[0]
		fields := t.translate(r.Fields)
		ret := Return{Arg: r.Ident(), Type: r.Type, Fields: fields}
		if m, ok := fields["model"].(string); ok {
			ret.Model = m
		}
		return ret, nil
	default:
		return placeholderReturn, nil
	}
}

// ResultSchema is the operation result for ret: its model name when set,
// else its mapped type, else void.
func ResultSchema(ret Return) (Schema, error) {
	if ret.Model != "" {
		return Schema{Type: ret.Model}, nil
	}
	s, err := MapType(ret.Type)
	if err != nil {
		return Schema{}, err
	}
	if s.Type == "" {
		return Schema{Type: TypeVoid}, nil
	}
	s.Extra = nil
	return s, nil
}

func cloneSpecs(in []spec.ParameterSpec) []spec.ParameterSpec {
	out := make([]spec.ParameterSpec, 0, len(in))
	for _, p := range in {
		out = append(out, p.Clone())
	}
	return out
}

// describe flattens a description given as a string or a list of lines.
func describe(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case []any:
		lines := make([]string, 0, len(d))
		for _, l := range d {
			lines = append(lines, fmt.Sprint(l))
		}
		return strings.Join(lines, "\n")
	case []string:
		return strings.Join(d, "\n")
	default:
		return fmt.Sprint(d)
	}
}
