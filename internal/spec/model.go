package spec

// Descriptor model consumed by the translator core. Values are decoded from
// catalog files by the loader and treated as immutable afterwards.

import (
    "regexp"
    "strings"
)

// RouteKind classifies a route as bound to the class or to an instance.
type RouteKind string

const (
    // RouteKindUnset defers to the method-identifier heuristic.
    RouteKindUnset    RouteKind = ""
    RouteKindStatic   RouteKind = "static"
    RouteKindInstance RouteKind = "instance"
)

// Catalog is the full set of classes and models exposed by one service.
type Catalog struct {
    Title      string            `yaml:"title"`
    APIVersion string            `yaml:"apiVersion"`
    BasePath   string            `yaml:"basePath"`
    Classes    []ClassDescriptor `yaml:"classes" validate:"dive"`
    Models     []ModelDescriptor `yaml:"models" validate:"dive"`
}

// Model returns the model registered under name.
func (c *Catalog) Model(name string) (*ModelDescriptor, bool) {
    if c == nil {
        return nil, false
    }
    for i := range c.Models {
        if c.Models[i].Name == name {
            return &c.Models[i], true
        }
    }
    return nil, false
}

// Class returns the class registered under name.
func (c *Catalog) Class(name string) (*ClassDescriptor, bool) {
    if c == nil {
        return nil, false
    }
    for i := range c.Classes {
        if c.Classes[i].Name == name {
            return &c.Classes[i], true
        }
    }
    return nil, false
}

// ClassDescriptor owns a set of routes. Its name doubles as the model name
// documented for auto-generated CRUD routes.
type ClassDescriptor struct {
    Name        string            `yaml:"name" validate:"required"`
    Description string            `yaml:"description"`
    SharedCtor  *SharedCtor       `yaml:"sharedCtor"`
    Routes      []RouteDescriptor `yaml:"routes" validate:"dive"`
}

// SharedCtor lists parameters injected into every instance-level route.
type SharedCtor struct {
    Accepts []ParameterSpec `yaml:"accepts" validate:"dive"`
}

type RouteDescriptor struct {
    Path        string          `yaml:"path" validate:"required"`
    Verb        string          `yaml:"verb" validate:"required"`
    Method      string          `yaml:"method" validate:"required"`
    Kind        RouteKind       `yaml:"kind" validate:"omitempty,oneof=static instance"`
    Accepts     []ParameterSpec `yaml:"accepts" validate:"dive"`
    Returns     []ParameterSpec `yaml:"returns" validate:"dive"`
    Description Text            `yaml:"description"`
}

// Text is free text given either as a string or as a list of lines.
type Text string

// IsInstance reports whether constructor parameters apply to the route.
// An explicit Kind wins; otherwise a method identifier with more than two
// dot-separated segments (Widget.prototype.save) marks an instance route.
func (r RouteDescriptor) IsInstance() bool {
    switch r.Kind {
    case RouteKindInstance:
        return true
    case RouteKindStatic:
        return false
    }
    return len(strings.Split(r.Method, ".")) > 2
}

// Subject returns the first segment of the method identifier, which names
// the model a generated route operates on.
func (r RouteDescriptor) Subject() string {
    subject, _, _ := strings.Cut(r.Method, ".")
    return subject
}

// ParameterSpec describes one accepted argument or returned value. Attributes
// outside the typed fields (doc, default, min, max, ...) are kept verbatim in
// Fields using the descriptor vocabulary.
type ParameterSpec struct {
    Name     string       `yaml:"name" validate:"required_without=Arg"`
    Arg      string       `yaml:"arg"`
    Type     TypeRef      `yaml:"type"`
    Required bool         `yaml:"required"`
    HTTP     *HTTPBinding `yaml:"http"`
    Fields   Fields       `yaml:",inline"`
}

// Ident returns the parameter name, falling back to the arg identifier.
func (p ParameterSpec) Ident() string {
    if p.Name != "" {
        return p.Name
    }
    return p.Arg
}

// Clone returns a deep copy.
func (p ParameterSpec) Clone() ParameterSpec {
    out := p
    out.Type = p.Type.Clone()
    out.Fields = p.Fields.Clone()
    if p.HTTP != nil {
        h := *p.HTTP
        out.HTTP = &h
    }
    return out
}

// HTTPBinding tells where an argument comes from. Derived bindings are
// computed server side and never documented.
type HTTPBinding struct {
    Source  string `yaml:"source"`
    Derived bool   `yaml:"derived"`
}

// Fields is the loosely typed attribute bag carried by parameters and
// properties.
type Fields map[string]any

// Clone deep-copies nested maps and slices.
func (f Fields) Clone() Fields {
    if f == nil {
        return nil
    }
    out := make(Fields, len(f))
    for k, v := range f {
        out[k] = cloneValue(v)
    }
    return out
}

func cloneValue(v any) any {
    switch val := v.(type) {
    case map[string]any:
        out := make(map[string]any, len(val))
        for k, e := range val {
            out[k] = cloneValue(e)
        }
        return out
    case Fields:
        return val.Clone()
    case []any:
        out := make([]any, len(val))
        for i, e := range val {
            out[i] = cloneValue(e)
        }
        return out
    case *regexp.Regexp:
        // compiled expressions are immutable
        return val
    default:
        return v
    }
}

// ModelDescriptor describes one named entity.
type ModelDescriptor struct {
    Name        string              `yaml:"name" validate:"required"`
    Description string              `yaml:"description"`
    Properties  Properties          `yaml:"properties"`
    Settings    ModelSettings       `yaml:"settings"`
    Validations map[string][]Rule   `yaml:"validations"`
    Relations   map[string]Relation `yaml:"relations"`
}

// IsHidden reports whether the named property is excluded from documentation.
func (m *ModelDescriptor) IsHidden(p Property) bool {
    if p.Hidden {
        return true
    }
    for _, h := range m.Settings.Hidden {
        if h == p.Name {
            return true
        }
    }
    return false
}

type ModelSettings struct {
    Hidden []string `yaml:"hidden"`
}

// Property is one model property. Order follows the descriptor.
type Property struct {
    Name      string  `yaml:"-"`
    Type      TypeRef `yaml:"type"`
    Required  bool    `yaml:"required"`
    ID        bool    `yaml:"id"`
    Generated bool    `yaml:"generated"`
    Hidden    bool    `yaml:"hidden"`
    Fields    Fields  `yaml:",inline"`
}

type Properties []Property

// Rule is one validation rule object, e.g. {with: !regex "^[a-z]+$"}.
type Rule map[string]any

// Relation links a model to a target and, for many-to-many, a join model.
type Relation struct {
    Type    string `yaml:"type"`
    Model   string `yaml:"model"`
    Through string `yaml:"through"`
}
