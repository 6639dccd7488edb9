package spec

import (
    "fmt"
    "regexp"
    "strings"

    "gopkg.in/yaml.v3"
)

// TypeKind discriminates the shapes a TypeRef can take.
type TypeKind int

const (
    // TypeNone means no type was declared.
    TypeNone TypeKind = iota
    // TypeNamed is a primitive or model name such as "string" or "Widget".
    TypeNamed
    // TypeArray is an array marker; Elem is nil for untyped arrays.
    TypeArray
    // TypeInline is an inline definition object carrying its own type.
    TypeInline
    // TypeCtor is a constructor reference, optionally registered as a model.
    TypeCtor
)

// TypeRef is the raw type of a parameter, return value, or property.
type TypeRef struct {
    Kind      TypeKind
    Name      string   // TypeNamed name, or TypeCtor simple name
    ModelName string   // TypeCtor registered model name
    Elem      *TypeRef // TypeArray element
    Of        *TypeRef // TypeInline declared type
    Attrs     Fields   // TypeInline attributes other than type
}

func Named(name string) TypeRef { return TypeRef{Kind: TypeNamed, Name: name} }

func ArrayOf(elem TypeRef) TypeRef { return TypeRef{Kind: TypeArray, Elem: &elem} }

func UntypedArray() TypeRef { return TypeRef{Kind: TypeArray} }

func Ctor(name, modelName string) TypeRef {
    return TypeRef{Kind: TypeCtor, Name: name, ModelName: modelName}
}

func Inline(of TypeRef, attrs Fields) TypeRef {
    return TypeRef{Kind: TypeInline, Of: &of, Attrs: attrs}
}

// IsZero reports whether no type was declared.
func (t TypeRef) IsZero() bool { return t.Kind == TypeNone }

// IsBareObject reports whether t is the literal "object" type.
func (t TypeRef) IsBareObject() bool { return t.Kind == TypeNamed && t.Name == "object" }

// IsBareArray reports whether t is the literal "array" type or an untyped
// array marker.
func (t TypeRef) IsBareArray() bool {
    return (t.Kind == TypeNamed && t.Name == "array") || (t.Kind == TypeArray && t.Elem == nil)
}

// Clone returns a deep copy.
func (t TypeRef) Clone() TypeRef {
    out := t
    if t.Elem != nil {
        e := t.Elem.Clone()
        out.Elem = &e
    }
    if t.Of != nil {
        o := t.Of.Clone()
        out.Of = &o
    }
    out.Attrs = t.Attrs.Clone()
    return out
}

func (t TypeRef) String() string {
    switch t.Kind {
    case TypeNone:
        return "<none>"
    case TypeNamed:
        return t.Name
    case TypeArray:
        if t.Elem == nil {
            return "[]"
        }
        return "[" + t.Elem.String() + "]"
    case TypeInline:
        if t.Of == nil {
            return "{}"
        }
        return "{type: " + t.Of.String() + "}"
    case TypeCtor:
        if t.ModelName != "" {
            return "ctor(" + t.Name + " as " + t.ModelName + ")"
        }
        return "ctor(" + t.Name + ")"
    default:
        return fmt.Sprintf("<kind %d>", int(t.Kind))
    }
}

// UnmarshalYAML accepts:
//
//  string | Widget          named type
//  [] | [elem]              array marker
//  {type: elem, ...attrs}   inline definition
//  {ctor: Date, modelName}  constructor reference
func (t *TypeRef) UnmarshalYAML(node *yaml.Node) error {
    if node.Kind == yaml.AliasNode && node.Alias != nil {
        return t.UnmarshalYAML(node.Alias)
    }
    switch node.Kind {
    case yaml.ScalarNode:
        name := strings.TrimSpace(node.Value)
        if name == "" || node.Tag == "!!null" {
            *t = TypeRef{}
            return nil
        }
        *t = Named(name)
        return nil
    case yaml.SequenceNode:
        switch len(node.Content) {
        case 0:
            *t = UntypedArray()
            return nil
        case 1:
            var elem TypeRef
            if err := elem.UnmarshalYAML(node.Content[0]); err != nil {
                return err
            }
            *t = ArrayOf(elem)
            return nil
        default:
            return fmt.Errorf("line %d: array type takes at most one element type, got %d", node.Line, len(node.Content))
        }
    case yaml.MappingNode:
        var raw map[string]yaml.Node
        if err := node.Decode(&raw); err != nil {
            return err
        }
        if ctor, ok := raw["ctor"]; ok {
            var model string
            if m, ok := raw["modelName"]; ok {
                model = strings.TrimSpace(m.Value)
            }
            *t = Ctor(strings.TrimSpace(ctor.Value), model)
            return nil
        }
        typeNode, ok := raw["type"]
        if !ok {
            return fmt.Errorf("line %d: inline type definition needs a type or ctor key", node.Line)
        }
        var of TypeRef
        if err := of.UnmarshalYAML(&typeNode); err != nil {
            return err
        }
        attrs := Fields{}
        for i := 0; i+1 < len(node.Content); i += 2 {
            key := node.Content[i].Value
            if key == "type" {
                continue
            }
            v, err := decodeValue(node.Content[i+1])
            if err != nil {
                return err
            }
            attrs[key] = v
        }
        if len(attrs) == 0 {
            attrs = nil
        }
        *t = Inline(of, attrs)
        return nil
    }
    return fmt.Errorf("line %d: unsupported type node", node.Line)
}

// UnmarshalYAML accepts a bare source string or a mapping.
func (h *HTTPBinding) UnmarshalYAML(node *yaml.Node) error {
    if node.Kind == yaml.ScalarNode {
        *h = HTTPBinding{Source: strings.TrimSpace(node.Value)}
        return nil
    }
    type plain HTTPBinding
    var p plain
    if err := node.Decode(&p); err != nil {
        return err
    }
    *h = HTTPBinding(p)
    return nil
}

// UnmarshalYAML joins a list of lines with newlines.
func (x *Text) UnmarshalYAML(node *yaml.Node) error {
    switch node.Kind {
    case yaml.AliasNode:
        return x.UnmarshalYAML(node.Alias)
    case yaml.ScalarNode:
        if node.Tag == "!!null" {
            *x = ""
            return nil
        }
        *x = Text(node.Value)
        return nil
    case yaml.SequenceNode:
        lines := make([]string, 0, len(node.Content))
        for _, n := range node.Content {
            if n.Kind != yaml.ScalarNode {
                return fmt.Errorf("line %d: description lines must be strings", n.Line)
            }
            lines = append(lines, n.Value)
        }
        *x = Text(strings.Join(lines, "\n"))
        return nil
    }
    return fmt.Errorf("line %d: description must be a string or a list of lines", node.Line)
}

// UnmarshalYAML keeps the declaration order of the property mapping. A
// property may be given as its full definition or as a bare type.
func (ps *Properties) UnmarshalYAML(node *yaml.Node) error {
    if node.Kind != yaml.MappingNode {
        return fmt.Errorf("line %d: properties must be a mapping", node.Line)
    }
    out := make(Properties, 0, len(node.Content)/2)
    for i := 0; i+1 < len(node.Content); i += 2 {
        name := node.Content[i].Value
        val := node.Content[i+1]
        var p Property
        if val.Kind == yaml.MappingNode && !hasKey(val, "type") && !hasKey(val, "ctor") {
            return fmt.Errorf("line %d: property %q has no type", val.Line, name)
        }
        switch {
        case val.Kind == yaml.MappingNode && hasKey(val, "type"):
            if err := val.Decode(&p); err != nil {
                return fmt.Errorf("property %q: %w", name, err)
            }
        case val.Kind == yaml.MappingNode:
            // {ctor: Number, id: true}: the flags sit next to the constructor.
            if err := val.Decode(&p); err != nil {
                return fmt.Errorf("property %q: %w", name, err)
            }
            if err := p.Type.UnmarshalYAML(val); err != nil {
                return fmt.Errorf("property %q: %w", name, err)
            }
            delete(p.Fields, "ctor")
            delete(p.Fields, "modelName")
            if len(p.Fields) == 0 {
                p.Fields = nil
            }
        default:
            if err := p.Type.UnmarshalYAML(val); err != nil {
                return fmt.Errorf("property %q: %w", name, err)
            }
        }
        p.Name = name
        out = append(out, p)
    }
    *ps = out
    return nil
}

// UnmarshalYAML decodes rule values, compiling !regex scalars.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
    v, err := decodeValue(node)
    if err != nil {
        return err
    }
    m, ok := v.(map[string]any)
    if !ok {
        return fmt.Errorf("line %d: validation rule must be a mapping", node.Line)
    }
    *r = Rule(m)
    return nil
}

func hasKey(node *yaml.Node, key string) bool {
    for i := 0; i+1 < len(node.Content); i += 2 {
        if node.Content[i].Value == key {
            return true
        }
    }
    return false
}

func decodeValue(node *yaml.Node) (any, error) {
    switch node.Kind {
    case yaml.AliasNode:
        return decodeValue(node.Alias)
    case yaml.MappingNode:
        out := make(map[string]any, len(node.Content)/2)
        for i := 0; i+1 < len(node.Content); i += 2 {
            v, err := decodeValue(node.Content[i+1])
            if err != nil {
                return nil, err
            }
            out[node.Content[i].Value] = v
        }
        return out, nil
    case yaml.SequenceNode:
        out := make([]any, 0, len(node.Content))
        for _, c := range node.Content {
            v, err := decodeValue(c)
            if err != nil {
                return nil, err
            }
            out = append(out, v)
        }
        return out, nil
    case yaml.ScalarNode:
        if node.Tag == "!regex" {
            re, err := regexp.Compile(node.Value)
            if err != nil {
                return nil, fmt.Errorf("line %d: invalid regex %q: %w", node.Line, node.Value, err)
            }
            return re, nil
        }
    }
    var v any
    if err := node.Decode(&v); err != nil {
        return nil, err
    }
    return v, nil
}
