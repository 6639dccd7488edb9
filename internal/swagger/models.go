package swagger

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/mark3labs/routedoc/internal/spec"
)

// BuildDefinitions adds the definition of m, and of every model reachable
// through its relations, to a copy of defs and returns that copy. defs is
// never modified and may be nil.
//
// A model already present is left untouched, which makes the call
// idempotent and stops recursion on cyclic relation graphs. On error no
// definitions are returned.
func (t *Translator) BuildDefinitions(m *spec.ModelDescriptor, defs Definitions) (Definitions, error) {
	out := defs.Clone()
	if err := t.buildInto(m, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Translator) buildInto(m *spec.ModelDescriptor, out Definitions) error {
	if m == nil {
		return fmt.Errorf("swagger: nil model descriptor")
	}
	if _, ok := out[m.Name]; ok {
		return nil
	}

	def := &Definition{
		ID:          m.Name,
		Description: m.Description,
		Properties:  make(map[string]*Schema, len(m.Properties)),
		Required:    []string{},
	}
	for _, p := range m.Properties {
		if m.IsHidden(p) {
			continue
		}
		s, err := MapType(p.Type)
		if err != nil {
			return modelError(m.Name, "property "+p.Name, err)
		}
		if len(p.Fields) > 0 {
			extra := s.Extra.Clone()
			if extra == nil {
				extra = spec.Fields{}
			}
			for k, v := range p.Fields {
				extra[k] = v
			}
			s.Extra = extra
		}
		s.Extra = t.keys(s.Extra)
		if d, ok := s.Extra["description"]; ok {
			if _, plain := d.(string); !plain {
				s.Extra = s.Extra.Clone()
				if d == nil {
					delete(s.Extra, "description")
				} else {
					s.Extra["description"] = describe(d)
				}
			}
		}
		if len(s.Extra) == 0 {
			s.Extra = nil
		}
		// Generated identifiers are optional on input.
		if p.Required || (p.ID && !p.Generated) {
			def.Required = append(def.Required, p.Name)
		}
		def.Properties[p.Name] = &s
	}
	def.Validations = normalizeValidations(m.Validations)

	// Written before recursing so cycles back to m terminate.
	out[m.Name] = def

	names := make([]string, 0, len(m.Relations))
	for name := range m.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rel := m.Relations[name]
		if rel.Model == "" && rel.Through == "" {
			return modelError(m.Name, "relation "+name, ErrMalformedRelation)
		}
		for _, target := range []string{rel.Model, rel.Through} {
			if target == "" {
				continue
			}
			related, err := t.resolve(target)
			if err != nil {
				return modelError(m.Name, "relation "+name, err)
			}
			if err := t.buildInto(related, out); err != nil {
				return modelError(m.Name, "relation "+name, err)
			}
		}
	}
	return nil
}

func (t *Translator) resolve(name string) (*spec.ModelDescriptor, error) {
	if t.models == nil {
		return nil, fmt.Errorf("%w %q: no model resolver configured", ErrUnknownModel, name)
	}
	m, ok := t.models.Model(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModel, name)
	}
	return m, nil
}

// normalizeValidations deep-copies rules, turning regular expressions into
// their source strings so the result can be serialized.
func normalizeValidations(in map[string][]spec.Rule) map[string][]map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]map[string]any, len(in))
	for name, rules := range in {
		list := make([]map[string]any, 0, len(rules))
		for _, r := range rules {
			list = append(list, normalizeValue(map[string]any(r)).(map[string]any))
		}
		out[name] = list
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case *regexp.Regexp:
		if val == nil {
			return nil
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalizeValue(e)
		}
		return out
	case spec.Rule:
		return normalizeValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// DefinitionsBuilder owns a Definitions accumulator. It is not safe for
// concurrent use.
type DefinitionsBuilder struct {
	tr   *Translator
	defs Definitions
}

func (t *Translator) NewDefinitionsBuilder() *DefinitionsBuilder {
	return &DefinitionsBuilder{tr: t, defs: Definitions{}}
}

// Add folds m and its related models into the accumulator. A failed Add
// leaves the accumulator unchanged.
func (b *DefinitionsBuilder) Add(m *spec.ModelDescriptor) error {
	out, err := b.tr.BuildDefinitions(m, b.defs)
	if err != nil {
		return err
	}
	b.defs = out
	return nil
}

// AddNamed resolves name and adds it.
func (b *DefinitionsBuilder) AddNamed(name string) error {
	m, err := b.tr.resolve(name)
	if err != nil {
		return modelError(name, "", err)
	}
	return b.Add(m)
}

// Has reports whether a definition for name is present.
func (b *DefinitionsBuilder) Has(name string) bool {
	_, ok := b.defs[name]
	return ok
}

// Definitions returns a snapshot of the accumulated definitions.
func (b *DefinitionsBuilder) Definitions() Definitions {
	return b.defs.Clone()
}
