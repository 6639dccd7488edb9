// Package swagger translates route and model descriptors into Swagger 1.2
// API declarations and model definitions.
//
// Translation is pure: descriptors are never mutated and every call works on
// its own copies. Declaration and Definitions values are accumulators owned
// by a single caller and must not be shared across goroutines without
// external locking.
package swagger

import (
	"encoding/json"
	"sort"

	"github.com/mark3labs/routedoc/internal/spec"
)

// Canonical type names and formats.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeFile    = "file"
	TypeVoid    = "void"
	// TypeAny types the items of arrays declared without an element type.
	// It is the only name outside the closed primitive set.
	TypeAny = "any"

	FormatDate   = "date"
	FormatByte   = "byte"
	FormatDouble = "double"
)

// Parameter locations.
const (
	LocationForm  = "form"
	LocationQuery = "query"
	LocationPath  = "path"
	LocationBody  = "body"
)

var primitives = map[string]struct{}{
	TypeString: {}, TypeInteger: {}, TypeNumber: {}, TypeBoolean: {},
	TypeArray: {}, TypeObject: {}, TypeFile: {}, TypeVoid: {}, TypeAny: {},
}

// IsPrimitive reports whether name belongs to the canonical primitive set.
// Any other non-empty name refers to a model.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}

// Schema is a mapped type. Extra holds attributes carried over from the
// descriptor (after key translation) and is flattened into the JSON form.
type Schema struct {
	Type   string
	Format string
	Items  *Schema
	Extra  spec.Fields
}

func (s Schema) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 3+len(s.Extra))
	for k, v := range s.Extra {
		m[k] = v
	}
	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Format != "" {
		m["format"] = s.Format
	}
	if s.Items != nil {
		m["items"] = s.Items
	}
	return json.Marshal(m)
}

// Clone returns a deep copy.
func (s Schema) Clone() Schema {
	out := s
	if s.Items != nil {
		items := s.Items.Clone()
		out.Items = &items
	}
	out.Extra = s.Extra.Clone()
	return out
}

// Parameter documents one operation argument.
type Parameter struct {
	Location      string  `json:"paramType"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Type          string  `json:"type,omitempty"`
	Format        string  `json:"format,omitempty"`
	Items         *Schema `json:"items,omitempty"`
	Required      bool    `json:"required"`
	DefaultValue  any     `json:"defaultValue,omitempty"`
	Minimum       any     `json:"minimum,omitempty"`
	Maximum       any     `json:"maximum,omitempty"`
	AllowMultiple bool    `json:"allowMultiple"`
}

type ResponseMessage struct {
	Code          int    `json:"code"`
	Message       string `json:"message"`
	ResponseModel string `json:"responseModel,omitempty"`
}

// Operation is one verb on a path.
type Operation struct {
	Method           string            `json:"method"`
	Nickname         string            `json:"nickname"`
	Type             string            `json:"type"`
	Format           string            `json:"format,omitempty"`
	Items            *Schema           `json:"items,omitempty"`
	Parameters       []Parameter       `json:"parameters"`
	ResponseMessages []ResponseMessage `json:"responseMessages"`
	Summary          string            `json:"summary,omitempty"`
	Notes            string            `json:"notes"`
}

// PathEntry groups the operations documented under one path.
type PathEntry struct {
	Path       string      `json:"path"`
	Operations []Operation `json:"operations"`
}

// Declaration accumulates path entries for one resource. A path appears at
// most once; operations on the same path are merged into its entry.
type Declaration struct {
	APIs []PathEntry `json:"apis"`
}

// Definition is the schema of one model.
type Definition struct {
	ID          string                      `json:"id"`
	Description string                      `json:"description,omitempty"`
	Properties  map[string]*Schema          `json:"properties"`
	Required    []string                    `json:"required"`
	Validations map[string][]map[string]any `json:"validations,omitempty"`
}

// PropertyNames returns property names in lexical order.
func (d *Definition) PropertyNames() []string {
	names := make([]string, 0, len(d.Properties))
	for n := range d.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Definitions maps model names to their definitions. Entries are written
// once and never replaced.
type Definitions map[string]*Definition

// Clone returns a shallow copy; entries are shared since they are immutable
// once written.
func (d Definitions) Clone() Definitions {
	out := make(Definitions, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Names returns the model names in lexical order.
func (d Definitions) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
