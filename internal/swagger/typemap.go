package swagger

import (
	"fmt"
	"strings"

	"github.com/mark3labs/routedoc/internal/spec"
)

// MapType converts a raw type reference into its canonical schema. A
// reference with no declared type maps to the zero Schema.
//
// Array elements that are inline definitions are mapped recursively, so the
// items schema keeps its format and nested items. Any other element only
// contributes its canonical type name. Untyped arrays get items of TypeAny.
func MapType(t spec.TypeRef) (Schema, error) {
	switch t.Kind {
	case spec.TypeNone:
		return Schema{}, nil

	case spec.TypeNamed:
		if strings.TrimSpace(t.Name) == "" {
			return Schema{}, fmt.Errorf("%w: empty type name", ErrUnrepresentableType)
		}
		return narrow(t.Name), nil

	case spec.TypeCtor:
		name := t.ModelName
		if name == "" {
			name = strings.ToLower(t.Name)
		}
		if strings.TrimSpace(name) == "" {
			return Schema{}, fmt.Errorf("%w: constructor without a name", ErrUnrepresentableType)
		}
		return narrow(name), nil

	case spec.TypeArray:
		s := Schema{Type: TypeArray}
		switch {
		case t.Elem == nil:
			s.Items = &Schema{Type: TypeAny}
		case t.Elem.Kind == spec.TypeInline:
			items, err := MapType(*t.Elem)
			if err != nil {
				return Schema{}, err
			}
			s.Items = &items
		default:
			elem, err := MapType(*t.Elem)
			if err != nil {
				return Schema{}, err
			}
			if elem.Type == "" {
				elem.Type = TypeAny
			}
			s.Items = &Schema{Type: elem.Type}
		}
		return s, nil

	case spec.TypeInline:
		if t.Of == nil {
			return Schema{}, fmt.Errorf("%w: inline definition without a type", ErrUnrepresentableType)
		}
		s, err := MapType(*t.Of)
		if err != nil {
			return Schema{}, err
		}
		if len(t.Attrs) > 0 {
			extra := t.Attrs.Clone()
			for k, v := range s.Extra {
				extra[k] = v
			}
			s.Extra = extra
		}
		return s, nil
	}
	return Schema{}, fmt.Errorf("%w: %s", ErrUnrepresentableType, t)
}

// narrow applies the primitive overrides to a resolved type name.
func narrow(name string) Schema {
	switch name {
	case "date":
		return Schema{Type: TypeString, Format: FormatDate}
	case "buffer", "binary":
		return Schema{Type: TypeString, Format: FormatByte}
	case "number":
		// The descriptor model has a single numeric type, always a double.
		return Schema{Type: TypeNumber, Format: FormatDouble}
	case TypeArray:
		return Schema{Type: TypeArray, Items: &Schema{Type: TypeAny}}
	}
	return Schema{Type: name}
}
