package swagger

import "github.com/mark3labs/routedoc/internal/spec"

// KeyTranslator renames attribute keys from the descriptor vocabulary to the
// documentation vocabulary. Implementations must not modify their input.
type KeyTranslator func(spec.Fields) spec.Fields

// keyTranslations maps descriptor keys to documentation keys.
var keyTranslations = map[string]string{
	"doc":     "description",
	"default": "defaultValue",
	"min":     "minimum",
	"max":     "maximum",
}

// TranslateKeys is the default KeyTranslator. A present descriptor key
// replaces the documentation key it maps to.
func TranslateKeys(in spec.Fields) spec.Fields {
	if in == nil {
		return nil
	}
	out := in.Clone()
	for from, to := range keyTranslations {
		v, ok := out[from]
		if !ok {
			continue
		}
		out[to] = v
		delete(out, from)
	}
	return out
}
