package swagger

import "github.com/mark3labs/routedoc/internal/spec"

// ModelResolver looks up model descriptors named by relations.
// *spec.Catalog satisfies it.
type ModelResolver interface {
	Model(name string) (*spec.ModelDescriptor, bool)
}

// Translator holds the collaborators shared by route and model translation.
// It has no mutable state and is safe for concurrent use.
type Translator struct {
	keys   KeyTranslator
	models ModelResolver
}

// Option configures a Translator.
type Option func(*Translator)

// WithKeyTranslator replaces TranslateKeys.
func WithKeyTranslator(k KeyTranslator) Option {
	return func(t *Translator) {
		if k != nil {
			t.keys = k
		}
	}
}

// WithModelResolver sets the resolver used to follow relations.
func WithModelResolver(r ModelResolver) Option {
	return func(t *Translator) { t.models = r }
}

func New(opts ...Option) *Translator {
	t := &Translator{keys: TranslateKeys}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Translator) translate(f spec.Fields) spec.Fields {
	out := t.keys(f.Clone())
	if out == nil {
		out = spec.Fields{}
	}
	return out
}
