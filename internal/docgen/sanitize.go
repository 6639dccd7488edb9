package docgen

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mark3labs/routedoc/internal/swagger"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// SanitizeText strips all markup from s. The remaining text is returned
// unescaped: the outputs are JSON, YAML and spreadsheets, not HTML.
func SanitizeText(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(textSanitizer().Sanitize(s)))
}

// sanitizeResult strips markup from the free text of res. Definitions are
// replaced with sanitized copies; entries shared between declarations stay
// shared.
func sanitizeResult(res *Result) {
	for i := range res.Listing.APIs {
		res.Listing.APIs[i].Description = SanitizeText(res.Listing.APIs[i].Description)
	}

	copies := make(map[*swagger.Definition]*swagger.Definition)
	cleanDefs := func(defs swagger.Definitions) swagger.Definitions {
		out := make(swagger.Definitions, len(defs))
		for name, def := range defs {
			c, ok := copies[def]
			if !ok {
				c = sanitizeDefinition(def)
				copies[def] = c
			}
			out[name] = c
		}
		return out
	}

	for i := range res.Declarations {
		d := &res.Declarations[i]
		for a := range d.APIs {
			ops := d.APIs[a].Operations
			for o := range ops {
				ops[o].Summary = SanitizeText(ops[o].Summary)
				ops[o].Notes = SanitizeText(ops[o].Notes)
				for p := range ops[o].Parameters {
					ops[o].Parameters[p].Description = SanitizeText(ops[o].Parameters[p].Description)
				}
			}
		}
		d.Models = cleanDefs(d.Models)
	}
	res.Definitions = cleanDefs(res.Definitions)
}

func sanitizeDefinition(def *swagger.Definition) *swagger.Definition {
	out := *def
	out.Description = SanitizeText(def.Description)
	out.Properties = make(map[string]*swagger.Schema, len(def.Properties))
	for name, prop := range def.Properties {
		c := prop.Clone()
		if s, ok := c.Extra["description"].(string); ok {
			c.Extra["description"] = SanitizeText(s)
		}
		out.Properties[name] = &c
	}
	return &out
}
