package swagger

import (
	"sort"

	"github.com/mark3labs/routedoc/internal/spec"
)

// AddToDocument merges entry into doc. Operations of an entry whose path is
// already documented are appended to the existing entry in arrival order;
// otherwise the entry is appended. Operations are not de-duplicated.
func AddToDocument(entry PathEntry, doc *Declaration) {
	ops := append([]Operation(nil), entry.Operations...)
	for i := range doc.APIs {
		if doc.APIs[i].Path == entry.Path {
			doc.APIs[i].Operations = append(doc.APIs[i].Operations, ops...)
			return
		}
	}
	doc.APIs = append(doc.APIs, PathEntry{Path: entry.Path, Operations: ops})
}

// Add is AddToDocument(entry, d).
func (d *Declaration) Add(entry PathEntry) { AddToDocument(entry, d) }

// AddRoute translates route and merges the result into doc. doc is left
// unchanged when translation fails.
func (t *Translator) AddRoute(doc *Declaration, route spec.RouteDescriptor, class *spec.ClassDescriptor) error {
	entry, err := t.TranslateRoute(route, class)
	if err != nil {
		return err
	}
	doc.Add(entry)
	return nil
}

// Operations counts the operations across all entries.
func (d *Declaration) Operations() int {
	n := 0
	for _, api := range d.APIs {
		n += len(api.Operations)
	}
	return n
}

// ModelRefs returns, in lexical order, the model names referenced by the
// result types and parameters of every operation in d.
func (d *Declaration) ModelRefs() []string {
	set := make(map[string]struct{})
	add := func(name string, items *Schema) {
		if name != "" && !IsPrimitive(name) {
			set[name] = struct{}{}
		}
		for it := items; it != nil; it = it.Items {
			if it.Type != "" && !IsPrimitive(it.Type) {
				set[it.Type] = struct{}{}
			}
		}
	}
	for _, api := range d.APIs {
		for _, op := range api.Operations {
			add(op.Type, op.Items)
			for _, p := range op.Parameters {
				add(p.Type, p.Items)
			}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
