package openapiemitter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/routedoc/internal/logger"
)

// summarize flattens parameters to in:name:type[:required].
func summarize(params openapi2.Parameters) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		s := fmt.Sprintf("%s:%s:%s", p.In, p.Name, p.Type)
		if p.Required {
			s += ":required"
		}
		out = append(out, s)
	}
	return out
}

func TestFixOperation(t *testing.T) {
	t.Parallel()

	ref := openapi3.NewSchemaRef(definitionsPrefix+"Widget", nil)
	str := openapi3.NewSchemaRef("", openapi3.NewStringSchema())

	tests := []struct {
		name     string
		path     string
		params   openapi2.Parameters
		want     []string
		consumes []string
		warn     string
	}{
		{
			name: "path parameters follow the template",
			path: "/widgets/{id}/parts/{fk}",
			params: openapi2.Parameters{
				{In: "path", Name: "id", Type: "string", Required: true},
				{In: "path", Name: "ghost", Type: "string", Required: true},
			},
			want: []string{"path:id:string:required", "query:ghost:string:required", "path:fk:string:required"},
			warn: `path parameter "ghost" is not in /widgets/{id}/parts/{fk}`,
		},
		{
			name: "duplicates keep the first",
			path: "/widgets",
			params: openapi2.Parameters{
				{In: "query", Name: "q", Type: "integer"},
				{In: "query", Name: "q", Type: "string"},
			},
			want: []string{"query:q:integer"},
			warn: `duplicate query parameter "q" dropped`,
		},
		{
			name: "body next to form fields",
			path: "/widgets",
			params: openapi2.Parameters{
				{In: "body", Name: "data", Schema: ref, Required: true},
				{In: "formData", Name: "label", Type: "string"},
			},
			want:     []string{"formData:data:string:required", "formData:label:string"},
			consumes: []string{mediaMultipart},
		},
		{
			name:     "form fields only",
			path:     "/widgets",
			params:   openapi2.Parameters{{In: "formData", Name: "label", Type: "string"}},
			want:     []string{"formData:label:string"},
			consumes: []string{mediaURLEncoded},
		},
		{
			name:     "file upload",
			path:     "/widgets",
			params:   openapi2.Parameters{{In: "formData", Name: "image", Type: "file"}},
			want:     []string{"formData:image:file"},
			consumes: []string{mediaMultipart},
		},
		{
			name: "several bodies merge",
			path: "/widgets",
			params: openapi2.Parameters{
				{In: "query", Name: "q", Type: "string"},
				{In: "body", Name: "a", Schema: str, Required: true},
				{In: "body", Name: "b", Schema: ref},
			},
			want: []string{"body:body::required", "query:q:string"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var logs bytes.Buffer
			op := &openapi2.Operation{OperationID: "op", Parameters: tt.params}
			fixOperation(tt.path, op, logger.New(&logs, false))

			if diff := cmp.Diff(tt.want, summarize(op.Parameters)); diff != "" {
				t.Fatalf("parameters mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.consumes, op.Consumes); diff != "" {
				t.Fatalf("consumes mismatch (-want +got):\n%s", diff)
			}
			if tt.warn != "" && !strings.Contains(logs.String(), tt.warn) {
				t.Fatalf("expected warning %q, got %q", tt.warn, logs.String())
			}
		})
	}
}

func TestMergeBodies_Schema(t *testing.T) {
	t.Parallel()

	params := mergeBodies(openapi2.Parameters{
		{In: "body", Name: "a", Required: true},
		{In: "body", Name: "b", Schema: openapi3.NewSchemaRef(definitionsPrefix+"Widget", nil)},
	})
	body := params[0].Schema.Value
	var props []string
	for name := range body.Properties {
		props = append(props, name)
	}
	sort.Strings(props)
	if diff := cmp.Diff([]string{"a", "b"}, props); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, body.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if body.Properties["a"].Value.Type != openapi3.TypeString {
		t.Fatalf("untyped body should default to string")
	}
	if body.Properties["b"].Ref != definitionsPrefix+"Widget" {
		t.Fatalf("reference lost: %+v", body.Properties["b"])
	}
}

func TestFormDataFromBody_Array(t *testing.T) {
	t.Parallel()

	arr := openapi3.NewArraySchema()
	arr.Items = openapi3.NewSchemaRef("", &openapi3.Schema{Type: openapi3.TypeInteger, Format: "int32"})
	got := formDataFromBody(&openapi2.Parameter{In: "body", Name: "ids", Schema: openapi3.NewSchemaRef("", arr)})
	if got.In != "formData" || got.Type != openapi3.TypeArray {
		t.Fatalf("unexpected form field: %+v", got)
	}
	if got.Items.Value.Type != openapi3.TypeInteger || got.Items.Value.Format != "int32" {
		t.Fatalf("items lost: %+v", got.Items.Value)
	}
}
