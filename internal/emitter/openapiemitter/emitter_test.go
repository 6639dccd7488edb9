package openapiemitter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/routedoc/internal/docgen"
	"github.com/mark3labs/routedoc/internal/logger"
	"github.com/mark3labs/routedoc/internal/spec"
	"github.com/mark3labs/routedoc/internal/swagger"
)

const shopYAML = `
title: Shop
apiVersion: "2.0.0"
basePath: /api
classes:
  - name: Widget
    description: Widgets on the shelf
    sharedCtor:
      accepts:
        - arg: id
          type: any
          required: true
          http: {source: path}
    routes:
      - path: /widgets
        verb: get
        method: Widget.find
        accepts:
          - arg: filter
            type: object
          - arg: limit
            type: number
            max: 100
        returns:
          - arg: data
            type: []
      - path: /widgets
        verb: post
        method: Widget.create
        accepts:
          - arg: data
            type: object
            http: {source: body}
        returns:
          - arg: data
            type: object
      - path: /widgets/:id
        verb: del
        method: Widget.prototype.destroy
      - path: /widgets/:id/stats
        verb: get
        method: Widget.prototype.stats
        returns:
          - arg: stats
            type: Stats
models:
  - name: Widget
    properties:
      id: {type: number, id: true, generated: true}
      name: {type: string, required: true, doc: The display name}
      tags: {type: [string]}
    relations:
      parts: {type: hasMany, model: Part}
  - name: Part
    properties:
      code: {type: string, id: true}
`

func shopResult(t *testing.T) *docgen.Result {
	t.Helper()
	cat, err := spec.Parse([]byte(shopYAML), "shop.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := docgen.Build(context.Background(), cat)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return res
}

func TestToSwagger2_Shop(t *testing.T) {
	t.Parallel()

	doc, err := ToSwagger2(shopResult(t), logger.Discard())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if doc.Swagger != "2.0" || doc.Info.Title != "Shop" || doc.Info.Version != "2.0.0" || doc.BasePath != "/api" {
		t.Fatalf("unexpected header: %+v", doc)
	}
	if len(doc.Tags) != 1 || doc.Tags[0].Name != "Widget" || doc.Tags[0].Description != "Widgets on the shelf" {
		t.Fatalf("unexpected tags: %+v", doc.Tags)
	}

	find := doc.Paths["/widgets"].Get
	if find == nil || find.OperationID != "Widget_find" {
		t.Fatalf("missing find operation: %+v", doc.Paths["/widgets"])
	}
	if diff := cmp.Diff([]string{"query:filter:string", "query:limit:number"}, summarize(find.Parameters)); diff != "" {
		t.Fatalf("find parameters mismatch (-want +got):\n%s", diff)
	}
	if max := find.Parameters[1].Maximum; max == nil || *max != 100 {
		t.Fatalf("maximum not carried: %v", max)
	}
	result := find.Responses["200"]
	if result.Description != ResponseDescription || result.Schema.Value.Type != "array" ||
		result.Schema.Value.Items.Ref != "#/definitions/Widget" {
		t.Fatalf("unexpected find response: %+v", result.Schema.Value)
	}

	create := doc.Paths["/widgets"].Post
	if body := create.Parameters[0]; body.In != "body" || body.Schema.Ref != "#/definitions/Widget" {
		t.Fatalf("create body not a Widget reference: %+v", body)
	}

	destroy := doc.Paths["/widgets/{id}"].Delete
	if diff := cmp.Diff([]string{"path:id:string:required"}, summarize(destroy.Parameters)); diff != "" {
		t.Fatalf("destroy parameters mismatch (-want +got):\n%s", diff)
	}
	if destroy.Responses["200"].Schema != nil {
		t.Fatalf("void operation has a response schema")
	}

	// Stats has no definition and degrades to a plain object.
	stats := doc.Paths["/widgets/{id}/stats"].Get.Responses["200"].Schema
	if stats.Ref != "" || stats.Value.Type != "object" {
		t.Fatalf("unexpected stats schema: %+v", stats)
	}

	widget := doc.Definitions["Widget"].Value
	if diff := cmp.Diff([]string{"name"}, widget.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if p := widget.Properties["name"].Value; p.Description != "The display name" {
		t.Fatalf("property description lost: %+v", p)
	}
	if p := widget.Properties["id"].Value; p.Type != "number" || p.Format != "double" {
		t.Fatalf("unexpected id property: %+v", p)
	}
	if p := widget.Properties["tags"].Value; p.Type != "array" || p.Items.Value.Type != "string" {
		t.Fatalf("unexpected tags property: %+v", p)
	}
	if _, ok := doc.Definitions["Part"]; !ok {
		t.Fatalf("related model missing")
	}
}

func TestToSwagger2_SkipsWhatSwagger2CannotHold(t *testing.T) {
	t.Parallel()

	res := &docgen.Result{
		APIVersion: "1.0.0",
		BasePath:   "/",
		Declarations: []docgen.APIDeclaration{{
			Class:        "Ping",
			ResourcePath: "/Ping",
			APIs: []swagger.PathEntry{
				{Path: "/ping", Operations: []swagger.Operation{
					{Method: "GET", Nickname: "Ping_a", Type: swagger.TypeVoid},
					{Method: "GET", Nickname: "Ping_b", Type: swagger.TypeVoid},
					{Method: "TRACE", Nickname: "Ping_trace", Type: swagger.TypeVoid},
					{Method: "POST", Nickname: "Ping_ctx", Type: swagger.TypeVoid,
						Parameters: []swagger.Parameter{{Location: "context", Name: "ctx"}}},
				}},
				{Path: "/pong", Operations: []swagger.Operation{
					{Method: "GET", Nickname: "Ping_a", Type: swagger.TypeAny},
				}},
			},
		}},
		Definitions: swagger.Definitions{},
	}

	var logs bytes.Buffer
	doc, err := ToSwagger2(res, logger.New(&logs, false))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if doc.Info.Title != DefaultTitle {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	ping := doc.Paths["/ping"]
	if ping.Get.OperationID != "Ping_a" || len(ping.Operations()) != 2 {
		t.Fatalf("unexpected /ping operations: %+v", ping.Operations())
	}
	if len(ping.Post.Parameters) != 0 {
		t.Fatalf("unsupported location kept: %+v", ping.Post.Parameters)
	}
	if got := doc.Paths["/pong"].Get.OperationID; got != "Ping_a_2" {
		t.Fatalf("duplicate operation id = %q", got)
	}
	for _, want := range []string{
		"already documented by Ping_a",
		"TRACE /ping (Ping_trace): method not supported",
		`unsupported location "context"`,
		`duplicate operation id "Ping_a" renamed to "Ping_a_2"`,
	} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("missing warning %q in %q", want, logs.String())
		}
	}

	if _, err := ToSwagger2(nil, nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

func TestEmit_Swagger2(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), shopResult(t), Options{OutDir: dir})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Format != FormatSwagger2 || res.Operations != 4 || res.Planned[0].RelPath != "swagger.json" {
		t.Fatalf("unexpected result: %+v", res)
	}
	var doc map[string]any
	readJSON(t, filepath.Join(dir, "swagger.json"), &doc)
	if doc["swagger"] != "2.0" || doc["basePath"] != "/api" {
		t.Fatalf("unexpected document header: %v", doc)
	}
}

func TestEmit_OpenAPI3(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), shopResult(t), Options{OutDir: dir, Format: "v3"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Format != FormatOpenAPI3 || res.Planned[0].RelPath != "openapi.json" {
		t.Fatalf("unexpected result: %+v", res)
	}
	var doc map[string]any
	readJSON(t, filepath.Join(dir, "openapi.json"), &doc)
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", doc["openapi"])
	}
	servers := doc["servers"].([]any)
	if diff := cmp.Diff(map[string]any{"url": "/api"}, servers[0]); diff != "" {
		t.Fatalf("server mismatch (-want +got):\n%s", diff)
	}
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["Widget"]; !ok {
		t.Fatalf("Widget schema missing: %v", schemas)
	}
	post := doc["paths"].(map[string]any)["/widgets"].(map[string]any)["post"].(map[string]any)
	content := post["requestBody"].(map[string]any)["content"].(map[string]any)
	body := content["application/json"].(map[string]any)["schema"].(map[string]any)
	if body["$ref"] != "#/components/schemas/Widget" {
		t.Fatalf("request body schema = %v", body)
	}
}

func TestEmit_OpenAPI3_YAMLDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), shopResult(t), Options{OutDir: dir, Format: FormatOpenAPI3, Encoding: "yaml", DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Planned[0].RelPath != "openapi.yaml" || res.Planned[0].Size == 0 {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files written on dry-run")
	}
}

func TestEmit_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if _, err := Emit(ctx, nil, Options{OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := Emit(ctx, shopResult(t), Options{}); err == nil {
		t.Fatalf("expected error for missing OutDir")
	}
	if _, err := Emit(ctx, shopResult(t), Options{OutDir: t.TempDir(), Format: "raml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := Emit(ctx, shopResult(t), Options{OutDir: t.TempDir(), Encoding: "xml"}); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestNormalizeFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": FormatSwagger2, "Swagger": FormatSwagger2, "2.0": FormatSwagger2, "openapi": FormatOpenAPI3, " 3 ": FormatOpenAPI3} {
		got, err := NormalizeFormat(in)
		if err != nil || got != want {
			t.Errorf("NormalizeFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("%s invalid: %v", path, err)
	}
}
