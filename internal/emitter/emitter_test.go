package emitter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlan_Sorted(t *testing.T) {
	t.Parallel()

	planned := Plan(map[string][]byte{"b.json": []byte("12"), "a.json": []byte("1")})
	want := []PlannedFile{
		{RelPath: "a.json", Size: 1, Mode: 0o644},
		{RelPath: "b.json", Size: 2, Mode: 0o644},
	}
	if diff := cmp.Diff(want, planned); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	files := map[string][]byte{"nested/x.json": []byte("{}\n")}
	if err := WriteFiles("test", dir, files, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "nested", "x.json"))
	if err != nil || string(data) != "{}\n" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}

	// Non-empty now, so a second write needs force.
	if err := WriteFiles("test", dir, files, false); err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected non-empty refusal, got %v", err)
	}
	if err := WriteFiles("test", dir, files, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "nested"))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestNormalizeEncoding(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": "json", "JSON": "json", "yaml": "yaml", " yml ": "yaml"} {
		got, err := NormalizeEncoding(in)
		if err != nil || got != want {
			t.Errorf("NormalizeEncoding(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := NormalizeEncoding("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
	if Ext("yaml") != ".yaml" || Ext("json") != ".json" {
		t.Fatalf("unexpected extensions")
	}
}

func TestMarshal_YAMLKeepsOrderAndTypes(t *testing.T) {
	t.Parallel()

	v := struct {
		Version string   `json:"swaggerVersion"`
		Path    string   `json:"path"`
		Empty   string   `json:"empty"`
		Flag    string   `json:"flag"`
		List    []string `json:"list"`
	}{"1.2", "/widgets", "", "true", []string{"application/json"}}

	got, err := Marshal(v, EncodingYAML)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `swaggerVersion: "1.2"
path: /widgets
empty: ""
flag: "true"
list:
  - application/json
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}

	js, err := Marshal(v, EncodingJSON)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	if !strings.HasPrefix(string(js), "{\n  \"swaggerVersion\": \"1.2\"") || !strings.HasSuffix(string(js), "}\n") {
		t.Fatalf("unexpected json: %s", js)
	}
}
