// Package emitter holds the file planning and writing shared by the
// documentation emitters.
package emitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Output encodings.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Plan lists files in deterministic order.
func Plan(files map[string][]byte) []PlannedFile {
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: filepath.ToSlash(rel), Size: len(files[rel]), Mode: 0o644})
	}
	return planned
}

// WriteFiles writes files under outDir. Without force a non-empty outDir is
// refused before anything is written.
func WriteFiles(name, outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("%s: output directory %q is not empty (use --force to overwrite)", name, abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

// NormalizeEncoding maps an empty encoding to JSON and rejects unknown ones.
func NormalizeEncoding(enc string) (string, error) {
	switch e := strings.ToLower(strings.TrimSpace(enc)); e {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingYAML, "yml":
		return EncodingYAML, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q (allowed: json, yaml)", enc)
	}
}

// Ext returns the file extension for enc.
func Ext(enc string) string {
	if enc == EncodingYAML {
		return ".yaml"
	}
	return ".json"
}

// Marshal encodes v as indented JSON or as block-style YAML. YAML output
// goes through the JSON form so json tags and MarshalJSON methods decide the
// field names, and key order is preserved.
func Marshal(v any, enc string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if enc != EncodingYAML {
		return append(data, '\n'), nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	var buf bytes.Buffer
	e := yaml.NewEncoder(&buf)
	e.SetIndent(2)
	if err := e.Encode(&node); err != nil {
		return nil, err
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blockStyle drops the flow and quoting styles inherited from JSON. The
// encoder still quotes strings that would otherwise read back as another
// type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
