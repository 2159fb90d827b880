package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Load reads a manifest file and returns it as an untyped Document.
// The format is chosen by extension; unknown extensions try YAML first,
// then JSON.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	doc, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes manifest data into a Document.
func Parse(data []byte, ext string) (Document, error) {
	var raw any
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			if jerr := json.Unmarshal(data, &raw); jerr != nil {
				return nil, fmt.Errorf("parsing manifest: %w", err)
			}
		}
	}

	obj, ok := normalizeYAML(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrUnsupportedFormat)
	}
	return Document(obj), nil
}

// Save writes a document to a file in the requested format ("json" or
// "yaml").
func Save(doc Document, path string, format string) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
	case "yaml", "yml":
		data, err = yaml.Marshal(map[string]any(doc))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// FormatForPath returns the save format implied by a file extension,
// defaulting to YAML.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

// Decode converts a Document into a typed Manifest via a JSON round-trip.
func Decode(doc Document) (*Manifest, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// normalizeYAML recursively converts YAML-decoded values to JSON-compatible
// types. yaml/v3 produces map[string]interface{} for string keys but
// map[interface{}]interface{} for anything else, which json.Marshal rejects.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = normalizeYAML(inner)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[fmt.Sprint(k)] = normalizeYAML(inner)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, inner := range val {
			a[i] = normalizeYAML(inner)
		}
		return a
	default:
		return val
	}
}
