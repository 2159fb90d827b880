package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `apiVersion: ossa/v0.3.5
kind: Agent
metadata:
  name: support-bot
  version: 1.0.0
spec:
  role: Answer support tickets
  llm:
    provider: anthropic
    model: claude-sonnet-4
    temperature: 0.2
  tools:
    - type: function
      name: lookup-order
`

const sampleJSON = `{
  "apiVersion": "ossa/v0.3.5",
  "kind": "Agent",
  "metadata": {"name": "support-bot", "version": "1.0.0"},
  "spec": {"role": "Answer support tickets"}
}`

func TestParseByExtension(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"yaml", sampleYAML, ".yaml"},
		{"yml", sampleYAML, ".yml"},
		{"json", sampleJSON, ".json"},
		{"unknown ext yaml fallback", sampleYAML, ".ossa"},
		{"unknown ext json fallback", sampleJSON, ".manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if doc.Name() != "support-bot" {
				t.Errorf("name = %q, want support-bot", doc.Name())
			}
			if got, _ := doc.APIVersion(); got != "ossa/v0.3.5" {
				t.Errorf("apiVersion = %q", got)
			}
		})
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	if _, err := Parse([]byte(`["a", "b"]`), ".json"); err == nil {
		t.Error("expected error for top-level array")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc, err := Parse([]byte(sampleYAML), ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "agent."+format)
			if err := Save(doc, path, format); err != nil {
				t.Fatalf("Save: %v", err)
			}
			back, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if back.Name() != doc.Name() {
				t.Errorf("round trip lost name: %q", back.Name())
			}
			spec := back.Spec()
			llm, _ := spec["llm"].(map[string]any)
			if llm == nil || llm["model"] != "claude-sonnet-4" {
				t.Errorf("round trip lost spec.llm.model: %#v", spec["llm"])
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.json", "json"},
		{"a.JSON", "json"},
		{"a.yaml", "yaml"},
		{"a.yml", "yaml"},
		{"a.ossa", "yaml"},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML), ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Kind != KindAgent {
		t.Errorf("kind = %q, want %q", m.Kind, KindAgent)
	}
	if m.Metadata.Name != "support-bot" {
		t.Errorf("metadata.name = %q", m.Metadata.Name)
	}
	if m.Spec.LLM == nil || m.Spec.LLM.Model != "claude-sonnet-4" {
		t.Errorf("spec.llm = %#v", m.Spec.LLM)
	}
	if len(m.Spec.Tools) != 1 || m.Spec.Tools[0].Name != "lookup-order" {
		t.Errorf("spec.tools = %#v", m.Spec.Tools)
	}
}

func TestSaveUnsupportedFormat(t *testing.T) {
	err := Save(Document{}, filepath.Join(t.TempDir(), "x"), "toml")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseFileWithAnchors(t *testing.T) {
	// yaml aliases decode fine and normalize to plain maps.
	data := `
apiVersion: ossa/v0.3.5
kind: Agent
metadata: &meta
  name: anchored
spec:
  role: test
  extra: *meta
`
	path := filepath.Join(t.TempDir(), "anchored.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Name() != "anchored" {
		t.Errorf("name = %q", doc.Name())
	}
}
