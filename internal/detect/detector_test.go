package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openstandardagents/ossa/internal/manifest"
	"github.com/openstandardagents/ossa/internal/schema"
	"github.com/openstandardagents/ossa/internal/validate"
)

// stubPaths records calls and returns a fixed path.
type stubPaths struct {
	called bool
	path   []string
	err    error
}

func (s *stubPaths) FindPath(from, to string) ([]string, error) {
	s.called = true
	return s.path, s.err
}

func newDetector(paths PathFinder) *Service {
	return NewService(validate.NewService(schema.NewRepository()), paths)
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name       string
		doc        manifest.Document
		version    string
		confidence Confidence
		source     Source
		warnings   int
	}{
		{
			name: "apiVersion marker",
			doc: manifest.Document{
				"apiVersion": "ossa/v0.3.3",
				"kind":       "Agent",
				"metadata":   map[string]any{"name": "a", "version": "1.0.0"},
				"spec":       map[string]any{"role": "x"},
			},
			version:    "0.3.3",
			confidence: ConfidenceHigh,
			source:     SourceAPIVersion,
		},
		{
			name: "apiVersion marker trusted without structural validity",
			doc: manifest.Document{
				"apiVersion": "ossa/v0.3.5",
				"kind":       "Agent",
				"metadata":   map[string]any{"name": "test"},
				"spec":       map[string]any{"role": "test"},
			},
			version:    "0.3.5",
			confidence: ConfidenceHigh,
			source:     SourceAPIVersion,
		},
		{
			name: "legacy ossaVersion field",
			doc: manifest.Document{
				"ossaVersion": "0.2.0",
				"agent":       map[string]any{"name": "old-agent"},
			},
			version:    "0.2.0",
			confidence: ConfidenceMedium,
			source:     SourceLegacyField,
			warnings:   1,
		},
		{
			name: "schema probe newest match",
			doc: manifest.Document{
				"kind":     "Agent",
				"metadata": map[string]any{"name": "probed", "version": "1.0.0"},
				"spec": map[string]any{
					"role":  "x",
					"tools": []any{map[string]any{"type": "function", "name": "t"}},
				},
			},
			version:    "0.3.5",
			confidence: ConfidenceLow,
			source:     SourceSchemaProbe,
			warnings:   1,
		},
		{
			name: "schema probe disambiguates by tool name requirement",
			doc: manifest.Document{
				"kind":     "Agent",
				"metadata": map[string]any{"name": "probed", "version": "1.0.0"},
				"spec": map[string]any{
					"role":  "x",
					"tools": []any{map[string]any{"type": "function"}},
				},
			},
			version:    "0.3.3",
			confidence: ConfidenceLow,
			source:     SourceSchemaProbe,
			warnings:   1,
		},
		{
			name: "schema probe without metadata.version",
			doc: manifest.Document{
				"kind":     "Agent",
				"metadata": map[string]any{"name": "probed"},
				"spec":     map[string]any{"role": "x"},
			},
			version:    "0.2.3",
			confidence: ConfidenceLow,
			source:     SourceSchemaProbe,
			warnings:   1,
		},
		{
			name: "nothing recognizable",
			doc: manifest.Document{
				"kind":     "Agent",
				"metadata": map[string]any{},
				"spec":     map[string]any{},
			},
			version:    VersionUnknown,
			confidence: ConfidenceLow,
			source:     SourceUnknown,
			warnings:   1,
		},
		{
			name: "malformed apiVersion falls through to legacy",
			doc: manifest.Document{
				"apiVersion":  "ossa-0.3.3",
				"ossaVersion": "0.2.0",
				"agent":       map[string]any{"name": "old"},
			},
			version:    "0.2.0",
			confidence: ConfidenceMedium,
			source:     SourceLegacyField,
			warnings:   2,
		},
	}

	svc := newDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.DetectVersion(tt.doc)
			if got.Version != tt.version {
				t.Errorf("version = %q, want %q", got.Version, tt.version)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("confidence = %q, want %q", got.Confidence, tt.confidence)
			}
			if got.Source != tt.source {
				t.Errorf("source = %q, want %q", got.Source, tt.source)
			}
			if len(got.Warnings) != tt.warnings {
				t.Errorf("warnings = %v, want %d of them", got.Warnings, tt.warnings)
			}
		})
	}
}

func TestDetectVersionProbesOverlaySchemas(t *testing.T) {
	// A markerless document shaped for a future schema release. No
	// embedded schema accepts it, so detection depends on the overlay
	// version being probed.
	doc := manifest.Document{
		"kind":     "Agent",
		"metadata": map[string]any{"name": "next-gen"},
		"spec":     map[string]any{"persona": "archivist"},
	}

	without := newDetector(nil).DetectVersion(doc)
	if without.Version != VersionUnknown {
		t.Fatalf("version without overlay = %q, want %q", without.Version, VersionUnknown)
	}

	dir := t.TempDir()
	overlay := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kind", "metadata", "spec"],
  "properties": {
    "apiVersion": {"const": "ossa/v0.4.0"},
    "kind": {"const": "Agent"},
    "metadata": {
      "type": "object",
      "required": ["name"]
    },
    "spec": {
      "type": "object",
      "required": ["persona"]
    }
  }
}`
	if err := os.WriteFile(filepath.Join(dir, "ossa-0.4.0.schema.json"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(validate.NewService(schema.NewRepositoryWithOverlay(dir)), nil)
	got := svc.DetectVersion(doc)
	if got.Version != "0.4.0" {
		t.Fatalf("version = %q, want 0.4.0 (warnings: %v)", got.Version, got.Warnings)
	}
	if got.Confidence != ConfidenceLow || got.Source != SourceSchemaProbe {
		t.Errorf("confidence = %q, source = %q", got.Confidence, got.Source)
	}
}

func TestNeedsMigration(t *testing.T) {
	tests := []struct {
		current, target string
		want            bool
	}{
		{"0.2.3", "0.3.5", true},
		{"0.3.5", "0.3.5", false},
		{"0.3.5", "0.2.3", false}, // downgrade is not a migration
		{VersionUnknown, "0.3.5", true},
		{"", "0.3.5", true},
		{"garbage", "0.3.5", true},
	}

	svc := newDetector(nil)
	for _, tt := range tests {
		if got := svc.NeedsMigration(tt.current, tt.target); got != tt.want {
			t.Errorf("NeedsMigration(%q, %q) = %v, want %v", tt.current, tt.target, got, tt.want)
		}
	}
}

func TestMigrationPathSkipsFinderWhenNotNeeded(t *testing.T) {
	stub := &stubPaths{path: []string{"0.2.3", "0.3.0"}}
	svc := newDetector(stub)

	path, err := svc.MigrationPath("0.3.5", "0.2.3")
	if err != nil || path != nil {
		t.Errorf("downgrade path = %v, %v; want nil, nil", path, err)
	}
	if stub.called {
		t.Error("path finder consulted for a downgrade")
	}

	path, err = svc.MigrationPath("0.3.5", "0.3.5")
	if err != nil || path != nil {
		t.Errorf("no-op path = %v, %v; want nil, nil", path, err)
	}
}

func TestMigrationPathDelegates(t *testing.T) {
	stub := &stubPaths{path: []string{"0.2.3", "0.3.0", "0.3.3"}}
	svc := newDetector(stub)

	path, err := svc.MigrationPath("0.2.3", "0.3.3")
	if err != nil {
		t.Fatalf("MigrationPath: %v", err)
	}
	if !stub.called {
		t.Fatal("path finder not consulted")
	}
	if len(path) != 3 || path[0] != "0.2.3" || path[2] != "0.3.3" {
		t.Errorf("path = %v", path)
	}
}
