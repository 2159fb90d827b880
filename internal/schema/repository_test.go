package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKnownVersions(t *testing.T) {
	repo := NewRepository()
	for _, v := range []string{"0.2.0", "0.2.3", "0.3.0", "0.3.3", "0.3.5"} {
		t.Run(v, func(t *testing.T) {
			s, err := repo.Load(v)
			if err != nil {
				t.Fatalf("Load(%q): %v", v, err)
			}
			if s == nil {
				t.Fatal("Load returned nil schema without error")
			}
		})
	}
}

func TestLoadCacheHit(t *testing.T) {
	repo := NewRepository()
	first, err := repo.Load("0.3.5")
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.Load("0.3.5")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second Load returned a different compiled schema instance")
	}

	repo.ClearCache()
	third, err := repo.Load("0.3.5")
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Error("ClearCache did not drop the compiled schema")
	}
}

func TestLoadUnknownVersion(t *testing.T) {
	repo := NewRepository()
	tests := []string{"0.9.9", "0.2", "", "latest"}
	for _, v := range tests {
		if _, err := repo.Load(v); !errors.Is(err, ErrSchemaNotFound) {
			t.Errorf("Load(%q) = %v, want ErrSchemaNotFound", v, err)
		}
	}
}

func TestVersionsSorted(t *testing.T) {
	got := Versions()
	want := []string{"0.2.0", "0.2.3", "0.3.0", "0.3.3", "0.3.5"}
	if len(got) != len(want) {
		t.Fatalf("Versions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Versions() = %v, want %v", got, want)
		}
	}
	if Latest() != "0.3.5" {
		t.Errorf("Latest() = %q, want 0.3.5", Latest())
	}
}

func TestRepositoryVersionsMergesOverlay(t *testing.T) {
	embedded := []string{"0.2.0", "0.2.3", "0.3.0", "0.3.3", "0.3.5"}

	plain := NewRepository()
	got := plain.Versions()
	if len(got) != len(embedded) {
		t.Fatalf("Versions() = %v, want %v", got, embedded)
	}

	dir := t.TempDir()
	overlay := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object"
}`
	for _, name := range []string{"ossa-0.4.0.schema.json", "ossa-0.3.5.schema.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(overlay), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Files that are not schema files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := NewRepositoryWithOverlay(dir)
	got = repo.Versions()
	want := append(append([]string{}, embedded...), "0.4.0")
	if len(got) != len(want) {
		t.Fatalf("Versions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Versions() = %v, want %v", got, want)
		}
	}
}

func TestOverlayDirPreferred(t *testing.T) {
	dir := t.TempDir()
	overlay := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["overlayOnly"]
}`
	path := filepath.Join(dir, "ossa-0.3.5.schema.json")
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := NewRepositoryWithOverlay(dir)
	s, err := repo.Load("0.3.5")
	if err != nil {
		t.Fatalf("Load with overlay: %v", err)
	}
	if err := s.Validate(map[string]any{"overlayOnly": true}); err != nil {
		t.Errorf("overlay schema not in effect: %v", err)
	}

	// Versions not present in the overlay still resolve to embedded ones.
	if _, err := repo.Load("0.2.3"); err != nil {
		t.Errorf("embedded fallback failed: %v", err)
	}
}
