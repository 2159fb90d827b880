package migrate

import (
	"errors"
	"testing"

	"github.com/openstandardagents/ossa/internal/manifest"
)

func identityTo(to string) func(manifest.Document) (manifest.Document, error) {
	return func(doc manifest.Document) (manifest.Document, error) {
		return doc.WithVersion(to), nil
	}
}

func TestRegisterRejectsDuplicateEdge(t *testing.T) {
	r := NewRegistry()
	first := &Transform{ID: "a", From: "1.0.0", To: "1.1.0", Apply: identityTo("1.1.0")}
	if err := r.Register(first); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	dup := &Transform{ID: "b", From: "1.0.0", To: "1.1.0", Apply: identityTo("1.1.0")}
	if err := r.Register(dup); err == nil {
		t.Error("duplicate edge registration succeeded")
	}
}

func TestRegisterRejectsIncompleteTransform(t *testing.T) {
	r := NewRegistry()
	tests := []*Transform{
		{ID: "no-from", To: "1.0.0", Apply: identityTo("1.0.0")},
		{ID: "no-to", From: "1.0.0", Apply: identityTo("")},
		{ID: "no-apply", From: "1.0.0", To: "1.1.0"},
	}
	for _, tr := range tests {
		if err := r.Register(tr); err == nil {
			t.Errorf("transform %q: expected registration error", tr.ID)
		}
	}
}

func TestGetIsExact(t *testing.T) {
	r := DefaultRegistry()
	if _, ok := r.Get("0.2.0", "0.2.3"); !ok {
		t.Error("registered edge 0.2.0 -> 0.2.3 not found")
	}
	if _, ok := r.Get("0.3.3", "0.9.9"); ok {
		t.Error("unregistered edge 0.3.3 -> 0.9.9 reported as present")
	}
	if _, ok := r.Get("0.2.3", "0.2.0"); ok {
		t.Error("reverse of a registered edge reported as present")
	}
}

func TestFindPathSameVersion(t *testing.T) {
	r := DefaultRegistry()
	path, err := r.FindPath("0.3.3", "0.3.3")
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if path != nil {
		t.Errorf("path = %v, want nil for same version", path)
	}
}

func TestFindPathPrefersDirectEdge(t *testing.T) {
	r := DefaultRegistry()
	// 0.2.3 -> 0.3.3 is reachable via 0.3.0, but a curated direct edge
	// exists and must win.
	path, err := r.FindPath("0.2.3", "0.3.3")
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if len(path) != 2 || path[0] != "0.2.3" || path[1] != "0.3.3" {
		t.Errorf("path = %v, want [0.2.3 0.3.3]", path)
	}
}

func TestFindPathChains(t *testing.T) {
	r := DefaultRegistry()
	path, err := r.FindPath("0.2.0", "0.3.5")
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	want := []string{"0.2.0", "0.2.3", "0.3.3", "0.3.5"}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
}

func TestFindPathNoRoute(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct{ from, to string }{
		{"0.3.3", "0.9.9"},
		{"0.3.5", "0.2.0"}, // edges are one-directional
		{"unknown", "0.3.5"},
	}
	for _, tt := range tests {
		_, err := r.FindPath(tt.from, tt.to)
		if !errors.Is(err, ErrNoTransformPath) {
			t.Errorf("FindPath(%q, %q) = %v, want ErrNoTransformPath", tt.from, tt.to, err)
		}
	}
}

func TestFindPathTieBreaksOnNonBreaking(t *testing.T) {
	r := NewRegistry()
	edges := []*Transform{
		{ID: "ab", From: "1.0.0", To: "1.1.0", Breaking: true, Apply: identityTo("1.1.0")},
		{ID: "ac", From: "1.0.0", To: "1.2.0", Apply: identityTo("1.2.0")},
		{ID: "bd", From: "1.1.0", To: "2.0.0", Apply: identityTo("2.0.0")},
		{ID: "cd", From: "1.2.0", To: "2.0.0", Apply: identityTo("2.0.0")},
	}
	for _, e := range edges {
		if err := r.Register(e); err != nil {
			t.Fatalf("Register(%s): %v", e.ID, err)
		}
	}

	path, err := r.FindPath("1.0.0", "2.0.0")
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if len(path) != 3 || path[1] != "1.2.0" {
		t.Errorf("path = %v, want the non-breaking route via 1.2.0", path)
	}
}

func TestAllOrdering(t *testing.T) {
	all := DefaultRegistry().All()
	if len(all) != 5 {
		t.Fatalf("got %d transforms, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.From == cur.From {
			if !versionLess(prev.To, cur.To) {
				t.Errorf("All() not ordered by target at index %d: %s->%s before %s->%s", i, prev.From, prev.To, cur.From, cur.To)
			}
		} else if !versionLess(prev.From, cur.From) {
			t.Errorf("All() not ordered by source at index %d: %s before %s", i, prev.From, cur.From)
		}
	}
}
