package manifest

import (
	"errors"
	"fmt"
	"regexp"
)

// Document is a manifest as an untyped JSON-compatible object. Migration
// transforms operate on Documents so that fields unknown to this build of
// the CLI survive a migration untouched.
type Document map[string]any

// ErrUnsupportedFormat is returned when a document matches neither the
// modern nor the legacy manifest shape.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// apiVersionPattern matches the modern version marker, e.g. "ossa/v0.3.3".
var apiVersionPattern = regexp.MustCompile(`^([a-z][a-z0-9-]*)/v(\d+(?:\.\d+)*)$`)

// Namespace is the canonical apiVersion namespace for OSSA manifests.
const Namespace = "ossa"

// APIVersion returns the raw apiVersion string and whether it is present
// as a string value.
func (d Document) APIVersion() (string, bool) {
	v, ok := d["apiVersion"].(string)
	return v, ok
}

// ParseAPIVersion splits a well-formed apiVersion marker into its
// namespace and version parts. ok is false when the marker is malformed.
func ParseAPIVersion(marker string) (namespace, version string, ok bool) {
	m := apiVersionPattern.FindStringSubmatch(marker)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// LegacyVersion returns the value of the legacy ossaVersion field when the
// document has the legacy shape (ossaVersion string plus a top-level agent
// object).
func (d Document) LegacyVersion() (string, bool) {
	v, ok := d["ossaVersion"].(string)
	if !ok || v == "" {
		return "", false
	}
	if _, ok := d["agent"].(map[string]any); !ok {
		return "", false
	}
	return v, true
}

// IsModern reports whether the document carries the modern top-level shape.
func (d Document) IsModern() bool {
	if _, ok := d["apiVersion"].(string); !ok {
		return false
	}
	if _, ok := d["kind"].(string); !ok {
		return false
	}
	_, hasMeta := d["metadata"].(map[string]any)
	_, hasSpec := d["spec"].(map[string]any)
	return hasMeta && hasSpec
}

// IsLegacy reports whether the document carries the legacy top-level shape.
func (d Document) IsLegacy() bool {
	_, ok := d.LegacyVersion()
	return ok
}

// CheckShape verifies the document matches one of the two recognized
// top-level shapes. It must pass before version detection is attempted.
func (d Document) CheckShape() error {
	if d.IsModern() || d.IsLegacy() {
		return nil
	}
	return fmt.Errorf("%w: document has neither apiVersion/kind/metadata/spec nor ossaVersion/agent", ErrUnsupportedFormat)
}

// Clone returns a deep copy of the document. Transforms never mutate their
// input; they clone first and rewrite the copy.
func (d Document) Clone() Document {
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, inner := range val {
			a[i] = cloneValue(inner)
		}
		return a
	default:
		return val
	}
}

// WithVersion returns a copy of the document stamped with the modern
// version marker for the given version.
func (d Document) WithVersion(version string) Document {
	out := d.Clone()
	out["apiVersion"] = Namespace + "/v" + version
	delete(out, "ossaVersion")
	return out
}

// Metadata returns the metadata object, or nil if absent.
func (d Document) Metadata() map[string]any {
	m, _ := d["metadata"].(map[string]any)
	return m
}

// Spec returns the spec object, or nil if absent.
func (d Document) Spec() map[string]any {
	m, _ := d["spec"].(map[string]any)
	return m
}

// Name returns metadata.name for modern documents or agent.name for legacy
// ones, falling back to the empty string.
func (d Document) Name() string {
	if meta := d.Metadata(); meta != nil {
		if n, ok := meta["name"].(string); ok {
			return n
		}
	}
	if agent, ok := d["agent"].(map[string]any); ok {
		if n, ok := agent["name"].(string); ok {
			return n
		}
	}
	return ""
}
