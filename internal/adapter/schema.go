package adapter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// ReconcileSchema accepts either a JSON Schema or an OpenAPI 3.1 fragment
// and returns the embedded JSON Schema. OpenAPI documents, parameter
// objects, and request-body/response media wrappers are unwrapped; a value
// that already looks like JSON Schema passes through untouched.
func ReconcileSchema(m map[string]any) map[string]any {
	for i := 0; i < 8 && m != nil; i++ {
		if looksLikeJSONSchema(m) {
			return m
		}
		unwrapped := unwrapOpenAPI(m)
		if unwrapped == nil {
			// Neither shape is recognizable; pass through as-is and let
			// compatibility validation flag it.
			return m
		}
		m = unwrapped
	}
	return m
}

// looksLikeJSONSchema checks for the structural keywords that identify a
// JSON Schema document.
func looksLikeJSONSchema(m map[string]any) bool {
	for _, key := range []string{"type", "properties", "$ref"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

// unwrapOpenAPI peels one layer of OpenAPI wrapping, returning nil when
// the value is not a recognizable OpenAPI shape.
func unwrapOpenAPI(m map[string]any) map[string]any {
	// Parameter object or media type object: {"schema": {...}}.
	if inner, ok := m["schema"].(map[string]any); ok {
		return inner
	}

	// Request body / response object: {"content": {"application/json": {...}}}.
	if content, ok := m["content"].(map[string]any); ok {
		keys := make([]string, 0, len(content))
		for k := range content {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if media, ok := content[k].(map[string]any); ok {
				return media
			}
		}
		return nil
	}

	// Full document ("openapi"/"paths"/"components" present): take the
	// first component schema in key order for determinism.
	if components, ok := m["components"].(map[string]any); ok {
		if schemas, ok := components["schemas"].(map[string]any); ok {
			keys := make([]string, 0, len(schemas))
			for k := range schemas {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if s, ok := schemas[k].(map[string]any); ok {
					return s
				}
			}
		}
	}
	return nil
}

// toSDKSchema converts a generic schema map into the SDK's typed schema
// via a JSON round-trip. A nil map yields a nil schema.
func toSDKSchema(m map[string]any) (*jsonschema.Schema, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return &s, nil
}

// fromSDKSchema normalizes a tool schema value into a generic map. The
// SDK declares tool schemas as any: in-process construction yields a
// typed *jsonschema.Schema, while a server config decoded from a JSON
// file yields a map[string]any. Anything else goes through a JSON
// round-trip, so both shapes come out as plain maps.
func fromSDKSchema(v any) (map[string]any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return val, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return m, nil
}
