package adapter

import (
	"reflect"
	"testing"
)

func TestReconcileSchemaPassThrough(t *testing.T) {
	tests := []map[string]any{
		{"type": "object"},
		{"properties": map[string]any{"a": map[string]any{"type": "string"}}},
		{"$ref": "#/definitions/Order"},
	}
	for _, in := range tests {
		if got := ReconcileSchema(in); !reflect.DeepEqual(got, in) {
			t.Errorf("ReconcileSchema(%v) = %v, want unchanged", in, got)
		}
	}
	if ReconcileSchema(nil) != nil {
		t.Error("ReconcileSchema(nil) should stay nil")
	}
}

func TestReconcileSchemaUnwrapsParameter(t *testing.T) {
	in := map[string]any{
		"name":     "orderId",
		"in":       "query",
		"required": true,
		"schema":   map[string]any{"type": "string"},
	}
	got := ReconcileSchema(in)
	if got["type"] != "string" {
		t.Errorf("got %v, want the embedded schema", got)
	}
}

func TestReconcileSchemaUnwrapsMediaContent(t *testing.T) {
	want := map[string]any{
		"type":       "object",
		"properties": map[string]any{"total": map[string]any{"type": "number"}},
	}
	in := map[string]any{
		"description": "order response",
		"content": map[string]any{
			"application/json": map[string]any{"schema": want},
			"text/plain":       map[string]any{"schema": map[string]any{"type": "string"}},
		},
	}
	// Media types unwrap in sorted key order, so application/json wins.
	got := ReconcileSchema(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconcileSchemaUnwrapsComponents(t *testing.T) {
	want := map[string]any{"type": "object"}
	in := map[string]any{
		"openapi": "3.1.0",
		"components": map[string]any{
			"schemas": map[string]any{
				"Order": want,
				"Zebra": map[string]any{"type": "string"},
			},
		},
	}
	got := ReconcileSchema(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want the first component schema in key order", got)
	}
}

func TestReconcileSchemaUnrecognizable(t *testing.T) {
	in := map[string]any{"foo": "bar"}
	got := ReconcileSchema(in)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("got %v, want unrecognizable input passed through", got)
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	in := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "search text"},
			"limit": map[string]any{"type": "integer"},
		},
		"required": []any{"query"},
	}
	s, err := toSDKSchema(in)
	if err != nil {
		t.Fatalf("toSDKSchema: %v", err)
	}
	if s.Type != "object" {
		t.Errorf("type = %q", s.Type)
	}
	if s.Properties["query"] == nil || s.Properties["query"].Type != "string" {
		t.Errorf("properties = %+v", s.Properties)
	}

	back, err := fromSDKSchema(s)
	if err != nil {
		t.Fatalf("fromSDKSchema: %v", err)
	}
	if back["type"] != "object" {
		t.Errorf("round trip type = %v", back["type"])
	}
	req, _ := back["required"].([]any)
	if len(req) != 1 || req[0] != "query" {
		t.Errorf("round trip required = %v", back["required"])
	}
}

func TestSchemaNilHandling(t *testing.T) {
	s, err := toSDKSchema(nil)
	if err != nil || s != nil {
		t.Errorf("toSDKSchema(nil) = %v, %v", s, err)
	}
	m, err := fromSDKSchema(nil)
	if err != nil || m != nil {
		t.Errorf("fromSDKSchema(nil) = %v, %v", m, err)
	}
}
