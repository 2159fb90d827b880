package adapter

import (
	"github.com/openstandardagents/ossa/internal/manifest"
)

// Capability is OSSA's native description of an invocable agent function.
type Capability struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
	Resources    []ResourceRef  `json:"resources,omitempty"`
	Hints        Hints          `json:"hints,omitempty"`
}

// Hints carry execution preferences that have no MCP equivalent.
type Hints struct {
	Streaming bool `json:"streaming,omitempty"`
	TimeoutMs int  `json:"timeoutMs,omitempty"`
}

// ResourceRef points at data a capability depends on.
type ResourceRef struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind,omitempty"`
	URI         string         `json:"uri,omitempty"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
}

// Resource kinds inferred from URI schemes.
const (
	KindEndpoint   = "endpoint"
	KindDocument   = "document"
	KindSecret     = "secret"
	KindDataset    = "dataset"
	KindCollection = "collection"
)

// Fidelity records what a lossy conversion dropped or defaulted, so
// downstream code can detect a lossy round-trip programmatically instead
// of re-diffing.
type Fidelity struct {
	Dropped   []string `json:"dropped,omitempty"`
	Defaulted []string `json:"defaulted,omitempty"`
}

// Lossless reports whether the conversion preserved everything.
func (f *Fidelity) Lossless() bool {
	return len(f.Dropped) == 0 && len(f.Defaulted) == 0
}

// CapabilitiesFromManifest derives capability descriptors from a typed
// manifest's tool declarations.
func CapabilitiesFromManifest(m *manifest.Manifest) []Capability {
	caps := make([]Capability, 0, len(m.Spec.Tools))
	for _, tool := range m.Spec.Tools {
		name := tool.Name
		if name == "" {
			name = tool.Type
		}
		cap := Capability{
			ID:           capabilityID(m.Metadata.Name, name),
			Name:         name,
			Description:  tool.Description,
			InputSchema:  tool.InputSchema,
			OutputSchema: tool.OutputSchema,
		}
		for _, rid := range tool.Resources {
			cap.Resources = append(cap.Resources, ResourceRef{ID: rid})
		}
		caps = append(caps, cap)
	}
	return caps
}

func capabilityID(agent, name string) string {
	if agent == "" {
		return name
	}
	return agent + "/" + name
}
