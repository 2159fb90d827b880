package migrate

import (
	"fmt"

	"github.com/openstandardagents/ossa/internal/manifest"
)

// DefaultRegistry returns the registry of built-in transforms covering the
// published OSSA schema versions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range builtinTransforms() {
		if err := r.Register(t); err != nil {
			// Built-in edges are defined once in this file; a duplicate
			// is a programming error, not a runtime condition.
			panic(err)
		}
	}
	return r
}

func builtinTransforms() []*Transform {
	return []*Transform{
		{
			ID:       "legacy-lift",
			From:     "0.2.0",
			To:       "0.2.3",
			Breaking: true,
			Summary:  "lifts the legacy top-level agent object into metadata/spec and replaces ossaVersion with apiVersion",
			Apply:    liftLegacyAgent,
		},
		{
			ID:       "llm-temperature",
			From:     "0.2.3",
			To:       "0.3.0",
			Breaking: true,
			Summary:  "moves spec.temperature under spec.llm and defaults metadata.version to 1.0.0",
			Apply:    moveTemperatureUnderLLM,
		},
		{
			ID:         "autonomy-block",
			From:       "0.3.0",
			To:         "0.3.3",
			Breaking:   false,
			Reversible: true,
			Summary:    "moves spec.approvalRequired into the new spec.autonomy block",
			Apply:      introduceAutonomyBlock,
		},
		{
			ID:      "tool-names",
			From:    "0.3.3",
			To:      "0.3.5",
			Summary: "synthesizes names for tools that declare only a type",
			Apply:   synthesizeToolNames,
		},
		{
			// Curated shortcut covering both 0.2.3->0.3.0 and
			// 0.3.0->0.3.3 without dropping spec.temperature when no
			// llm block exists.
			ID:      "consolidated-0.2.3-0.3.3",
			From:    "0.2.3",
			To:      "0.3.3",
			Summary: "applies the 0.3.x metadata and autonomy changes in one step, preserving spec.temperature",
			Apply:   consolidated023To033,
		},
	}
}

// liftLegacyAgent converts the legacy shape (ossaVersion + agent object)
// into the modern one.
func liftLegacyAgent(doc manifest.Document) (manifest.Document, error) {
	// Lift from the cloned document, not the input, so composite values
	// such as the tools list never stay shared with caller state.
	out := doc.WithVersion("0.2.3")
	agent, ok := out["agent"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("legacy manifest has no agent object")
	}
	delete(out, "agent")
	out["kind"] = string(manifest.KindAgent)

	meta := map[string]any{}
	if name, ok := agent["name"]; ok {
		meta["name"] = name
	}
	if desc, ok := agent["description"]; ok {
		meta["description"] = desc
	}
	out["metadata"] = meta

	spec := map[string]any{}
	if role, ok := agent["role"]; ok {
		spec["role"] = role
	} else {
		spec["role"] = "assistant"
	}
	provider, hasProvider := agent["provider"]
	model, hasModel := agent["model"]
	if hasProvider && hasModel {
		spec["llm"] = map[string]any{"provider": provider, "model": model}
	}
	if temp, ok := agent["temperature"]; ok {
		spec["temperature"] = temp
	}
	if tools, ok := agent["tools"]; ok {
		spec["tools"] = tools
	}
	out["spec"] = spec

	return out, nil
}

// moveTemperatureUnderLLM applies the 0.3.0 schema changes. A top-level
// spec.temperature with no llm block to move it into is dropped; the
// migration validator reports the drop to the caller.
func moveTemperatureUnderLLM(doc manifest.Document) (manifest.Document, error) {
	out := doc.WithVersion("0.3.0")
	defaultMetadataVersion(out)

	spec, _ := out["spec"].(map[string]any)
	if spec == nil {
		return out, nil
	}
	temp, ok := spec["temperature"]
	if !ok {
		return out, nil
	}
	delete(spec, "temperature")
	if llm, ok := spec["llm"].(map[string]any); ok {
		if _, set := llm["temperature"]; !set {
			llm["temperature"] = temp
		}
	}
	return out, nil
}

// introduceAutonomyBlock moves spec.approvalRequired into spec.autonomy.
func introduceAutonomyBlock(doc manifest.Document) (manifest.Document, error) {
	out := doc.WithVersion("0.3.3")
	moveApprovalRequired(out)
	return out, nil
}

// synthesizeToolNames gives every tool entry a name, required from 0.3.5.
func synthesizeToolNames(doc manifest.Document) (manifest.Document, error) {
	out := doc.WithVersion("0.3.5")
	spec, _ := out["spec"].(map[string]any)
	if spec == nil {
		return out, nil
	}
	tools, _ := spec["tools"].([]any)
	for i, raw := range tools {
		tool, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := tool["name"].(string); ok && name != "" {
			continue
		}
		kind, _ := tool["type"].(string)
		if kind == "" {
			kind = "tool"
		}
		tool["name"] = fmt.Sprintf("%s-%d", kind, i)
	}
	return out, nil
}

// consolidated023To033 is the curated direct edge from 0.2.3 to 0.3.3.
// Unlike the chained route it keeps a top-level spec.temperature when
// there is no llm block to absorb it (0.3.3 tolerates the extra field).
func consolidated023To033(doc manifest.Document) (manifest.Document, error) {
	out := doc.WithVersion("0.3.3")
	defaultMetadataVersion(out)

	spec, _ := out["spec"].(map[string]any)
	if spec != nil {
		if temp, ok := spec["temperature"]; ok {
			if llm, ok := spec["llm"].(map[string]any); ok {
				if _, set := llm["temperature"]; !set {
					llm["temperature"] = temp
				}
				delete(spec, "temperature")
			}
		}
	}
	moveApprovalRequired(out)
	return out, nil
}

func defaultMetadataVersion(doc manifest.Document) {
	meta, _ := doc["metadata"].(map[string]any)
	if meta == nil {
		return
	}
	if _, ok := meta["version"].(string); !ok {
		meta["version"] = "1.0.0"
	}
}

func moveApprovalRequired(doc manifest.Document) {
	spec, _ := doc["spec"].(map[string]any)
	if spec == nil {
		return
	}
	approval, ok := spec["approvalRequired"]
	if !ok {
		return
	}
	delete(spec, "approvalRequired")
	autonomy, _ := spec["autonomy"].(map[string]any)
	if autonomy == nil {
		autonomy = map[string]any{}
		spec["autonomy"] = autonomy
	}
	if _, set := autonomy["approvalRequired"]; !set {
		autonomy["approvalRequired"] = approval
	}
}
