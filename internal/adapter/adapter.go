package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StableNamePrefix is the first segment of the stable tool name convention
// ossa.{agentId}.{capabilityName}.
const StableNamePrefix = "ossa"

// UnknownAgentID is assigned when a tool name does not follow the stable
// name convention.
const UnknownAgentID = "unknown"

// CapabilityToTool converts a capability into an MCP tool descriptor.
// When agentID is non-empty the tool is named with the stable convention
// ossa.{agentId}.{capabilityName}, which makes ToolToCapability an exact
// inverse for the name; otherwise the kebab-cased capability name is used
// directly. Resource references and hints have no MCP equivalent and are
// reported in the fidelity record.
func CapabilityToTool(cap *Capability, agentID string) (*mcp.Tool, *Fidelity, error) {
	fidelity := &Fidelity{}

	name := KebabCase(cap.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("capability %q has no usable name", cap.Name)
	}
	if agentID != "" {
		name = StableToolName(agentID, name)
	}

	input, err := toSDKSchema(ReconcileSchema(cap.InputSchema))
	if err != nil {
		return nil, nil, fmt.Errorf("capability %s: input schema: %w", cap.Name, err)
	}
	if input == nil {
		// MCP requires an input schema; an empty object is the neutral one.
		input = &jsonschema.Schema{Type: "object"}
		fidelity.Defaulted = append(fidelity.Defaulted, "inputSchema")
	}
	output, err := toSDKSchema(ReconcileSchema(cap.OutputSchema))
	if err != nil {
		return nil, nil, fmt.Errorf("capability %s: output schema: %w", cap.Name, err)
	}

	if len(cap.Resources) > 0 {
		fidelity.Dropped = append(fidelity.Dropped, "resources")
	}
	if cap.Hints != (Hints{}) {
		fidelity.Dropped = append(fidelity.Dropped, "hints")
	}

	return &mcp.Tool{
		Name:         name,
		Description:  cap.Description,
		InputSchema:  input,
		OutputSchema: output,
	}, fidelity, nil
}

// ResourcesToMCP converts resource references into MCP resource
// descriptors. References without a URI get a synthesized ossa:// one.
func ResourcesToMCP(refs []ResourceRef) []*mcp.Resource {
	resources := make([]*mcp.Resource, 0, len(refs))
	for _, ref := range refs {
		uri := ref.URI
		if uri == "" {
			uri = "ossa://" + ref.ID
		}
		description := ref.Description
		if description == "" {
			kind := ref.Kind
			if kind == "" {
				kind = KindDocument
			}
			description = fmt.Sprintf("OSSA %s resource %s", kind, ref.ID)
		}
		resources = append(resources, &mcp.Resource{
			URI:         uri,
			Name:        ref.ID,
			Description: description,
		})
	}
	return resources
}

// ToolToCapability is the best-effort inverse of CapabilityToTool. Tool
// names following the stable convention recover their agent id and
// capability name; anything else becomes the capability name wholesale
// with the agent id defaulted. The forward direction discarded resources
// and hints, so those always come back defaulted.
func ToolToCapability(tool *mcp.Tool) (agentID string, cap *Capability, fidelity *Fidelity, err error) {
	fidelity = &Fidelity{Defaulted: []string{"resources", "hints"}}

	agentID, name, ok := ParseStableToolName(tool.Name)
	if !ok {
		agentID = UnknownAgentID
		name = tool.Name
		fidelity.Defaulted = append(fidelity.Defaulted, "agentId")
	}

	input, err := fromSDKSchema(tool.InputSchema)
	if err != nil {
		return "", nil, nil, fmt.Errorf("tool %s: input schema: %w", tool.Name, err)
	}
	output, err := fromSDKSchema(tool.OutputSchema)
	if err != nil {
		return "", nil, nil, fmt.Errorf("tool %s: output schema: %w", tool.Name, err)
	}

	return agentID, &Capability{
		ID:           agentID + "/" + name,
		Name:         name,
		Description:  tool.Description,
		InputSchema:  input,
		OutputSchema: output,
	}, fidelity, nil
}

// ResourceToRef converts an MCP resource descriptor into an OSSA resource
// reference, inferring the kind from the URI scheme.
func ResourceToRef(res *mcp.Resource) ResourceRef {
	ref := ResourceRef{
		URI:         res.URI,
		Kind:        kindForScheme(uriScheme(res.URI)),
		Description: res.Description,
	}

	switch {
	case res.Name != "":
		ref.ID = res.Name
	case lastPathSegment(res.URI) != "":
		ref.ID = lastPathSegment(res.URI)
	default:
		ref.ID = fmt.Sprintf("resource-%d", time.Now().Unix())
	}
	return ref
}

// StableToolName builds the deterministic dot-delimited tool name.
func StableToolName(agentID, capabilityName string) string {
	return StableNamePrefix + "." + agentID + "." + capabilityName
}

// ParseStableToolName splits a stable tool name into agent id and
// capability name. ok is false when the name does not follow the
// convention (dot-delimited, at least three segments, first segment
// literally "ossa").
func ParseStableToolName(name string) (agentID, capabilityName string, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) < 3 || parts[0] != StableNamePrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], strings.Join(parts[2:], "."), true
}

// KebabCase normalizes a name to the constrained tool-name alphabet:
// lowercase letters, digits, and single interior hyphens.
func KebabCase(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// kindForScheme is the fixed scheme-to-kind table. Unrecognized schemes
// map to document as the safe default.
func kindForScheme(scheme string) string {
	switch scheme {
	case "http", "https":
		return KindEndpoint
	case "file":
		return KindDocument
	case "secret":
		return KindSecret
	case "dataset":
		return KindDataset
	case "collection":
		return KindCollection
	case "ossa":
		return KindDocument
	default:
		return KindDocument
	}
}

func uriScheme(uri string) string {
	if i := strings.Index(uri, "://"); i > 0 {
		return uri[:i]
	}
	if i := strings.Index(uri, ":"); i > 0 {
		return uri[:i]
	}
	return ""
}

func lastPathSegment(uri string) string {
	rest := uri
	if i := strings.Index(uri, "://"); i >= 0 {
		rest = uri[i+3:]
	}
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return ""
	}
	segs := strings.Split(rest, "/")
	if len(segs) < 2 {
		// Only a host (or bare token) remains; that is not a path segment.
		if strings.Contains(uri, "://") {
			return ""
		}
		return segs[0]
	}
	return segs[len(segs)-1]
}
