package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Supported server transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// ServerConfig describes an MCP server exposing an agent's converted
// capabilities.
type ServerConfig struct {
	ServerID       string             `json:"serverId"`
	Implementation mcp.Implementation `json:"implementation"`
	Transport      string             `json:"transport"`
	Tools          []*mcp.Tool        `json:"tools"`
	Resources      []*mcp.Resource    `json:"resources,omitempty"`
}

// BuildServerConfig derives a server configuration with a stable identity:
// the id is the agent id plus the first 8 hex characters of the SHA-256 of
// the canonical JSON of the tool and resource sets. Rebuilding against
// unchanged sets yields the same id; any content change produces a new one.
func BuildServerConfig(agentID string, tools []*mcp.Tool, resources []*mcp.Resource, transport string) (*ServerConfig, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if transport == "" {
		transport = TransportStdio
	}

	digest, err := contentDigest(tools, resources)
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		ServerID: agentID + "-" + digest,
		Implementation: mcp.Implementation{
			Name:    agentID,
			Version: "1.0.0",
		},
		Transport: transport,
		Tools:     tools,
		Resources: resources,
	}, nil
}

func contentDigest(tools []*mcp.Tool, resources []*mcp.Resource) (string, error) {
	payload := struct {
		Tools     []*mcp.Tool     `json:"tools"`
		Resources []*mcp.Resource `json:"resources"`
	}{tools, resources}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("hashing server content: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:8], nil
}

// CompatibilityReport is the outcome of the pre-flight tool check. It is
// advisory: callers decide whether to proceed when Compatible is false.
type CompatibilityReport struct {
	Compatible bool
	Issues     []string
}

// ValidateToolCompatibility runs a permissive structural check over an
// MCP tool descriptor: presence of name and input schema, and
// object-shaped schemas. Schemas are normalized first, since a tool
// built in process carries typed schemas while one decoded from a
// server-config file carries plain maps. It is not full meta-schema
// validation.
func ValidateToolCompatibility(tool *mcp.Tool) CompatibilityReport {
	var issues []string

	if tool.Name == "" {
		issues = append(issues, "tool has no name")
	}

	input, err := fromSDKSchema(tool.InputSchema)
	switch {
	case err != nil:
		issues = append(issues, fmt.Sprintf("inputSchema is not decodable: %v", err))
	case input == nil:
		issues = append(issues, "tool has no inputSchema")
	default:
		if err := checkSchemaShape("inputSchema", input); err != nil {
			issues = append(issues, err.Error())
		}
	}

	output, err := fromSDKSchema(tool.OutputSchema)
	if err != nil {
		issues = append(issues, fmt.Sprintf("outputSchema is not decodable: %v", err))
	} else if output != nil {
		if err := checkSchemaShape("outputSchema", output); err != nil {
			issues = append(issues, err.Error())
		}
	}

	return CompatibilityReport{Compatible: len(issues) == 0, Issues: issues}
}

func checkSchemaShape(field string, schema map[string]any) error {
	schemaType, _ := schema["type"].(string)
	_, hasProperties := schema["properties"].(map[string]any)
	if schemaType == "" && !hasProperties {
		return fmt.Errorf("%s does not look like a JSON Schema object (no type or properties)", field)
	}
	if schemaType != "" && schemaType != "object" {
		return fmt.Errorf("%s must describe an object, got type %q", field, schemaType)
	}
	return nil
}
