package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/openstandardagents/ossa/internal/adapter"
	"github.com/openstandardagents/ossa/internal/config"
	"github.com/openstandardagents/ossa/internal/manifest"
)

var (
	mcpAgentID   string
	mcpTransport string
)

func init() {
	toMCPCmd.Flags().StringVar(&mcpAgentID, "agent-id", "", "Agent id for stable tool names (default: metadata.name)")
	toMCPCmd.Flags().StringVar(&mcpTransport, "transport", "", "Server transport (stdio or http)")
	mcpCmd.AddCommand(toMCPCmd)
	mcpCmd.AddCommand(fromMCPCmd)
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Convert between OSSA capabilities and MCP tools",
}

var toMCPCmd = &cobra.Command{
	Use:   "to-mcp <manifest>",
	Short: "Convert a manifest's capabilities into an MCP server config",
	Long: `Derive capability descriptors from a manifest's tool declarations,
convert them into MCP tool and resource descriptors, and print a server
configuration with a content-stable server id. Fields the MCP model
cannot carry (resource bindings, execution hints) are reported on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		typed, err := manifest.Decode(doc)
		if err != nil {
			return err
		}

		agentID := mcpAgentID
		if agentID == "" {
			agentID = typed.Metadata.Name
		}
		if agentID == "" {
			return fmt.Errorf("manifest has no metadata.name; pass --agent-id")
		}

		caps := adapter.CapabilitiesFromManifest(typed)
		if len(caps) == 0 {
			return fmt.Errorf("manifest %s declares no tools or capabilities", args[0])
		}

		var tools []*mcp.Tool
		var refs []adapter.ResourceRef
		for i := range caps {
			tool, fidelity, err := adapter.CapabilityToTool(&caps[i], agentID)
			if err != nil {
				return err
			}
			if !fidelity.Lossless() {
				reportFidelity(caps[i].Name, fidelity)
			}
			tools = append(tools, tool)
			refs = append(refs, caps[i].Resources...)
		}

		transport := mcpTransport
		if transport == "" {
			transport = config.Get(config.KeyMCPTransport)
		}
		cfg, err := adapter.BuildServerConfig(agentID, tools, adapter.ResourcesToMCP(refs), transport)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling server config: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

var fromMCPCmd = &cobra.Command{
	Use:   "from-mcp <server-config.json>",
	Short: "Convert an MCP server config back into OSSA capabilities",
	Long: `Read an MCP server configuration and recover OSSA capability and
resource descriptors. This is a best-effort inverse: tool names following
the ossa.{agentId}.{capability} convention recover their agent id; other
names are taken wholesale with the agent id defaulted to "unknown".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading server config %s: %w", args[0], err)
		}
		var cfg adapter.ServerConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing server config %s: %w", args[0], err)
		}

		type recovered struct {
			AgentID      string                `json:"agentId"`
			Capabilities []adapter.Capability  `json:"capabilities"`
			Resources    []adapter.ResourceRef `json:"resources,omitempty"`
			Fidelity     []adapter.Fidelity    `json:"fidelity"`
		}
		var out recovered

		for _, tool := range cfg.Tools {
			if report := adapter.ValidateToolCompatibility(tool); !report.Compatible {
				for _, issue := range report.Issues {
					fmt.Fprintf(os.Stderr, "warning: tool %s: %s\n", tool.Name, issue)
				}
			}
			agentID, cap, fidelity, err := adapter.ToolToCapability(tool)
			if err != nil {
				return err
			}
			if out.AgentID == "" || out.AgentID == adapter.UnknownAgentID {
				out.AgentID = agentID
			}
			out.Capabilities = append(out.Capabilities, *cap)
			out.Fidelity = append(out.Fidelity, *fidelity)
		}
		for _, res := range cfg.Resources {
			out.Resources = append(out.Resources, adapter.ResourceToRef(res))
		}

		data, err = json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling capabilities: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve <manifest>",
	Short: "Expose a manifest's capabilities as a stdio MCP server",
	Long: `Register the manifest's converted tools on an MCP server speaking
stdio. The server advertises descriptors only; OSSA does not execute
agents, so tool calls are answered with a pointer to the agent runtime.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		typed, err := manifest.Decode(doc)
		if err != nil {
			return err
		}
		agentID := typed.Metadata.Name
		if agentID == "" {
			return fmt.Errorf("manifest has no metadata.name")
		}

		srv := mcp.NewServer(&mcp.Implementation{
			Name:    agentID,
			Version: buildVersion,
		}, nil)

		caps := adapter.CapabilitiesFromManifest(typed)
		for i := range caps {
			tool, _, err := adapter.CapabilityToTool(&caps[i], agentID)
			if err != nil {
				return err
			}
			srv.AddTool(tool, descriptorOnlyHandler(tool.Name))
		}

		return srv.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

// descriptorOnlyHandler answers tool calls with an explanation instead of
// executing anything; execution belongs to the agent runtime.
func descriptorOnlyHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{
				Text: fmt.Sprintf("tool %s is a descriptor only; invoke it through the agent runtime", name),
			}},
			IsError: true,
		}, nil
	}
}

func reportFidelity(name string, f *adapter.Fidelity) {
	var parts []string
	if len(f.Dropped) > 0 {
		parts = append(parts, "dropped "+strings.Join(f.Dropped, ", "))
	}
	if len(f.Defaulted) > 0 {
		parts = append(parts, "defaulted "+strings.Join(f.Defaulted, ", "))
	}
	fmt.Fprintf(os.Stderr, "warning: capability %s: %s\n", name, strings.Join(parts, "; "))
}
