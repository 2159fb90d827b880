package manifest

// Manifest is the typed view of a modern OSSA manifest. The migration
// engine works on untyped Documents; this view backs the MCP adapter and
// manifest scaffolding, where field access matters more than preserving
// unknown keys.
type Manifest struct {
	APIVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata" yaml:"metadata"`
	Spec       Spec     `json:"spec" yaml:"spec"`
}

// Kind identifies the manifest's primary entity.
type Kind string

const (
	KindAgent    Kind = "Agent"
	KindTask     Kind = "Task"
	KindWorkflow Kind = "Workflow"
)

// Metadata carries identifying and descriptive fields.
type Metadata struct {
	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version,omitempty" yaml:"version,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Spec is the agent specification.
type Spec struct {
	Role     string       `json:"role" yaml:"role"`
	LLM      *LLMConfig   `json:"llm,omitempty" yaml:"llm,omitempty"`
	Tools    []ToolConfig `json:"tools,omitempty" yaml:"tools,omitempty"`
	Autonomy *Autonomy    `json:"autonomy,omitempty" yaml:"autonomy,omitempty"`
}

// LLMConfig selects and tunes the language model.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
}

// ToolConfig declares a tool or capability the agent may invoke.
type ToolConfig struct {
	Type         string         `json:"type" yaml:"type"`
	Name         string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema  map[string]any `json:"inputSchema,omitempty" yaml:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty" yaml:"outputSchema,omitempty"`
	Resources    []string       `json:"resources,omitempty" yaml:"resources,omitempty"`
	Config       map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Autonomy constrains what the agent may do without approval.
type Autonomy struct {
	Level            string   `json:"level,omitempty" yaml:"level,omitempty"`
	ApprovalRequired bool     `json:"approvalRequired,omitempty" yaml:"approvalRequired,omitempty"`
	AllowedActions   []string `json:"allowedActions,omitempty" yaml:"allowedActions,omitempty"`
}

// CurrentVersion is the schema version stamped on newly created manifests.
const CurrentVersion = "0.3.5"

// New creates a minimal manifest at the current schema version.
func New(name string, kind Kind) *Manifest {
	return &Manifest{
		APIVersion: Namespace + "/v" + CurrentVersion,
		Kind:       kind,
		Metadata:   Metadata{Name: name},
		Spec:       Spec{Role: "assistant"},
	}
}
