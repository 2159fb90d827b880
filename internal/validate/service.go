package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/openstandardagents/ossa/internal/manifest"
	"github.com/openstandardagents/ossa/internal/schema"
)

var printer = message.NewPrinter(language.English)

// Issue is a single structural violation reported by schema validation.
type Issue struct {
	Path    string // instance location, e.g. "/spec/tools/0/type"
	Message string
	Keyword string // schema keyword that failed
}

// Result is the outcome of validating one manifest.
type Result struct {
	Valid    bool
	Version  string // schema version the manifest was checked against
	Errors   []Issue
	Warnings []string
	Manifest manifest.Document
}

// BatchItem pairs a per-manifest result with any fatal error (such as a
// missing schema) that prevented validation of that item.
type BatchItem struct {
	Result *Result
	Err    error
}

// Service validates manifests against versioned schemas.
type Service struct {
	repo *schema.Repository
}

// NewService creates a validation service backed by the given repository.
func NewService(repo *schema.Repository) *Service {
	return &Service{repo: repo}
}

// SchemaVersions lists every version the backing repository can load,
// including overlay schemas, in ascending semver order.
func (s *Service) SchemaVersions() []string {
	return s.repo.Versions()
}

// Validate checks a manifest against the schema for version. When version
// is empty the manifest's own version marker is used as given; detection
// heuristics are deliberately not applied here (that is the version
// detector's job, and it calls this service, not the other way around).
// The error return is for configuration problems such as a missing schema
// or version marker; structural violations come back in the Result.
func (s *Service) Validate(doc manifest.Document, version string) (*Result, error) {
	if version == "" {
		v, err := markerVersion(doc)
		if err != nil {
			return nil, err
		}
		version = v
	}

	compiled, err := s.repo.Load(version)
	if err != nil {
		return nil, err
	}

	inst, err := toInstance(doc)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Valid:    true,
		Version:  version,
		Manifest: doc,
	}
	if err := compiled.Validate(inst); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("unexpected validation error type: %w", err)
		}
		result.Valid = false
		result.Errors = extractIssues(ve)
	}

	// Best-practice checks are advisory only; they never flip Valid.
	result.Warnings = bestPracticeWarnings(doc)
	return result, nil
}

// ValidateMany validates each manifest independently. One item's failure,
// structural or fatal, never aborts the rest of the batch.
func (s *Service) ValidateMany(docs []manifest.Document, version string) []BatchItem {
	items := make([]BatchItem, len(docs))
	for i, doc := range docs {
		r, err := s.Validate(doc, version)
		items[i] = BatchItem{Result: r, Err: err}
	}
	return items
}

// markerVersion extracts the schema version from the document's own
// version marker.
func markerVersion(doc manifest.Document) (string, error) {
	if raw, ok := doc.APIVersion(); ok {
		_, v, ok := manifest.ParseAPIVersion(raw)
		if !ok {
			return "", fmt.Errorf("malformed apiVersion %q: expected <namespace>/v<version>", raw)
		}
		return v, nil
	}
	if v, ok := doc.LegacyVersion(); ok {
		return v, nil
	}
	return "", fmt.Errorf("manifest carries no version marker; pass an explicit version")
}

// toInstance converts a Document into the representation the schema
// validator expects (json.Number for numerics).
func toInstance(doc manifest.Document) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest for validation: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("preparing manifest for validation: %w", err)
	}
	return inst, nil
}

// extractIssues walks the ValidationError tree and returns leaf-level
// issues. Container keywords (oneOf, allOf, $ref) produce overlapping
// noise, so only specific property-level failures are kept.
func extractIssues(ve *jsonschema.ValidationError) []Issue {
	var issues []Issue
	collectIssues(ve, &issues)

	if len(issues) == 0 {
		return []Issue{{Message: ve.Error()}}
	}
	return deduplicateIssues(issues)
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) == 0 {
		path := ""
		if len(ve.InstanceLocation) > 0 {
			path = "/"
			for i, seg := range ve.InstanceLocation {
				if i > 0 {
					path += "/"
				}
				path += seg
			}
		}

		keyword := ""
		if ve.ErrorKind != nil {
			kwPath := ve.ErrorKind.KeywordPath()
			if len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
		}

		msg := ""
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, Issue{Path: path, Message: msg, Keyword: keyword})
		return
	}

	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}

func deduplicateIssues(issues []Issue) []Issue {
	seen := make(map[string]bool)
	var result []Issue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}

// bestPracticeWarnings runs the fixed set of advisory checks. The set is
// closed: there is no registration mechanism for additional rules.
func bestPracticeWarnings(doc manifest.Document) []string {
	var warnings []string

	if doc.IsLegacy() {
		warnings = append(warnings, "manifest uses the legacy ossaVersion shape; migrate to an apiVersion manifest")
		return warnings
	}

	meta := doc.Metadata()
	if meta != nil {
		if _, ok := meta["description"].(string); !ok {
			warnings = append(warnings, "metadata.description is missing; add a human-readable description")
		}
		if _, ok := meta["version"].(string); !ok {
			warnings = append(warnings, "metadata.version is missing; declare the manifest's own version")
		}
	}

	spec := doc.Spec()
	if spec != nil {
		if _, ok := spec["llm"].(map[string]any); !ok {
			warnings = append(warnings, "spec.llm is not declared; runtimes cannot select a model")
		}
		if kind, _ := doc["kind"].(string); kind == string(manifest.KindAgent) {
			tools, _ := spec["tools"].([]any)
			if len(tools) == 0 {
				warnings = append(warnings, "agent declares no tools or capabilities")
			}
		}
	}

	return warnings
}
