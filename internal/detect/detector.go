package detect

import (
	"fmt"

	"github.com/openstandardagents/ossa/internal/manifest"
	"github.com/openstandardagents/ossa/internal/validate"
)

// Confidence grades how trustworthy a detection result is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Source names the detection step that produced the result.
type Source string

const (
	SourceAPIVersion  Source = "apiVersion"
	SourceLegacyField Source = "legacy-field"
	SourceSchemaProbe Source = "schema-probe"
	SourceUnknown     Source = "unknown"
)

// VersionUnknown is reported when no detection step was conclusive.
const VersionUnknown = "unknown"

// Result is the outcome of version detection.
type Result struct {
	Version    string
	Confidence Confidence
	Source     Source
	Warnings   []string
}

// PathFinder resolves a sequence of schema versions bridging two
// endpoints. It is satisfied by the migration transform service.
type PathFinder interface {
	FindPath(from, to string) ([]string, error)
}

// Service detects manifest versions, using the validation service as a
// probing oracle and delegating path questions to the transform registry.
type Service struct {
	validator *validate.Service
	paths     PathFinder
}

// NewService creates a detection service. paths may be nil if
// MigrationPath is never called.
func NewService(validator *validate.Service, paths PathFinder) *Service {
	return &Service{validator: validator, paths: paths}
}

// DetectVersion inspects a document and infers its schema version. Each
// step returns only if conclusive; a malformed apiVersion produces a
// warning and falls through to the weaker heuristics rather than failing.
func (s *Service) DetectVersion(doc manifest.Document) Result {
	var warnings []string

	if raw, ok := doc.APIVersion(); ok {
		if _, version, ok := manifest.ParseAPIVersion(raw); ok {
			return Result{
				Version:    version,
				Confidence: ConfidenceHigh,
				Source:     SourceAPIVersion,
			}
		}
		warnings = append(warnings, fmt.Sprintf("apiVersion %q is malformed (expected <namespace>/v<version>); falling back to heuristics", raw))
	}

	if version, ok := doc.LegacyVersion(); ok {
		warnings = append(warnings, "ossaVersion is deprecated; migrate to an apiVersion manifest")
		return Result{
			Version:    version,
			Confidence: ConfidenceMedium,
			Source:     SourceLegacyField,
			Warnings:   warnings,
		}
	}

	// Probe every loadable schema, overlay versions included, newest
	// first, and accept the first that validates structurally.
	versions := s.validator.SchemaVersions()
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		r, err := s.validator.Validate(doc, v)
		if err != nil || !r.Valid {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("version %s inferred by schema probing; add an explicit apiVersion", v))
		return Result{
			Version:    v,
			Confidence: ConfidenceLow,
			Source:     SourceSchemaProbe,
			Warnings:   warnings,
		}
	}

	warnings = append(warnings, "document carries no recognizable version marker")
	return Result{
		Version:    VersionUnknown,
		Confidence: ConfidenceLow,
		Source:     SourceUnknown,
		Warnings:   warnings,
	}
}

// NeedsMigration reports whether a manifest at current must be migrated to
// reach target. An unknown current version always needs migration; a
// current version ahead of target does not (downgrade is unsupported, not
// an error).
func (s *Service) NeedsMigration(current, target string) bool {
	if current == VersionUnknown || current == "" {
		return true
	}
	cmp, err := manifest.CompareVersions(current, target)
	if err != nil {
		return true
	}
	return cmp < 0
}

// MigrationPath returns the version hops bridging current and target. It
// is empty both when no migration is needed and when target is behind
// current; callers that care about the distinction check NeedsMigration
// first.
func (s *Service) MigrationPath(current, target string) ([]string, error) {
	if current != VersionUnknown && current != "" {
		if cmp, err := manifest.CompareVersions(current, target); err == nil && cmp >= 0 {
			return nil, nil
		}
	}
	return s.paths.FindPath(current, target)
}
