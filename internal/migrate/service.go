package migrate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/openstandardagents/ossa/internal/manifest"
	"github.com/openstandardagents/ossa/internal/validate"
)

// Service applies registered transforms and chains them across version
// boundaries, re-validating the intermediate result at every hop.
type Service struct {
	registry  *Registry
	validator *validate.Service
}

// NewService creates a migration service over the given registry.
func NewService(registry *Registry, validator *validate.Service) *Service {
	return &Service{registry: registry, validator: validator}
}

// GetTransform returns the direct transform for an exact version pair.
func (s *Service) GetTransform(from, to string) (*Transform, bool) {
	return s.registry.Get(from, to)
}

// AllTransforms returns every registered transform.
func (s *Service) AllTransforms() []*Transform {
	return s.registry.All()
}

// FindPath returns the version sequence bridging from and to, endpoints
// included, or ErrNoTransformPath.
func (s *Service) FindPath(from, to string) ([]string, error) {
	return s.registry.FindPath(from, to)
}

// ApplyTransform applies the direct transform for the exact (from, to)
// pair. It does not chain; use Run for multi-hop migrations.
func (s *Service) ApplyTransform(doc manifest.Document, from, to string) (manifest.Document, error) {
	t, ok := s.registry.Get(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: no direct transform from %s to %s", ErrNoTransformPath, from, to)
	}
	out, err := t.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("transform %s (%s -> %s): %w", t.ID, from, to, err)
	}
	return out, nil
}

// Outcome reports a completed multi-hop migration.
type Outcome struct {
	Manifest manifest.Document
	Path     []string // version hops, endpoints included
	Warnings []string // potential data loss detected against the original
}

// Run migrates a manifest from one version to another, chaining transforms
// along the resolved path. Every intermediate result is validated against
// its hop's target schema; a mid-chain failure aborts the whole migration
// and no partial result is returned. The input document is never mutated.
func (s *Service) Run(doc manifest.Document, from, to string) (*Outcome, error) {
	path, err := s.registry.FindPath(from, to)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return &Outcome{Manifest: doc, Path: nil}, nil
	}

	current := doc
	for i := 0; i+1 < len(path); i++ {
		hopFrom, hopTo := path[i], path[i+1]
		next, err := s.ApplyTransform(current, hopFrom, hopTo)
		if err != nil {
			return nil, err
		}

		result, err := s.validator.Validate(next, hopTo)
		if err != nil {
			return nil, fmt.Errorf("validating result of %s -> %s: %w", hopFrom, hopTo, err)
		}
		if !result.Valid {
			return nil, fmt.Errorf("migration aborted: result of %s -> %s does not conform to schema %s: %s",
				hopFrom, hopTo, hopTo, firstIssue(result))
		}
		current = next
	}

	return &Outcome{
		Manifest: current,
		Path:     path,
		Warnings: ValidateMigration(doc, current),
	}, nil
}

// ValidateMigration compares a manifest before and after migration and
// reports fields that carried a non-null value in the original but are
// absent afterward, which is potential silent data loss. Version markers are
// expected to change and are not reported.
func ValidateMigration(original, migrated manifest.Document) []string {
	var warnings []string
	compareFields("", map[string]any(original), map[string]any(migrated), &warnings)
	sort.Strings(warnings)
	return warnings
}

var markerFields = map[string]bool{"apiVersion": true, "ossaVersion": true}

func compareFields(prefix string, original, migrated map[string]any, warnings *[]string) {
	for key, val := range original {
		if val == nil {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if prefix == "" && markerFields[key] {
			continue
		}

		after, present := migrated[key]
		if !present {
			*warnings = append(*warnings, fmt.Sprintf("field %s was dropped during migration", path))
			continue
		}
		origMap, ok1 := val.(map[string]any)
		afterMap, ok2 := after.(map[string]any)
		if ok1 && ok2 {
			compareFields(path, origMap, afterMap, warnings)
		}
	}
}

// TransformSummary describes, hop by hop, what a migration between the two
// versions will change, or explains why none is possible.
func (s *Service) TransformSummary(from, to string) []string {
	if from == to {
		return []string{fmt.Sprintf("manifest is already at version %s; nothing to do", from)}
	}
	path, err := s.registry.FindPath(from, to)
	if err != nil {
		if errors.Is(err, ErrNoTransformPath) {
			return []string{fmt.Sprintf("no transform path exists from %s to %s", from, to)}
		}
		return []string{err.Error()}
	}

	lines := make([]string, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		t, _ := s.registry.Get(path[i], path[i+1])
		if t == nil {
			continue
		}
		var marks []string
		if t.Breaking {
			marks = append(marks, "breaking")
		}
		if t.Reversible {
			marks = append(marks, "reversible")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " (" + strings.Join(marks, ", ") + ")"
		}
		lines = append(lines, fmt.Sprintf("%s -> %s: %s%s", t.From, t.To, t.Summary, suffix))
	}
	return lines
}

func firstIssue(r *validate.Result) string {
	if len(r.Errors) == 0 {
		return "schema validation failed"
	}
	issue := r.Errors[0]
	if issue.Path != "" {
		return issue.Path + ": " + issue.Message
	}
	return issue.Message
}
