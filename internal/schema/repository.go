package schema

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/openstandardagents/ossa/internal/manifest"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// ErrSchemaNotFound is returned when no schema is registered for a
// requested version string. Lookups are exact: requesting "0.2" never
// resolves to "0.2.3".
var ErrSchemaNotFound = errors.New("schema not found")

// Repository loads and caches compiled schemas keyed by exact version
// string. A Repository is created once at startup and shared; the cache
// is never invalidated except by an explicit ClearCache, which only tests
// should call.
type Repository struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema

	// overlayDir, when set, is checked before the embedded schemas.
	overlayDir string
}

// NewRepository creates a repository backed by the embedded schemas.
func NewRepository() *Repository {
	return &Repository{compiled: make(map[string]*jsonschema.Schema)}
}

// NewRepositoryWithOverlay creates a repository that prefers schema files
// named ossa-<version>.schema.json in dir over the embedded ones.
func NewRepositoryWithOverlay(dir string) *Repository {
	r := NewRepository()
	r.overlayDir = dir
	return r
}

// Load returns the compiled schema for the given version. The first call
// for a version reads and compiles the schema document; subsequent calls
// are cache hits.
func (r *Repository) Load(version string) (*jsonschema.Schema, error) {
	r.mu.RLock()
	if s, ok := r.compiled[version]; ok {
		r.mu.RUnlock()
		return s, nil
	}
	r.mu.RUnlock()

	data, err := r.read(version)
	if err != nil {
		return nil, err
	}

	compiled, err := compile(version, data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have compiled the same version concurrently;
	// keep the first entry so callers observe a stable schema identity.
	if s, ok := r.compiled[version]; ok {
		return s, nil
	}
	r.compiled[version] = compiled
	return compiled, nil
}

// ClearCache drops all compiled schemas. Intended for tests; must not be
// called concurrently with in-flight validations.
func (r *Repository) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiled = make(map[string]*jsonschema.Schema)
}

// Versions returns all embedded schema versions in ascending semver order.
func Versions() []string {
	return sortVersions(embeddedVersions())
}

// Latest returns the newest embedded schema version.
func Latest() string {
	vs := Versions()
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// Versions returns every version this repository can load, embedded and
// overlay alike, in ascending semver order.
func (r *Repository) Versions() []string {
	seen := make(map[string]bool)
	var versions []string
	for _, v := range embeddedVersions() {
		if !seen[v] {
			seen[v] = true
			versions = append(versions, v)
		}
	}
	if r.overlayDir != "" {
		entries, err := os.ReadDir(r.overlayDir)
		if err == nil {
			for _, e := range entries {
				v, ok := versionFromFileName(e.Name())
				if !ok || seen[v] {
					continue
				}
				seen[v] = true
				versions = append(versions, v)
			}
		}
	}
	return sortVersions(versions)
}

func embeddedVersions() []string {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil
	}
	var versions []string
	for _, e := range entries {
		if v, ok := versionFromFileName(e.Name()); ok {
			versions = append(versions, v)
		}
	}
	return versions
}

func versionFromFileName(name string) (string, bool) {
	if !strings.HasPrefix(name, "ossa-") || !strings.HasSuffix(name, ".schema.json") {
		return "", false
	}
	v := name[len("ossa-") : len(name)-len(".schema.json")]
	if v == "" {
		return "", false
	}
	return v, true
}

func sortVersions(versions []string) []string {
	sort.Slice(versions, func(i, j int) bool {
		cmp, err := manifest.CompareVersions(versions[i], versions[j])
		if err != nil {
			return versions[i] < versions[j]
		}
		return cmp < 0
	})
	return versions
}

func (r *Repository) read(version string) ([]byte, error) {
	name := fmt.Sprintf("ossa-%s.schema.json", version)

	if r.overlayDir != "" {
		data, err := os.ReadFile(filepath.Join(r.overlayDir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading overlay schema for %s: %w", version, err)
		}
	}

	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q", ErrSchemaNotFound, version)
	}
	return data, nil
}

func compile(version string, data []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema for %s: %w", version, err)
	}

	name := fmt.Sprintf("ossa-%s.schema.json", version)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource for %s: %w", version, err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %s: %w", version, err)
	}
	return compiled, nil
}
