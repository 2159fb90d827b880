package migrate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openstandardagents/ossa/internal/manifest"
)

// ErrNoTransformPath is returned when no registered transform bridges the
// requested versions, directly or via chaining.
var ErrNoTransformPath = errors.New("no transform path")

// Transform rewrites a manifest from one schema version to the next. Apply
// must never mutate its input; implementations clone the document and
// return the rewritten copy, stamped with To's version marker.
type Transform struct {
	ID         string
	From       string
	To         string
	Breaking   bool
	Reversible bool
	Summary    string
	Apply      func(manifest.Document) (manifest.Document, error)
}

// Registry holds the directed graph of registered transforms, keyed by
// (from, to). It is populated once at startup and read-only afterward.
type Registry struct {
	edges map[string]map[string]*Transform
}

// NewRegistry creates an empty transform registry.
func NewRegistry() *Registry {
	return &Registry{edges: make(map[string]map[string]*Transform)}
}

// Register adds a transform. At most one transform may exist per ordered
// version pair; a second registration for the same pair is an error.
func (r *Registry) Register(t *Transform) error {
	if t.From == "" || t.To == "" || t.Apply == nil {
		return fmt.Errorf("transform %q: from, to, and apply are required", t.ID)
	}
	if _, ok := r.edges[t.From][t.To]; ok {
		return fmt.Errorf("transform %s -> %s is already registered", t.From, t.To)
	}
	if r.edges[t.From] == nil {
		r.edges[t.From] = make(map[string]*Transform)
	}
	r.edges[t.From][t.To] = t
	return nil
}

// Get returns the direct transform for an exact version pair, if any.
func (r *Registry) Get(from, to string) (*Transform, bool) {
	t, ok := r.edges[from][to]
	return t, ok
}

// All returns every registered transform, ordered by source then target
// version.
func (r *Registry) All() []*Transform {
	var all []*Transform
	for _, targets := range r.edges {
		for _, t := range targets {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].From != all[j].From {
			return versionLess(all[i].From, all[j].From)
		}
		return versionLess(all[i].To, all[j].To)
	})
	return all
}

// FindPath returns the version sequence, endpoints included, bridging
// from and to. An explicitly registered direct transform always wins over
// a derived chain; otherwise the fewest-hop path is chosen by BFS, with
// ties broken in favor of non-breaking transforms.
func (r *Registry) FindPath(from, to string) ([]string, error) {
	if from == to {
		return nil, nil
	}

	// Direct transforms are curated and tested; prefer them even when a
	// shorter derived path exists.
	if _, ok := r.Get(from, to); ok {
		return []string{from, to}, nil
	}

	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range r.neighbors(cur) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				return rebuild(prev, from, to), nil
			}
			queue = append(queue, next)
		}
	}

	return nil, fmt.Errorf("%w: from %s to %s", ErrNoTransformPath, from, to)
}

// neighbors returns the targets reachable from a version in deterministic
// order: non-breaking edges first, then by target version. BFS visits
// nodes in this order, so equal-length paths resolve to the one built
// from non-breaking hops.
func (r *Registry) neighbors(from string) []string {
	targets := r.edges[from]
	out := make([]string, 0, len(targets))
	for to := range targets {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := targets[out[i]], targets[out[j]]
		if ti.Breaking != tj.Breaking {
			return !ti.Breaking
		}
		return versionLess(out[i], out[j])
	})
	return out
}

func rebuild(prev map[string]string, from, to string) []string {
	var path []string
	for v := to; v != ""; v = prev[v] {
		path = append(path, v)
		if v == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func versionLess(a, b string) bool {
	cmp, err := manifest.CompareVersions(a, b)
	if err != nil {
		return a < b
	}
	return cmp < 0
}
