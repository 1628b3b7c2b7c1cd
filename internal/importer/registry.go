package importer

import (
	"fmt"
	"path"

	"github.com/Faultbox/wowobj/pkg/formats"
	"github.com/Faultbox/wowobj/pkg/scene"
)

// RegistryKey returns the registry key of a geometry file: its normalized
// base name.
func RegistryKey(file string) string {
	return formats.NormalizeName(path.Base(file))
}

// Registry remembers the first node materialized for each file so later
// references can be served as clones.
type Registry struct {
	entries map[string]*scene.Node
	names   map[string]int // Base name -> next instance suffix
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*scene.Node),
		names:   make(map[string]int),
	}
}

// Has reports whether name has been materialized.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Lookup returns the node first materialized for name.
func (r *Registry) Lookup(name string) (*scene.Node, bool) {
	n, ok := r.entries[name]
	return n, ok
}

// Register records node as the materialization of name. The first
// registration wins; Register reports whether node was recorded.
func (r *Registry) Register(name string, node *scene.Node) bool {
	if _, ok := r.entries[name]; ok {
		return false
	}
	r.entries[name] = node
	return true
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Materialize returns a clone of the registered node for name, or runs
// factory and registers its result. The bool result reports a clone.
func (r *Registry) Materialize(name string, deep bool, factory func() (*scene.Node, error)) (*scene.Node, bool, error) {
	if orig, ok := r.entries[name]; ok {
		return r.Clone(orig, deep), true, nil
	}

	node, err := factory()
	if err != nil {
		return nil, false, err
	}
	r.Register(name, node)
	return node, false, nil
}

// Clone copies a node under a fresh instance name.
func (r *Registry) Clone(orig *scene.Node, deep bool) *scene.Node {
	base := orig.Name
	if orig.Source != "" {
		base = path.Base(orig.Source)
	}
	return orig.Clone(r.UniqueName(base), deep)
}

// UniqueName returns base the first time it is asked for, then base.001,
// base.002 and so on.
func (r *Registry) UniqueName(base string) string {
	n := r.names[base]
	r.names[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s.%03d", base, n)
}
