package algorithms

import (
	"context"
	"sort"

	"graph_router/internal/graph"
)

// Handler runs one operation on a graph with bound arguments
type Handler func(ctx context.Context, g *graph.Graph, args Args) (any, error)

// Spec is one registry entry
type Spec struct {
	Name    string
	Params  []Param
	Doc     string
	Handler Handler
}

// Signature renders the entry as "name(params...)"
func (s Spec) Signature() string {
	return Signature(s.Name, s.Params)
}

// Registry maps operation names to handlers. It is built once and read-only afterwards.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds a registry from specs; later duplicates win
func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		r.specs[s.Name] = s
	}
	return r
}

// Lookup finds a spec by name
func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Specs returns every entry sorted by name
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Signatures lists every entry as "name(params...)", sorted
func (r *Registry) Signatures() []string {
	specs := r.Specs()
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Signature()
	}
	return out
}
