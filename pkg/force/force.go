// Package force implements the forces that drive the layout simulation and
// the ordered registry the engine applies them from.
//
// Every force reads node positions and velocities from a [graph.Graph] and
// adds to the velocities (the center force shifts positions directly). The
// engine integrates velocities into positions after all forces have run.
//
// The default set, built by [NewDefaultRegistry], mirrors a classic d3
// network diagram:
//
//	link     springs along links toward Config.LinkDistance
//	charge   Barnes–Hut many-body repulsion
//	collide  keeps node circles from overlapping
//	center   keeps the centroid in the middle of the canvas
package force

import (
	"slices"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Default registry names.
const (
	NameLink    = "link"
	NameCharge  = "charge"
	NameCollide = "collide"
	NameCenter  = "center"
)

// Force is a single contribution to node velocities.
//
// Initialize binds the force to a graph and precomputes per-node and per-link
// parameters; it is called again whenever the force is registered on an
// initialized registry. rnd returns uniform values in [0, 1) and is used to
// break ties between coincident points deterministically.
type Force interface {
	Initialize(g *graph.Graph, rnd func() float64)
	Apply(alpha float64)
}

// Registry is a named, ordered collection of forces. Forces apply in
// registration order; replacing a force keeps its slot.
type Registry struct {
	names  []string
	forces map[string]Force

	g   *graph.Graph
	rnd func() float64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{forces: make(map[string]Force)}
}

// NewDefaultRegistry registers link, charge, collide and center forces built
// from cfg, centred on a width × height canvas.
func NewDefaultRegistry(cfg Config, width, height float64) *Registry {
	r := NewRegistry()
	r.Register(NameLink, NewLink(cfg))
	r.Register(NameCharge, NewManyBody(cfg))
	r.Register(NameCollide, NewCollide(cfg))
	r.Register(NameCenter, NewCenter(width/2, height/2, cfg.CenterStrength))
	return r
}

// Register adds f under name, replacing any force already registered there.
// If the registry has been initialized, f is initialized immediately.
func (r *Registry) Register(name string, f Force) {
	if _, ok := r.forces[name]; !ok {
		r.names = append(r.names, name)
	}
	r.forces[name] = f
	if r.g != nil {
		f.Initialize(r.g, r.rnd)
	}
}

// Remove deletes the force registered under name. It reports whether a force
// was removed.
func (r *Registry) Remove(name string) bool {
	if _, ok := r.forces[name]; !ok {
		return false
	}
	delete(r.forces, name)
	r.names = slices.DeleteFunc(r.names, func(n string) bool { return n == name })
	return true
}

// Get returns the force registered under name.
func (r *Registry) Get(name string) (Force, bool) {
	f, ok := r.forces[name]
	return f, ok
}

// Names returns the registered names in application order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of registered forces.
func (r *Registry) Len() int { return len(r.names) }

// Initialize binds every force to g.
func (r *Registry) Initialize(g *graph.Graph, rnd func() float64) {
	r.g, r.rnd = g, rnd
	for _, name := range r.names {
		r.forces[name].Initialize(g, rnd)
	}
}

// Apply runs every force in order with the given alpha.
func (r *Registry) Apply(alpha float64) {
	for _, name := range r.names {
		r.forces[name].Apply(alpha)
	}
}

// jiggle returns a tiny random offset used to separate coincident points.
func jiggle(rnd func() float64) float64 {
	return (rnd() - 0.5) * 1e-6
}
