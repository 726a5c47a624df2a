package sapling

import (
	"github.com/yohamta/donburi"
)

// GeometrySource exposes an object-space bounding box for entities carrying
// visible geometry. Shape construction code implements this; sapling only
// transforms the box into world space.
type GeometrySource interface {
	// ObjectAABB returns the object-space bound for e, or false when e has
	// no geometry.
	ObjectAABB(e donburi.Entity) (AABB, bool)
}

// Hierarchy is the transform-and-hierarchy service. It is the sole mutator
// of the Spatial, Transform, Orderable, and Renderable components: external
// callers (shape construction, animation, layout) go through its methods,
// and readers trigger on-demand recomputation of exactly the stale chain.
//
// A Hierarchy holds no per-node state of its own. It is not safe for
// concurrent use; callers on multiple goroutines must serialize access.
type Hierarchy struct {
	world     donburi.World
	geometry  GeometrySource
	selector  SelectorEngine
	listeners []func(donburi.Entity)
	debug     bool
}

// Option configures a Hierarchy.
type Option func(*Hierarchy)

// WithGeometrySource sets the collaborator that provides object-space
// bounds. Without one, renderable nodes keep zero AABBs.
func WithGeometrySource(g GeometrySource) Option {
	return func(h *Hierarchy) { h.geometry = g }
}

// WithSelectorEngine sets the external selector-matching collaborator used
// by QuerySelector and QuerySelectorAll.
func WithSelectorEngine(s SelectorEngine) Option {
	return func(h *Hierarchy) { h.selector = s }
}

// WithDebug enables debug diagnostics: Sync timing on stderr and tree
// depth warnings.
func WithDebug() Option {
	return func(h *Hierarchy) { h.debug = true }
}

// NewHierarchy creates a Hierarchy service over the given donburi world.
func NewHierarchy(world donburi.World, opts ...Option) *Hierarchy {
	h := &Hierarchy{world: world}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// World returns the underlying donburi world.
func (h *Hierarchy) World() donburi.World {
	return h.world
}

// OnAABBChanged registers a listener invoked synchronously whenever a
// node's world-space AABB is refreshed. Listeners MUST NOT mutate the
// hierarchy: they run in the middle of a dirty cascade.
func (h *Hierarchy) OnAABBChanged(fn func(e donburi.Entity)) {
	h.listeners = append(h.listeners, fn)
}
