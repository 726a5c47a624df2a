package sapling

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// SpatialData places an entity in the hierarchy. Parent is a structural
// reference, not ownership: removing a parent does not destroy its children.
// A node appears in its parent's children exactly once, or has no parent.
type SpatialData struct {
	Parent    donburi.Entity
	HasParent bool
	Tag       string
	Attrs     map[string]string

	// children is ordered; insertion order is the default paint order and
	// the tie-break for equal z-indices.
	children []donburi.Entity

	// frozen means this node's entire subtree's world transforms are
	// verified unchanged since the last Sync. Cleared on any
	// ancestor-or-self mutation.
	frozen bool
}

// TransformData holds an entity's local TRS state and the cached local and
// world matrices. The cached matrices are only valid while the matching
// dirty flag is false; read them through Hierarchy.LocalTransform and
// Hierarchy.WorldTransform.
type TransformData struct {
	LocalPosition mgl64.Vec3
	LocalRotation mgl64.Quat
	LocalScale    mgl64.Vec3

	// Origin is the pivot offset used by the local TRS composition.
	Origin mgl64.Vec3

	localMatrix mgl64.Mat4
	worldMatrix mgl64.Mat4
	localDirty  bool
	worldDirty  bool
}

// OrderableData holds an entity's z-index and the cached flattened
// z-sorted descendant list produced by Hierarchy.Sorted.
type OrderableData struct {
	ZIndex int

	sorted []donburi.Entity
	dirty  bool
}

// RenderableData marks an entity as carrying visible geometry. AABB is the
// world-space bound of the entity's own geometry (never its subtree's),
// refreshed synchronously whenever the world transform is invalidated.
// Dirty signals the rendering backend that repaint bookkeeping is needed;
// the backend clears it.
type RenderableData struct {
	AABB  AABB
	Dirty bool
}

// Component types. A fresh Transform is clean and consistent: identity
// matrices match the identity TRS defaults, so a node is readable
// immediately after creation.
var (
	Spatial   = donburi.NewComponentType[SpatialData]()
	Transform = donburi.NewComponentType[TransformData](TransformData{
		LocalRotation: mgl64.QuatIdent(),
		LocalScale:    mgl64.Vec3{1, 1, 1},
		localMatrix:   mgl64.Ident4(),
		worldMatrix:   mgl64.Ident4(),
	})
	Orderable  = donburi.NewComponentType[OrderableData]()
	Renderable = donburi.NewComponentType[RenderableData]()
)

// NodeOption configures a node created by NewNode.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	tag        string
	renderable bool
	zIndex     int
	position   mgl64.Vec3
	hasPos     bool
}

// WithTag sets the node's tag, used by selector adapters.
func WithTag(tag string) NodeOption {
	return func(c *nodeConfig) { c.tag = tag }
}

// WithRenderable adds a Renderable component to the node.
func WithRenderable() NodeOption {
	return func(c *nodeConfig) { c.renderable = true }
}

// WithZIndex sets the node's initial z-index.
func WithZIndex(z int) NodeOption {
	return func(c *nodeConfig) { c.zIndex = z }
}

// WithPosition sets the node's initial local position.
func WithPosition(p mgl64.Vec3) NodeOption {
	return func(c *nodeConfig) { c.position = p; c.hasPos = true }
}

// NewNode creates an entity carrying the Spatial, Transform, and Orderable
// components (plus Renderable with WithRenderable). This is construction
// only; structural placement happens through Hierarchy.Attach.
func NewNode(w donburi.World, opts ...NodeOption) donburi.Entity {
	var cfg nodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var e donburi.Entity
	if cfg.renderable {
		e = w.Create(Spatial, Transform, Orderable, Renderable)
	} else {
		e = w.Create(Spatial, Transform, Orderable)
	}
	entry := w.Entry(e)

	if cfg.tag != "" {
		Spatial.Get(entry).Tag = cfg.tag
	}
	if cfg.zIndex != 0 {
		Orderable.Get(entry).ZIndex = cfg.zIndex
	}
	if cfg.hasPos {
		t := Transform.Get(entry)
		t.LocalPosition = cfg.position
		// Matrices stay consistent with the fields; a fresh node is
		// always clean, never dirty-without-a-cascade.
		t.localMatrix = mgl64.Translate3D(cfg.position[0], cfg.position[1], cfg.position[2])
		t.worldMatrix = t.localMatrix
	}
	return e
}
