package sapling

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// --- Component access ---

// entry resolves an entity to its storage entry. Pointers obtained from an
// entry stay valid because sapling never adds or removes components after
// construction.
func (h *Hierarchy) entry(e donburi.Entity) *donburi.Entry {
	return h.world.Entry(e)
}

func spatialOf(entry *donburi.Entry) *SpatialData {
	if !entry.HasComponent(Spatial) {
		panic(fmt.Sprintf("sapling: entity %v has no Spatial component", entry.Entity()))
	}
	return Spatial.Get(entry)
}

func transformOf(entry *donburi.Entry) *TransformData {
	if !entry.HasComponent(Transform) {
		panic(fmt.Sprintf("sapling: entity %v has no Transform component", entry.Entity()))
	}
	return Transform.Get(entry)
}

func renderableOf(entry *donburi.Entry) *RenderableData {
	if !entry.HasComponent(Renderable) {
		panic(fmt.Sprintf("sapling: entity %v has no Renderable component", entry.Entity()))
	}
	return Renderable.Get(entry)
}

// --- Tree accessors ---

// Parent returns the node's parent, if any.
func (h *Hierarchy) Parent(e donburi.Entity) (donburi.Entity, bool) {
	sp := spatialOf(h.entry(e))
	return sp.Parent, sp.HasParent
}

// Children returns the node's child list in insertion order.
// The returned slice MUST NOT be mutated by the caller.
func (h *Hierarchy) Children(e donburi.Entity) []donburi.Entity {
	return spatialOf(h.entry(e)).children
}

// NumChildren returns the number of children.
func (h *Hierarchy) NumChildren(e donburi.Entity) int {
	return len(spatialOf(h.entry(e)).children)
}

// ChildIndex returns child's position among parent's children, or -1 if
// child is not a child of parent.
func (h *Hierarchy) ChildIndex(parent, child donburi.Entity) int {
	for i, c := range spatialOf(h.entry(parent)).children {
		if c == child {
			return i
		}
	}
	return -1
}

// Tag returns the node's tag.
func (h *Hierarchy) Tag(e donburi.Entity) string {
	return spatialOf(h.entry(e)).Tag
}

// Attribute returns a node attribute by name.
func (h *Hierarchy) Attribute(e donburi.Entity, name string) (string, bool) {
	sp := spatialOf(h.entry(e))
	if sp.Attrs == nil {
		return "", false
	}
	v, ok := sp.Attrs[name]
	return v, ok
}

// SetAttribute sets a node attribute, visible to selector adapters.
func (h *Hierarchy) SetAttribute(e donburi.Entity, name, value string) {
	sp := spatialOf(h.entry(e))
	if sp.Attrs == nil {
		sp.Attrs = make(map[string]string)
	}
	sp.Attrs[name] = value
}

// isAncestor reports whether candidate is node itself or an ancestor of node.
func (h *Hierarchy) isAncestor(candidate, node donburi.Entity) bool {
	for e := node; ; {
		if e == candidate {
			return true
		}
		sp := spatialOf(h.entry(e))
		if !sp.HasParent {
			return false
		}
		e = sp.Parent
	}
}

// --- Structural mutation ---

// Attach makes e a child of parent, inserting at index (appended when index
// is omitted). If e already has a parent it is detached first, and e's
// local transform is recomposed against the new parent's inverse world
// matrix so e's world-space pose does not change across the reparent.
//
// Attaching a node to itself is a silent no-op. Attaching a node to one of
// its own descendants would create a cycle and panics: callers must not
// pass a node as its own ancestor.
func (h *Hierarchy) Attach(e, parent donburi.Entity, index ...int) {
	if e == parent {
		return
	}
	if h.isAncestor(e, parent) {
		panic("sapling: attach would create a cycle")
	}

	entry := h.entry(e)
	sp := spatialOf(entry)

	// Capture the current world pose before any structural change.
	hasTransform := entry.HasComponent(Transform)
	var world mgl64.Mat4
	if hasTransform {
		world = h.WorldTransform(e)
	}

	if sp.HasParent {
		h.detach(e, false)
	}

	parentEntry := h.entry(parent)
	psp := spatialOf(parentEntry)

	// Insert before writing the parent link so a panic cannot leave e
	// claiming a parent whose child list does not contain it.
	if len(index) > 0 {
		i := index[0]
		if i < 0 || i > len(psp.children) {
			panic("sapling: child index out of range")
		}
		psp.children = slices.Insert(psp.children, i, e)
	} else {
		psp.children = append(psp.children, e)
	}
	sp.Parent = parent
	sp.HasParent = true

	h.dirtifyOrderToRoot(parent)
	h.dirtifyAABBToRoot(parent)

	if hasTransform {
		if parentEntry.HasComponent(Transform) {
			// Re-express the captured world pose in the new parent's
			// local space.
			t := transformOf(entry)
			local := h.WorldTransform(parent).Inv().Mul4(world)
			t.LocalPosition, t.LocalRotation, t.LocalScale = decomposeTRS(local)
		}
		t := transformOf(entry)
		t.localDirty = true
		h.dirtifyWorld(e)
	}

	if h.debug {
		h.debugCheckTreeDepth(e)
		h.debugCheckChildCount(parent)
	}
}

// Detach removes e from its parent. The current world transform is baked
// into e's local position, rotation, and scale first, so the local state
// alone reproduces the world pose once e is a root. No-op if e has no
// parent.
func (h *Hierarchy) Detach(e donburi.Entity) {
	h.detach(e, true)
}

// detach removes e from its parent. With cascade false the dirty cascade
// is deferred to the caller, which must dirty e itself; Attach uses this
// so a reparent announces its AABB refresh once, not once per phase.
func (h *Hierarchy) detach(e donburi.Entity, cascade bool) {
	entry := h.entry(e)
	sp := spatialOf(entry)
	if !sp.HasParent {
		return
	}

	hasTransform := entry.HasComponent(Transform)
	if hasTransform {
		t := transformOf(entry)
		t.LocalPosition, t.LocalRotation, t.LocalScale = decomposeTRS(h.WorldTransform(e))
	}

	oldParent := sp.Parent
	psp := spatialOf(h.entry(oldParent))
	for i, c := range psp.children {
		if c == e {
			copy(psp.children[i:], psp.children[i+1:])
			psp.children = psp.children[:len(psp.children)-1]
			break
		}
	}
	var none donburi.Entity
	sp.Parent = none
	sp.HasParent = false

	h.dirtifyOrderToRoot(oldParent)
	h.dirtifyAABBToRoot(oldParent)

	if hasTransform {
		t := transformOf(entry)
		t.localDirty = true
		if cascade {
			h.dirtifyWorld(e)
		}
	}
}

// DetachChildren detaches every current child of parent. Iterates over a
// snapshot since Detach mutates the child list.
func (h *Hierarchy) DetachChildren(parent donburi.Entity) {
	children := spatialOf(h.entry(parent)).children
	snapshot := make([]donburi.Entity, len(children))
	copy(snapshot, children)
	for _, c := range snapshot {
		h.Detach(c)
	}
}

// SetChildIndex moves child to a new index among its siblings.
// Panics if child is not a child of parent or index is out of range.
func (h *Hierarchy) SetChildIndex(parent, child donburi.Entity, index int) {
	psp := spatialOf(h.entry(parent))
	if index < 0 || index >= len(psp.children) {
		panic("sapling: child index out of range")
	}
	oldIndex := -1
	for i, c := range psp.children {
		if c == child {
			oldIndex = i
			break
		}
	}
	if oldIndex == -1 {
		panic("sapling: entity is not a child of this parent")
	}
	if oldIndex == index {
		return
	}
	if oldIndex < index {
		copy(psp.children[oldIndex:], psp.children[oldIndex+1:index+1])
	} else {
		copy(psp.children[index+1:], psp.children[index:oldIndex])
	}
	psp.children[index] = child
	h.dirtifyOrderToRoot(parent)
}

// SetZIndex sets the node's z-index. The node's own cached sort and every
// ancestor's cached flattened list are invalidated; sibling ties keep
// insertion order.
func (h *Hierarchy) SetZIndex(e donburi.Entity, z int) {
	entry := h.entry(e)
	if !entry.HasComponent(Orderable) {
		panic(fmt.Sprintf("sapling: entity %v has no Orderable component", e))
	}
	ord := Orderable.Get(entry)
	if ord.ZIndex == z {
		return
	}
	ord.ZIndex = z
	ord.dirty = true
	h.dirtifyOrderToRoot(e)
}

// ZIndex returns the node's z-index.
func (h *Hierarchy) ZIndex(e donburi.Entity) int {
	entry := h.entry(e)
	if !entry.HasComponent(Orderable) {
		return 0
	}
	return Orderable.Get(entry).ZIndex
}

// dirtifyOrderToRoot invalidates the cached flattened sort of e and every
// ancestor carrying an Orderable.
func (h *Hierarchy) dirtifyOrderToRoot(e donburi.Entity) {
	for {
		entry := h.entry(e)
		if entry.HasComponent(Orderable) {
			Orderable.Get(entry).dirty = true
		}
		sp := spatialOf(entry)
		if !sp.HasParent {
			return
		}
		e = sp.Parent
	}
}

// dirtifyAABBToRoot marks the Renderable of e and every ancestor dirty for
// the backend's repaint bookkeeping. Bounds are not recomputed here: each
// node's AABB covers only its own geometry, which structural changes do not
// move.
func (h *Hierarchy) dirtifyAABBToRoot(e donburi.Entity) {
	for {
		entry := h.entry(e)
		if entry.HasComponent(Renderable) {
			Renderable.Get(entry).Dirty = true
		}
		sp := spatialOf(entry)
		if !sp.HasParent {
			return
		}
		e = sp.Parent
	}
}
