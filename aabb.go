package sapling

import (
	"github.com/yohamta/donburi"
)

// UpdateRenderableAABB recomputes e's world-space AABB by transforming its
// object-space box through the up-to-date world matrix, marks the
// Renderable dirty for the backend's repaint tracking, and announces the
// change. Ancestor bounds are not aggregated: each node's AABB reflects
// only its own geometry, never its subtree.
//
// Panics if e has no Renderable component. No-op when no geometry source
// is configured or the source reports no geometry for e.
func (h *Hierarchy) UpdateRenderableAABB(e donburi.Entity) {
	entry := h.entry(e)
	r := renderableOf(entry)
	if h.geometry == nil {
		return
	}
	box, ok := h.geometry.ObjectAABB(e)
	if !ok {
		return
	}
	r.AABB = box.Transform(h.WorldTransform(e))
	r.Dirty = true
	h.emitAABBChanged(e, r.AABB)
}

// RenderableAABB returns e's current world-space AABB.
// Panics if e has no Renderable component.
func (h *Hierarchy) RenderableAABB(e donburi.Entity) AABB {
	return renderableOf(h.entry(e)).AABB
}

// ClearRenderableDirty acknowledges repaint bookkeeping for e. Called by
// the rendering backend after it has consumed the bound.
func (h *Hierarchy) ClearRenderableDirty(e donburi.Entity) {
	renderableOf(h.entry(e)).Dirty = false
}

// RenderableDirty reports whether e's bound changed since the backend last
// acknowledged it.
func (h *Hierarchy) RenderableDirty(e donburi.Entity) bool {
	return renderableOf(h.entry(e)).Dirty
}
