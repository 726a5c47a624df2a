package sapling

import (
	"cmp"
	"slices"

	"github.com/yohamta/donburi"
)

// Visit walks the subtree rooted at e depth-first, pre-order, siblings in
// insertion order. If visitor returns true the subtree below that node is
// pruned. The visitor must not mutate the hierarchy.
func (h *Hierarchy) Visit(e donburi.Entity, visitor func(donburi.Entity) bool) {
	if visitor(e) {
		return
	}
	for _, c := range spatialOf(h.entry(e)).children {
		h.Visit(c, visitor)
	}
}

// Sorted returns the flattened pre-order list of e and all descendants
// with siblings sorted by ascending z-index at each level. The sort is
// stable: equal z-indices keep insertion order. The list is cached on e's
// Orderable and only recomputed when stale or force is true.
//
// The returned slice is the cache itself and MUST NOT be mutated or
// retained across further hierarchy mutations.
func (h *Hierarchy) Sorted(e donburi.Entity, force ...bool) []donburi.Entity {
	entry := h.entry(e)
	if !entry.HasComponent(Orderable) {
		panic("sapling: Sorted requires an Orderable component")
	}
	ord := Orderable.Get(entry)
	f := len(force) > 0 && force[0]
	if !ord.dirty && ord.sorted != nil && !f {
		return ord.sorted
	}

	out := ord.sorted[:0]
	h.appendSorted(e, &out)
	ord.sorted = out
	ord.dirty = false
	return ord.sorted
}

func (h *Hierarchy) appendSorted(e donburi.Entity, out *[]donburi.Entity) {
	*out = append(*out, e)
	children := spatialOf(h.entry(e)).children
	if len(children) == 0 {
		return
	}
	buf := make([]donburi.Entity, len(children))
	copy(buf, children)
	slices.SortStableFunc(buf, func(a, b donburi.Entity) int {
		return cmp.Compare(h.ZIndex(a), h.ZIndex(b))
	})
	for _, c := range buf {
		h.appendSorted(c, out)
	}
}

// Sync eagerly brings every world transform under root current and marks
// the verified subtrees frozen, so the next Sync skips them entirely.
// Renderers that want a per-frame batch refresh call this once per frame;
// everything else can rely on lazy reads.
func (h *Hierarchy) Sync(root donburi.Entity) {
	if h.debug {
		h.syncDebug(root)
		return
	}
	h.syncNode(root)
}

func (h *Hierarchy) syncNode(e donburi.Entity) int {
	entry := h.entry(e)
	sp := spatialOf(entry)
	if sp.frozen {
		return 0
	}
	n := 1
	if entry.HasComponent(Transform) {
		h.WorldTransform(e)
	}
	for _, c := range sp.children {
		n += h.syncNode(c)
	}
	sp.frozen = true
	return n
}
