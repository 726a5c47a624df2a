package sapling

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// boxSource is a stub geometry collaborator serving fixed object-space
// boxes.
type boxSource struct {
	boxes map[donburi.Entity]AABB
}

func (s *boxSource) ObjectAABB(e donburi.Entity) (AABB, bool) {
	b, ok := s.boxes[e]
	return b, ok
}

func unitSquare() AABB {
	return AABB{Min: V(-1, -1, 0), Max: V(1, 1, 0)}
}

// --- AABB value type ---

func TestAABBTransformRotation(t *testing.T) {
	box := AABB{Min: V(0, 0, 0), Max: V(2, 1, 0)}
	got := box.Transform(mgl64.HomogRotate3D(math.Pi/2, V(0, 0, 1)))
	assertVec3(t, "min", got.Min, V(-1, 0, 0))
	assertVec3(t, "max", got.Max, V(0, 2, 0))
}

func TestAABBUnion(t *testing.T) {
	a := AABB{Min: V(-1, -1, 0), Max: V(1, 1, 0)}
	b := AABB{Min: V(0, 0, -2), Max: V(3, 0.5, 0)}
	u := a.Union(b)
	assertVec3(t, "min", u.Min, V(-1, -1, -2))
	assertVec3(t, "max", u.Max, V(3, 1, 0))
}

func TestAABBContainsAndIntersects(t *testing.T) {
	b := unitSquare()
	if !b.Contains(V(0, 0, 0)) || !b.Contains(V(1, 1, 0)) {
		t.Error("points inside or on a face must be contained")
	}
	if b.Contains(V(1.01, 0, 0)) {
		t.Error("point outside reported contained")
	}
	if !b.Intersects(AABB{Min: V(1, 1, 0), Max: V(2, 2, 0)}) {
		t.Error("face-touching boxes must intersect")
	}
	if b.Intersects(AABB{Min: V(2, 2, 2), Max: V(3, 3, 3)}) {
		t.Error("disjoint boxes reported intersecting")
	}
}

// --- Renderable maintenance ---

func TestScaleUpdatesAABBAndFiresOnce(t *testing.T) {
	world := donburi.NewWorld()
	src := &boxSource{boxes: map[donburi.Entity]AABB{}}
	h := NewHierarchy(world, WithGeometrySource(src))

	n := NewNode(world, WithRenderable())
	src.boxes[n] = unitSquare()

	var fired []donburi.Entity
	h.OnAABBChanged(func(e donburi.Entity) { fired = append(fired, e) })

	var queued []AABBChangedEvent
	AABBChanged.Subscribe(world, func(w donburi.World, ev AABBChangedEvent) {
		queued = append(queued, ev)
	})

	h.SetLocalScale(n, V(2, 2, 1))

	if len(fired) != 1 || fired[0] != n {
		t.Fatalf("listener fired %d times (%v), want exactly once for %v", len(fired), fired, n)
	}
	box := h.RenderableAABB(n)
	assertVec3(t, "min", box.Min, V(-2, -2, 0))
	assertVec3(t, "max", box.Max, V(2, 2, 0))
	if !h.RenderableDirty(n) {
		t.Error("Renderable should be marked dirty for the backend")
	}

	events.ProcessAllEvents(world)
	if len(queued) != 1 || queued[0].Entity != n {
		t.Fatalf("queued events = %v, want one for %v", queued, n)
	}
	assertVec3(t, "event min", queued[0].AABB.Min, V(-2, -2, 0))
}

func TestNodeBuiltWithPositionRefreshesOnFirstMutation(t *testing.T) {
	world := donburi.NewWorld()
	src := &boxSource{boxes: map[donburi.Entity]AABB{}}
	h := NewHierarchy(world, WithGeometrySource(src))

	n := NewNode(world, WithRenderable(), WithPosition(V(1, 0, 0)))
	src.boxes[n] = unitSquare()

	var fired int
	h.OnAABBChanged(func(donburi.Entity) { fired++ })

	h.SetLocalScale(n, V(2, 2, 1))

	if fired != 1 {
		t.Fatalf("listener fired %d times, want 1", fired)
	}
	box := h.RenderableAABB(n)
	assertVec3(t, "min", box.Min, V(-1, -2, 0))
	assertVec3(t, "max", box.Max, V(3, 2, 0))
}

func TestReparentEmitsSingleAABBChange(t *testing.T) {
	world := donburi.NewWorld()
	src := &boxSource{boxes: map[donburi.Entity]AABB{}}
	h := NewHierarchy(world, WithGeometrySource(src))

	p1 := NewNode(world)
	p2 := NewNode(world)
	n := NewNode(world, WithRenderable())
	h.Attach(n, p1)
	src.boxes[n] = unitSquare()
	h.SetLocalPosition(p2, V(4, 0, 0))
	h.SetLocalPosition(n, V(1, 0, 0))

	var fired int
	h.OnAABBChanged(func(donburi.Entity) { fired++ })

	h.Attach(n, p2)

	if fired != 1 {
		t.Errorf("reparent fired %d AABB changes, want 1", fired)
	}
	box := h.RenderableAABB(n)
	assertVec3(t, "min", box.Min, V(0, -1, 0))
	assertVec3(t, "max", box.Max, V(2, 1, 0))
}

func TestAncestorMoveRefreshesDescendantAABB(t *testing.T) {
	world := donburi.NewWorld()
	src := &boxSource{boxes: map[donburi.Entity]AABB{}}
	h := NewHierarchy(world, WithGeometrySource(src))

	p := NewNode(world)
	c := NewNode(world, WithRenderable())
	h.Attach(c, p)
	src.boxes[c] = unitSquare()
	h.SetLocalPosition(c, V(1, 0, 0))

	// Moving the parent must synchronously refresh the child's bound,
	// with no read in between.
	h.SetLocalPosition(p, V(10, 0, 0))

	box := h.RenderableAABB(c)
	assertVec3(t, "min", box.Min, V(10, -1, 0))
	assertVec3(t, "max", box.Max, V(12, 1, 0))
}

func TestRotatedParentProducesConservativeBound(t *testing.T) {
	world := donburi.NewWorld()
	src := &boxSource{boxes: map[donburi.Entity]AABB{}}
	h := NewHierarchy(world, WithGeometrySource(src))

	n := NewNode(world, WithRenderable())
	src.boxes[n] = AABB{Min: V(0, 0, 0), Max: V(2, 1, 0)}

	h.SetLocalRotation(n, mgl64.QuatRotate(math.Pi/2, V(0, 0, 1)))

	box := h.RenderableAABB(n)
	assertVec3(t, "min", box.Min, V(-1, 0, 0))
	assertVec3(t, "max", box.Max, V(0, 2, 0))
}

func TestNoGeometryLeavesAABBUntouched(t *testing.T) {
	world := donburi.NewWorld()
	src := &boxSource{boxes: map[donburi.Entity]AABB{}}
	h := NewHierarchy(world, WithGeometrySource(src))

	n := NewNode(world, WithRenderable())
	var fired int
	h.OnAABBChanged(func(donburi.Entity) { fired++ })

	h.SetLocalScale(n, V(2, 2, 1))

	if fired != 0 {
		t.Errorf("no geometry, but %d events fired", fired)
	}
	box := h.RenderableAABB(n)
	assertVec3(t, "zero min", box.Min, mgl64.Vec3{})
	assertVec3(t, "zero max", box.Max, mgl64.Vec3{})
}

func TestRenderableAABBPanicsWithoutComponent(t *testing.T) {
	world, h := newTestHierarchy()
	n := NewNode(world)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing Renderable component")
		}
	}()
	h.RenderableAABB(n)
}
