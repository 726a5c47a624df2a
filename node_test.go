package sapling

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Attach / Detach ---

func TestAttachAppendsInInsertionOrder(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	c0 := NewNode(world)
	c1 := NewNode(world)
	h.Attach(c0, p)
	h.Attach(c1, p)

	kids := h.Children(p)
	if len(kids) != 2 || kids[0] != c0 || kids[1] != c1 {
		t.Errorf("children = %v, want [%v %v]", kids, c0, c1)
	}
	if parent, ok := h.Parent(c0); !ok || parent != p {
		t.Errorf("Parent(c0) = %v, %v", parent, ok)
	}
}

func TestAttachAtIndex(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	c0 := NewNode(world)
	c1 := NewNode(world)
	c2 := NewNode(world)
	h.Attach(c0, p)
	h.Attach(c2, p)
	h.Attach(c1, p, 1)

	kids := h.Children(p)
	if kids[0] != c0 || kids[1] != c1 || kids[2] != c2 {
		t.Errorf("children = %v", kids)
	}
}

func TestAttachToSelfIsNoOp(t *testing.T) {
	world, h := newTestHierarchy()
	n := NewNode(world)
	h.Attach(n, n)
	if _, ok := h.Parent(n); ok {
		t.Error("self-attach must not set a parent")
	}
}

func TestAttachCyclePanics(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	c := NewNode(world)
	h.Attach(c, p)

	defer func() {
		if recover() == nil {
			t.Error("expected panic attaching ancestor under descendant")
		}
	}()
	h.Attach(p, c)
}

func TestAttachInvalidIndexLeavesTreeConsistent(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	n := NewNode(world)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic for out-of-range index")
			}
		}()
		h.Attach(n, p, 3)
	}()

	if _, ok := h.Parent(n); ok {
		t.Error("failed attach must not leave a parent link")
	}
	if len(h.Children(p)) != 0 {
		t.Error("failed attach must not register a child")
	}
}

func TestDetachWithoutParentIsNoOp(t *testing.T) {
	world, h := newTestHierarchy()
	n := NewNode(world)
	h.Detach(n) // must not panic
	if _, ok := h.Parent(n); ok {
		t.Error("node should stay parentless")
	}
}

func TestDetachBakesWorldPose(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	c := NewNode(world)
	h.Attach(c, p)
	h.SetLocalPosition(p, V(5, 0, 0))
	h.SetLocalRotation(p, mgl64.QuatRotate(math.Pi/2, V(0, 0, 1)))
	h.SetLocalPosition(c, V(3, 0, 0))

	wantPos := h.Position(c)
	wantRot := h.Rotation(c)

	h.Detach(c)

	if _, ok := h.Parent(c); ok {
		t.Fatal("still parented after Detach")
	}
	if len(h.Children(p)) != 0 {
		t.Fatal("old parent still lists the child")
	}
	assertVec3(t, "baked position", h.Position(c), wantPos)
	assertQuat(t, "baked rotation", h.Rotation(c), wantRot)
	assertVec3(t, "local equals world once parentless", h.LocalPosition(c), wantPos)
}

func TestReparentPreservesWorldPose(t *testing.T) {
	world, h := newTestHierarchy()
	r := NewNode(world)
	p1 := NewNode(world)
	p2 := NewNode(world)
	n := NewNode(world)
	h.Attach(p1, r)
	h.Attach(p2, r)
	h.Attach(n, p1)

	h.SetLocalPosition(p1, V(5, 0, 0))
	h.SetLocalPosition(n, V(3, 0, 0))
	h.SetLocalPosition(p2, V(1, 2, 0))
	h.SetLocalRotation(p2, mgl64.QuatRotate(math.Pi/2, V(0, 0, 1)))

	wantPos := h.Position(n)
	wantRot := h.Rotation(n)
	assertVec3(t, "precondition", wantPos, V(8, 0, 0))

	h.Attach(n, p2)

	if parent, _ := h.Parent(n); parent != p2 {
		t.Fatal("not reparented")
	}
	assertVec3(t, "world pos preserved", h.Position(n), wantPos)
	assertQuat(t, "world rot preserved", h.Rotation(n), wantRot)
}

func TestDetachReattachRoundtrip(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	c0 := NewNode(world)
	c1 := NewNode(world)
	c2 := NewNode(world)
	h.Attach(c0, p)
	h.Attach(c1, p)
	h.Attach(c2, p)
	h.SetLocalPosition(p, V(2, 0, 0))
	h.SetLocalPosition(c1, V(0, 3, 0))

	idx := h.ChildIndex(p, c1)
	want := h.Position(c1)

	h.Detach(c1)
	h.Attach(c1, p, idx)

	if got := h.ChildIndex(p, c1); got != idx {
		t.Errorf("child index = %d, want %d", got, idx)
	}
	assertVec3(t, "world pos restored", h.Position(c1), want)
}

func TestDetachChildrenUsesSnapshot(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	c0 := NewNode(world)
	c1 := NewNode(world)
	c2 := NewNode(world)
	h.Attach(c0, p)
	h.Attach(c1, p)
	h.Attach(c2, p)

	h.DetachChildren(p)

	if n := h.NumChildren(p); n != 0 {
		t.Errorf("NumChildren = %d, want 0", n)
	}
	if _, ok := h.Parent(c0); ok {
		t.Error("c0 still parented")
	}
	if _, ok := h.Parent(c1); ok {
		t.Error("c1 still parented")
	}
	if _, ok := h.Parent(c2); ok {
		t.Error("c2 still parented")
	}
}

func TestSetChildIndexReorders(t *testing.T) {
	world, h := newTestHierarchy()
	p := NewNode(world)
	c0 := NewNode(world)
	c1 := NewNode(world)
	c2 := NewNode(world)
	h.Attach(c0, p)
	h.Attach(c1, p)
	h.Attach(c2, p)

	h.SetChildIndex(p, c2, 0)

	kids := h.Children(p)
	if kids[0] != c2 || kids[1] != c0 || kids[2] != c1 {
		t.Errorf("children = %v", kids)
	}
}

func TestAttachMarksAncestorRenderablesDirty(t *testing.T) {
	world, h := newTestHierarchy()
	gp := NewNode(world, WithRenderable())
	p := NewNode(world, WithRenderable())
	h.Attach(p, gp)
	h.ClearRenderableDirty(gp)
	h.ClearRenderableDirty(p)

	n := NewNode(world)
	h.Attach(n, p)

	if !h.RenderableDirty(p) {
		t.Error("new parent's Renderable should be dirty")
	}
	if !h.RenderableDirty(gp) {
		t.Error("grandparent's Renderable should be dirty")
	}
}

// --- Tags & attributes ---

func TestTagAndAttributes(t *testing.T) {
	world, h := newTestHierarchy()
	n := NewNode(world, WithTag("circle"))

	if got := h.Tag(n); got != "circle" {
		t.Errorf("Tag = %q", got)
	}
	if _, ok := h.Attribute(n, "fill"); ok {
		t.Error("unset attribute reported present")
	}
	h.SetAttribute(n, "fill", "red")
	if v, ok := h.Attribute(n, "fill"); !ok || v != "red" {
		t.Errorf("Attribute = %q, %v", v, ok)
	}
}
