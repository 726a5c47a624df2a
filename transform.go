package sapling

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// --- Matrix helpers ---

// composeTRS builds the local affine matrix from the node's transform
// properties, pivoted about origin:
//
//	T(position) * T(origin) * R(rotation) * S(scale) * T(-origin)
func composeTRS(rotation mgl64.Quat, position, scale, origin mgl64.Vec3) mgl64.Mat4 {
	m := mgl64.Translate3D(position[0]+origin[0], position[1]+origin[1], position[2]+origin[2])
	m = m.Mul4(rotation.Mat4())
	m = m.Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
	if origin != (mgl64.Vec3{}) {
		m = m.Mul4(mgl64.Translate3D(-origin[0], -origin[1], -origin[2]))
	}
	return m
}

// decomposeTRS extracts translation, rotation, and scale from an affine
// matrix. A negative determinant flips the x scale. Shear (introduced by
// non-uniform ancestor scale under rotation) is not representable and is
// folded into the rotation; degenerate (zero-scale) axes yield an identity
// rotation.
func decomposeTRS(m mgl64.Mat4) (position mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) {
	position = m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	if m.Det() < 0 {
		sx = -sx
	}
	scale = mgl64.Vec3{sx, sy, sz}

	const eps = 1e-12
	if sx > -eps && sx < eps || sy < eps || sz < eps {
		return position, mgl64.QuatIdent(), scale
	}

	c0 = c0.Mul(1 / sx)
	c1 = c1.Mul(1 / sy)
	c2 = c2.Mul(1 / sz)
	rot := mgl64.Mat4{
		c0[0], c0[1], c0[2], 0,
		c1[0], c1[1], c1[2], 0,
		c2[0], c2[1], c2[2], 0,
		0, 0, 0, 1,
	}
	rotation = mgl64.Mat4ToQuat(rot).Normalize()
	return position, rotation, scale
}

// --- Dirty-flag protocol ---

// dirtifyLocal marks e's local matrix stale and propagates. Idempotent: a
// second call while still local-dirty does nothing. When the world matrix
// is already stale the whole subtree was cascaded earlier, so only the
// repaint bookkeeping needs a refresh.
func (h *Hierarchy) dirtifyLocal(e donburi.Entity) {
	entry := h.entry(e)
	t := transformOf(entry)
	if t.localDirty {
		return
	}
	t.localDirty = true
	if t.worldDirty {
		if entry.HasComponent(Renderable) {
			Renderable.Get(entry).Dirty = true
		}
		return
	}
	h.dirtifyWorld(e)
}

// dirtifyWorld invalidates e's world matrix and eagerly cascades the
// world-dirty bit down the live subtree. Every visited node carrying a
// Renderable has its AABB refreshed synchronously so downstream consumers
// never observe a stale bound.
func (h *Hierarchy) dirtifyWorld(e donburi.Entity) {
	entry := h.entry(e)
	t := transformOf(entry)
	if !t.worldDirty {
		h.unfreezeAncestors(entry)
	}
	h.cascadeWorldDirty(entry, t)
}

func (h *Hierarchy) cascadeWorldDirty(entry *donburi.Entry, t *TransformData) {
	t.worldDirty = true
	sp := spatialOf(entry)
	sp.frozen = false

	if entry.HasComponent(Renderable) {
		h.UpdateRenderableAABB(entry.Entity())
	}

	for _, c := range sp.children {
		centry := h.entry(c)
		if !centry.HasComponent(Transform) {
			continue
		}
		ct := Transform.Get(centry)
		// An already-marked child was cascaded before; its subtree is
		// covered, which bounds the recursion to the dirty frontier.
		if ct.worldDirty {
			continue
		}
		h.cascadeWorldDirty(centry, ct)
	}
}

// unfreezeAncestors clears frozen on the chain above entry. The walk stops
// at the first unfrozen ancestor: a node is only ever frozen together with
// everything below it, so an unfrozen node never has frozen work pending
// above.
func (h *Hierarchy) unfreezeAncestors(entry *donburi.Entry) {
	sp := spatialOf(entry)
	for sp.HasParent {
		psp := spatialOf(h.entry(sp.Parent))
		if !psp.frozen {
			return
		}
		psp.frozen = false
		sp = psp
	}
}

// Invalidate forces recomputation of e's transforms on next read. Useful
// after bulk-writing Transform fields directly.
func (h *Hierarchy) Invalidate(e donburi.Entity) {
	t := transformOf(h.entry(e))
	t.localDirty = true
	h.dirtifyWorld(e)
}

// --- Transform queries ---

// LocalTransform returns e's local matrix, rebuilding it from the TRS
// fields if stale.
func (h *Hierarchy) LocalTransform(e donburi.Entity) mgl64.Mat4 {
	t := transformOf(h.entry(e))
	if t.localDirty {
		t.localMatrix = composeTRS(t.LocalRotation, t.LocalPosition, t.LocalScale, t.Origin)
		t.localDirty = false
	}
	return t.localMatrix
}

// WorldTransform returns e's world matrix. O(1) when clean; otherwise a
// single recursive ascent brings the parent chain current and recomputes
// this node as parent.world * local (local alone for a root).
func (h *Hierarchy) WorldTransform(e donburi.Entity) mgl64.Mat4 {
	entry := h.entry(e)
	t := transformOf(entry)
	if !t.localDirty && !t.worldDirty {
		return t.worldMatrix
	}

	local := h.LocalTransform(e)
	sp := spatialOf(entry)
	if sp.HasParent && h.entry(sp.Parent).HasComponent(Transform) {
		t.worldMatrix = h.WorldTransform(sp.Parent).Mul4(local)
	} else {
		t.worldMatrix = local
	}
	t.worldDirty = false
	return t.worldMatrix
}

// Position returns e's world-space position, extracted from the up-to-date
// world matrix.
func (h *Hierarchy) Position(e donburi.Entity) mgl64.Vec3 {
	return h.WorldTransform(e).Col(3).Vec3()
}

// Rotation returns e's world-space rotation.
func (h *Hierarchy) Rotation(e donburi.Entity) mgl64.Quat {
	_, r, _ := decomposeTRS(h.WorldTransform(e))
	return r
}

// Scale returns e's world-space scale.
func (h *Hierarchy) Scale(e donburi.Entity) mgl64.Vec3 {
	_, _, s := decomposeTRS(h.WorldTransform(e))
	return s
}

// LocalPosition returns the raw local position field.
func (h *Hierarchy) LocalPosition(e donburi.Entity) mgl64.Vec3 {
	return transformOf(h.entry(e)).LocalPosition
}

// LocalRotation returns the raw local rotation field.
func (h *Hierarchy) LocalRotation(e donburi.Entity) mgl64.Quat {
	return transformOf(h.entry(e)).LocalRotation
}

// LocalScale returns the raw local scale field.
func (h *Hierarchy) LocalScale(e donburi.Entity) mgl64.Vec3 {
	return transformOf(h.entry(e)).LocalScale
}

// Origin returns the pivot offset.
func (h *Hierarchy) Origin(e donburi.Entity) mgl64.Vec3 {
	return transformOf(h.entry(e)).Origin
}

// --- Coordinate conversion ---

// LocalToWorld converts a point in e's local space to world space.
func (h *Hierarchy) LocalToWorld(e donburi.Entity, p mgl64.Vec3) mgl64.Vec3 {
	return h.WorldTransform(e).Mul4x1(p.Vec4(1)).Vec3()
}

// WorldToLocal converts a world-space point to e's local space.
func (h *Hierarchy) WorldToLocal(e donburi.Entity, p mgl64.Vec3) mgl64.Vec3 {
	return h.WorldTransform(e).Inv().Mul4x1(p.Vec4(1)).Vec3()
}

// --- Transform mutation ---

// SetLocalPosition sets e's position relative to its parent.
func (h *Hierarchy) SetLocalPosition(e donburi.Entity, p mgl64.Vec3) {
	transformOf(h.entry(e)).LocalPosition = p
	h.dirtifyLocal(e)
}

// SetPosition moves e to the given world-space position. For a parented
// node the target is transformed through the parent's inverse world matrix
// first.
func (h *Hierarchy) SetPosition(e donburi.Entity, p mgl64.Vec3) {
	sp := spatialOf(h.entry(e))
	if sp.HasParent && h.entry(sp.Parent).HasComponent(Transform) {
		p = h.WorldTransform(sp.Parent).Inv().Mul4x1(p.Vec4(1)).Vec3()
	}
	h.SetLocalPosition(e, p)
}

// Translate moves e by a world-space delta.
func (h *Hierarchy) Translate(e donburi.Entity, delta mgl64.Vec3) {
	h.SetPosition(e, h.Position(e).Add(delta))
}

// TranslateLocal moves e by a delta expressed in its own local space: the
// delta is rotated by the current local rotation before adding, so
// "forward" is object-relative.
func (h *Hierarchy) TranslateLocal(e donburi.Entity, delta mgl64.Vec3) {
	t := transformOf(h.entry(e))
	t.LocalPosition = t.LocalPosition.Add(t.LocalRotation.Rotate(delta))
	h.dirtifyLocal(e)
}

// SetLocalRotation sets e's rotation relative to its parent. The
// quaternion is normalized on write.
func (h *Hierarchy) SetLocalRotation(e donburi.Entity, q mgl64.Quat) {
	transformOf(h.entry(e)).LocalRotation = q.Normalize()
	h.dirtifyLocal(e)
}

// SetRotation sets e's world-space rotation, composing with the parent's
// inverse rotation so the result matches regardless of ancestor rotation.
func (h *Hierarchy) SetRotation(e donburi.Entity, q mgl64.Quat) {
	sp := spatialOf(h.entry(e))
	if sp.HasParent && h.entry(sp.Parent).HasComponent(Transform) {
		q = h.Rotation(sp.Parent).Inverse().Mul(q)
	}
	h.SetLocalRotation(e, q)
}

// RotateLocal applies an additional rotation in e's local space.
func (h *Hierarchy) RotateLocal(e donburi.Entity, q mgl64.Quat) {
	t := transformOf(h.entry(e))
	t.LocalRotation = t.LocalRotation.Mul(q).Normalize()
	h.dirtifyLocal(e)
}

// Rotate applies an additional rotation in world space: the resulting
// world orientation is q composed onto the current world orientation.
func (h *Hierarchy) Rotate(e donburi.Entity, q mgl64.Quat) {
	sp := spatialOf(h.entry(e))
	if !sp.HasParent || !h.entry(sp.Parent).HasComponent(Transform) {
		t := transformOf(h.entry(e))
		t.LocalRotation = q.Mul(t.LocalRotation).Normalize()
		h.dirtifyLocal(e)
		return
	}
	world := h.Rotation(e)
	parent := h.Rotation(sp.Parent)
	t := transformOf(h.entry(e))
	t.LocalRotation = parent.Inverse().Mul(q).Mul(world).Normalize()
	h.dirtifyLocal(e)
}

// SetLocalEulerAngles sets the local rotation from XYZ euler angles in
// radians.
func (h *Hierarchy) SetLocalEulerAngles(e donburi.Entity, angles mgl64.Vec3) {
	h.SetLocalRotation(e, mgl64.AnglesToQuat(angles[0], angles[1], angles[2], mgl64.XYZ))
}

// SetEulerAngles sets the world-space rotation from XYZ euler angles in
// radians.
func (h *Hierarchy) SetEulerAngles(e donburi.Entity, angles mgl64.Vec3) {
	h.SetRotation(e, mgl64.AnglesToQuat(angles[0], angles[1], angles[2], mgl64.XYZ))
}

// SetLocalScale sets e's scale relative to its parent.
func (h *Hierarchy) SetLocalScale(e donburi.Entity, s mgl64.Vec3) {
	transformOf(h.entry(e)).LocalScale = s
	h.dirtifyLocal(e)
}

// ScaleLocal multiplies e's local scale componentwise.
func (h *Hierarchy) ScaleLocal(e donburi.Entity, factor mgl64.Vec3) {
	t := transformOf(h.entry(e))
	t.LocalScale = mgl64.Vec3{
		t.LocalScale[0] * factor[0],
		t.LocalScale[1] * factor[1],
		t.LocalScale[2] * factor[2],
	}
	h.dirtifyLocal(e)
}

// SetOrigin sets the pivot used by the local TRS composition. The new
// origin takes effect the next time the local matrix is rebuilt for any
// other reason; follow with a transform mutation to force a refresh.
func (h *Hierarchy) SetOrigin(e donburi.Entity, origin mgl64.Vec3) {
	transformOf(h.entry(e)).Origin = origin
}
