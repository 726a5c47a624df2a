package sapling

import "github.com/go-gl/mathgl/mgl64"

// V builds a 3-component vector from x, y, z.
func V(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}

// XY builds a 3-component vector from x and y with z = 0. Convenience for
// 2D scenes, where the z axis is unused.
func XY(x, y float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, 0}
}

// One is the unit scale vector.
var One = mgl64.Vec3{1, 1, 1}

// AABB is an axis-aligned bounding box. Min and Max are opposite corners
// with Min <= Max on every axis. The zero value is a degenerate box at the
// origin.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Contains reports whether the point p lies inside the box.
// Points on a face are considered inside.
func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Intersects reports whether b and other overlap.
// Boxes sharing only a face are considered intersecting.
func (b AABB) Intersects(other AABB) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// Union returns the smallest box enclosing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{
			min(b.Min[0], other.Min[0]),
			min(b.Min[1], other.Min[1]),
			min(b.Min[2], other.Min[2]),
		},
		Max: mgl64.Vec3{
			max(b.Max[0], other.Max[0]),
			max(b.Max[1], other.Max[1]),
			max(b.Max[2], other.Max[2]),
		},
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box on each axis.
func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the axis-aligned box enclosing b after applying the
// affine matrix m. All 8 corners are transformed and min/maxed, which stays
// correct under rotation (the result is conservative, not minimal).
func (b AABB) Transform(m mgl64.Mat4) AABB {
	var out AABB
	first := true
	for i := 0; i < 8; i++ {
		c := mgl64.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		p := m.Mul4x1(c.Vec4(1)).Vec3()
		if first {
			out.Min, out.Max = p, p
			first = false
			continue
		}
		for a := 0; a < 3; a++ {
			out.Min[a] = min(out.Min[a], p[a])
			out.Max[a] = max(out.Max[a], p[a])
		}
	}
	return out
}
