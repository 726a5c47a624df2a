package sapling

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
)

// Motion animates one vector property of a node toward a target using
// gween tweens, one per axis. Sapling never schedules anything itself:
// callers drive the tween by calling Update with elapsed seconds, which in
// turn goes through the Hierarchy setters so dirty propagation works as
// for any other mutation.
type Motion struct {
	x, y, z *gween.Tween
	apply   func(mgl64.Vec3)
	done    bool
}

// NewMotion tweens e's local position from its current value to target
// over duration seconds.
func NewMotion(h *Hierarchy, e donburi.Entity, target mgl64.Vec3, duration float64, easing ease.TweenFunc) *Motion {
	from := h.LocalPosition(e)
	return newMotion(from, target, duration, easing, func(v mgl64.Vec3) {
		h.SetLocalPosition(e, v)
	})
}

// NewRotationMotion tweens e's local rotation from its current XYZ euler
// angles to target (radians) over duration seconds. Angles interpolate
// per axis; for arcs past pi prefer driving RotateLocal directly.
func NewRotationMotion(h *Hierarchy, e donburi.Entity, target mgl64.Vec3, duration float64, easing ease.TweenFunc) *Motion {
	q := h.LocalRotation(e)
	from := eulerXYZ(q)
	return newMotion(from, target, duration, easing, func(v mgl64.Vec3) {
		h.SetLocalEulerAngles(e, v)
	})
}

// NewScaleMotion tweens e's local scale from its current value to target
// over duration seconds.
func NewScaleMotion(h *Hierarchy, e donburi.Entity, target mgl64.Vec3, duration float64, easing ease.TweenFunc) *Motion {
	from := h.LocalScale(e)
	return newMotion(from, target, duration, easing, func(v mgl64.Vec3) {
		h.SetLocalScale(e, v)
	})
}

func newMotion(from, to mgl64.Vec3, duration float64, easing ease.TweenFunc, apply func(mgl64.Vec3)) *Motion {
	d := float32(duration)
	return &Motion{
		x:     gween.New(float32(from[0]), float32(to[0]), d, easing),
		y:     gween.New(float32(from[1]), float32(to[1]), d, easing),
		z:     gween.New(float32(from[2]), float32(to[2]), d, easing),
		apply: apply,
	}
}

// eulerXYZ extracts XYZ euler angles (radians) from a rotation, the
// inverse of mgl64.AnglesToQuat with the XYZ order. At gimbal lock
// (|y| = pi/2) the x and z twists are indistinguishable and fold into x.
func eulerXYZ(q mgl64.Quat) mgl64.Vec3 {
	m := q.Mat4()
	sy := m.At(0, 2)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y := math.Asin(sy)
	if math.Abs(sy) > 1-1e-9 {
		return mgl64.Vec3{math.Atan2(m.At(1, 0), m.At(1, 1)), y, 0}
	}
	x := math.Atan2(-m.At(1, 2), m.At(2, 2))
	z := math.Atan2(-m.At(0, 1), m.At(0, 0))
	return mgl64.Vec3{x, y, z}
}

// Update advances the tween by dt seconds and applies the interpolated
// value. Returns true once the motion has finished; further calls are
// no-ops.
func (m *Motion) Update(dt float64) bool {
	if m.done {
		return true
	}
	fdt := float32(dt)
	x, fx := m.x.Update(fdt)
	y, fy := m.y.Update(fdt)
	z, fz := m.z.Update(fdt)
	m.apply(mgl64.Vec3{float64(x), float64(y), float64(z)})
	m.done = fx && fy && fz
	return m.done
}
