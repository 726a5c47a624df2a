package sapling

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi"
)

// DebugDrawAABBs strokes the world-space AABB of every renderable node
// under root onto screen, projected onto the X/Y plane. Debug aid for 2D
// scenes; rendering proper is out of sapling's scope.
func DebugDrawAABBs(screen *ebiten.Image, h *Hierarchy, root donburi.Entity, clr color.Color) {
	h.Visit(root, func(e donburi.Entity) bool {
		entry := h.entry(e)
		if entry.HasComponent(Renderable) {
			b := Renderable.Get(entry).AABB
			vector.StrokeRect(screen,
				float32(b.Min[0]), float32(b.Min[1]),
				float32(b.Max[0]-b.Min[0]), float32(b.Max[1]-b.Min[1]),
				1, clr, false)
		}
		return false
	})
}
