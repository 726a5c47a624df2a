// Package sapling is the transform-and-hierarchy engine of an ECS-backed
// 2D/3D scene graph.
//
// Sapling maintains a tree of spatial nodes stored as [Donburi] entities,
// lazily recomputes local and world affine transforms, keeps world-space
// bounding boxes consistent, and produces a stable z-ordered paint order.
// It does not render anything itself: rasterization backends, shape geometry
// generation, and selector matching are external collaborators.
//
// # Quick start
//
// Create a donburi world, a [Hierarchy] service over it, and nodes with
// [NewNode]:
//
//	world := donburi.NewWorld()
//	h := sapling.NewHierarchy(world)
//
//	root := sapling.NewNode(world, sapling.WithTag("root"))
//	hero := sapling.NewNode(world, sapling.WithTag("hero"))
//	h.Attach(hero, root)
//
//	h.SetLocalPosition(hero, sapling.V(10, 0, 0))
//	pos := h.Position(hero) // world-space, recomputed on demand
//
// # Dirty propagation
//
// Mutators push dirty bits eagerly down the affected subtree, while matrix
// values are recomputed lazily on first read. A read of any node costs
// O(depth); reading every node a mutation touched costs O(subtree) total.
// World-space bounding boxes are the exception: they are refreshed
// synchronously during the dirty cascade so consumers always observe a
// current bound, and an [AABBChanged] event fires for each refresh.
//
// # Paint order
//
// [Hierarchy.Sorted] returns a cached flattened pre-order list with siblings
// stable-sorted by ascending z-index; equal z-indices keep insertion order.
//
// All operations are synchronous and run on the caller's goroutine. A
// Hierarchy must not be used from multiple goroutines without external
// locking.
//
// [Donburi]: https://github.com/yohamta/donburi
package sapling
