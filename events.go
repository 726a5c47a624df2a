package sapling

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// AABBChangedEvent is published whenever a node's world-space AABB is
// refreshed.
type AABBChangedEvent struct {
	Entity donburi.Entity
	AABB   AABB
}

// AABBChanged is the donburi event type for AABB refreshes. Rendering
// backends subscribe to it for repaint-region tracking; events are queued
// and delivered on events.ProcessAllEvents (or AABBChanged.ProcessEvents).
var AABBChanged = events.NewEventType[AABBChangedEvent]()

// emitAABBChanged notifies both the registered listeners (synchronous) and
// the donburi event queue (delivered on ProcessEvents).
func (h *Hierarchy) emitAABBChanged(e donburi.Entity, box AABB) {
	for _, fn := range h.listeners {
		fn(e)
	}
	AABBChanged.Publish(h.world, AABBChangedEvent{Entity: e, AABB: box})
}
