package sapling

import (
	"fmt"
	"os"
	"time"

	"github.com/yohamta/donburi"
)

// debugMaxTreeDepth is the depth past which Attach warns about a
// suspiciously deep hierarchy.
const debugMaxTreeDepth = 32

// debugMaxChildCount warns about nodes accumulating very wide child lists.
const debugMaxChildCount = 1000

// syncDebug is the instrumented variant of Sync: it times the pass and
// reports how many nodes were actually visited (frozen subtrees are
// skipped).
func (h *Hierarchy) syncDebug(root donburi.Entity) {
	start := time.Now()
	n := h.syncNode(root)
	_, _ = fmt.Fprintf(os.Stderr, "[sapling] sync: %d nodes in %v\n", n, time.Since(start))
}

func (h *Hierarchy) debugCheckTreeDepth(e donburi.Entity) {
	depth := 1
	sp := spatialOf(h.entry(e))
	for sp.HasParent {
		depth++
		sp = spatialOf(h.entry(sp.Parent))
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[sapling] warning: tree depth %d exceeds %d (entity %v)\n",
			depth, debugMaxTreeDepth, e)
	}
}

func (h *Hierarchy) debugCheckChildCount(e donburi.Entity) {
	n := len(spatialOf(h.entry(e)).children)
	if n > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[sapling] warning: entity %v has %d children (threshold %d)\n",
			e, n, debugMaxChildCount)
	}
}
