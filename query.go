package sapling

import (
	"errors"

	"github.com/yohamta/donburi"
)

// ErrNoSelectorEngine is returned by the selector queries when no engine
// was configured.
var ErrNoSelectorEngine = errors.New("sapling: no selector engine configured")

// TreeAdapter is the traversal contract sapling exposes to an external
// selector-matching library: parent and child navigation plus tag and
// attribute lookup. Hierarchy itself satisfies it.
type TreeAdapter interface {
	Parent(e donburi.Entity) (donburi.Entity, bool)
	Children(e donburi.Entity) []donburi.Entity
	Tag(e donburi.Entity) string
	Attribute(e donburi.Entity, name string) (string, bool)
}

// SelectorEngine matches hierarchy nodes against a CSS-like selector
// string. Implementations live outside sapling; they receive the root and
// a TreeAdapter and return matches in document order.
type SelectorEngine interface {
	Match(selector string, root donburi.Entity, tree TreeAdapter) ([]donburi.Entity, error)
}

var _ TreeAdapter = (*Hierarchy)(nil)

// QuerySelectorAll returns every node under root matching selector,
// delegating to the configured SelectorEngine.
func (h *Hierarchy) QuerySelectorAll(root donburi.Entity, selector string) ([]donburi.Entity, error) {
	if h.selector == nil {
		return nil, ErrNoSelectorEngine
	}
	return h.selector.Match(selector, root, h)
}

// QuerySelector returns the first node under root matching selector, in
// document order. The boolean is false when nothing matched.
func (h *Hierarchy) QuerySelector(root donburi.Entity, selector string) (donburi.Entity, bool, error) {
	var zero donburi.Entity
	matches, err := h.QuerySelectorAll(root, selector)
	if err != nil {
		return zero, false, err
	}
	if len(matches) == 0 {
		return zero, false, nil
	}
	return matches[0], true, nil
}
