package citations

import "sync"

// Navigator is the publish/subscribe channel between citation chips and the
// document viewer. The chip never calls the viewer directly: it announces a
// page and every subscriber decides what to do with it.
type Navigator struct {
	mu   sync.Mutex
	subs []func(page int)
}

// NewNavigator returns an empty channel.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Subscribe registers a callback for page announcements. Callbacks run on
// the announcing goroutine and must not block.
func (n *Navigator) Subscribe(fn func(page int)) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	n.subs = append(n.subs, fn)
	n.mu.Unlock()
}

// Announce notifies all subscribers of a navigation to the given page.
// Announcements for pages < 1 are dropped; inert citations never navigate.
func (n *Navigator) Announce(page int) {
	if page < 1 {
		return
	}
	n.mu.Lock()
	subs := make([]func(page int), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()
	for _, fn := range subs {
		fn(page)
	}
}
