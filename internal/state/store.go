package state

import "sync"

// Store owns one App value and funnels every mutation through Reduce.
// Dispatch is safe to call from tea.Cmd goroutines; views read snapshots.
type Store struct {
	mu    sync.RWMutex
	state App
}

// NewStore returns a store holding the initial default state.
func NewStore() *Store {
	return &Store{state: Initial()}
}

// Dispatch applies an action. Unknown actions are a no-op.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.mu.Unlock()
}

// Snapshot returns the current state value. Slices inside the snapshot are
// never mutated after publication, so callers may keep it as long as needed.
func (s *Store) Snapshot() App {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
