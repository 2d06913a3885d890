package collection

import "sync"

// Store owns the current snapshot and serialises transitions between snapshots.
// Listeners see snapshots in commit order.
type Store struct {
	// commit is held across a transition and its fan-out. Listeners must not
	// call Update.
	commit sync.Mutex

	mu        sync.RWMutex
	current   Snapshot
	listeners []func(Snapshot)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the current snapshot with fn(current) and notifies listeners
// before the next transition may start.
func (s *Store) Update(fn func(Snapshot) Snapshot) Snapshot {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.mu.Lock()
	next := fn(s.current)
	s.current = next
	listeners := s.listeners
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(next)
	}
	return next
}

// Subscribe registers fn to receive every new snapshot.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
