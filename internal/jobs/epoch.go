package jobs

import "sync/atomic"

// EpochGuard identifies the current fetch session. Async work captures the
// epoch when it starts and drops its result once the epoch has moved on.
type EpochGuard struct {
	current atomic.Uint64
}

// Current returns the active epoch.
func (g *EpochGuard) Current() uint64 {
	return g.current.Load()
}

// BeginNewRun advances to a fresh epoch and returns it.
func (g *EpochGuard) BeginNewRun() uint64 {
	return g.current.Add(1)
}

// IsCurrent reports whether epoch is still the active one.
func (g *EpochGuard) IsCurrent(epoch uint64) bool {
	return g.current.Load() == epoch
}
