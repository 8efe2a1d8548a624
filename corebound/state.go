package corebound

import (
	"sync"

	"github.com/hedera-core/txcore/core/state"
)

// StateAdapter owns the single working Container the platform's merkle
// persistence layer is built on, and hands out the copy-on-read snapshot
// queries need while the round executor keeps mutating the original.
//
// Registration of services' state nodes happens once, at startup, before
// any round runs; StateAdapter itself holds no service-specific knowledge.
type StateAdapter struct {
	mu      sync.RWMutex
	working *state.Container
	latest  *state.Container
}

// NewStateAdapter returns an adapter around a freshly created, empty
// container, as happens at genesis. Use Restore instead when recovering
// from a saved container.
func NewStateAdapter() *StateAdapter {
	c := state.NewContainer()
	return &StateAdapter{working: c, latest: c}
}

// Restore wraps an already-populated container, as happens when a node
// starts from a saved state snapshot rather than genesis.
func Restore(c *state.Container) *StateAdapter {
	return &StateAdapter{working: c, latest: c}
}

// Working returns the mutable container a new SavepointStack should be
// built on for the next round.
func (a *StateAdapter) Working() *state.Container {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.working
}

// Snapshot atomically clones the working container to an immutable
// sibling and publishes it as the container concurrent read-only queries
// observe through Latest. Call after each round completes.
func (a *StateAdapter) Snapshot() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.latest = a.working.Copy()
}

// Latest returns the most recently published read-only snapshot, safe to
// query concurrently with the next round's mutation of Working. Before the
// first Snapshot call it returns the working container itself, which is not
// read-only.
func (a *StateAdapter) Latest() *state.Container {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// CreateReadableStates opens a query-only view of service against the
// latest published snapshot.
func (a *StateAdapter) CreateReadableStates(service string) *state.ReadableStates {
	stack := state.NewSavepointStack(a.Latest())
	return state.CreateReadableStates(stack, service)
}
