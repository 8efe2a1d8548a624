package state

import (
	"sync"

	"github.com/hedera-core/txcore/common"
)

// Container is the state container: a mapping
// serviceName -> (stateKey -> StateNode). It is the root of every
// SavepointStack's frame chain; registered nodes hold real data, not an
// overlay. A Container produced by Copy is marked readOnly and rejects
// every mutation attempt with ErrImmutable.
type Container struct {
	mu       sync.RWMutex
	nodes    map[id]node
	readOnly bool
	modified *common.ShrinkingMap[id, struct{}]
}

// NewContainer returns an empty, mutable state container, as created at
// genesis.
func NewContainer() *Container {
	return &Container{
		nodes:    make(map[id]node),
		modified: common.NewShrinkingMap[id, struct{}](256),
	}
}

// RegisterKV registers a new, empty KVState under (service, stateKey). It
// returns ErrDuplicateState if the pair is already registered.
func RegisterKV[K comparable, V any](c *Container, service, stateKey string) error {
	return register(c, service, stateKey, node(newRootKVState[K, V]()))
}

// RegisterSingleton registers a new, empty Singleton under (service, stateKey).
func RegisterSingleton[V any](c *Container, service, stateKey string) error {
	return register(c, service, stateKey, node(newRootSingleton[V]()))
}

// RegisterQueue registers a new, empty Queue under (service, stateKey).
func RegisterQueue[V any](c *Container, service, stateKey string) error {
	return register(c, service, stateKey, node(newRootQueue[V]()))
}

func register(c *Container, service, stateKey string, n node) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := id{service: service, stateKey: stateKey}
	if _, exists := c.nodes[key]; exists {
		return ErrDuplicateState
	}
	c.nodes[key] = n
	return nil
}

func (c *Container) node(key id) (node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[key]
	if !ok {
		return nil, ErrUnknownState
	}
	return n, nil
}

func (c *Container) markModified(key id) {
	if c.readOnly {
		return
	}
	c.mu.Lock()
	c.modified.Set(key, struct{}{})
	c.mu.Unlock()
}

// ModifiedServiceKeys reports every (service, stateKey) pair written since
// the container was created.
func (c *Container) ModifiedServiceKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, c.modified.Size())
	for _, k := range c.modified.Keys() {
		out = append(out, k.service+"/"+k.stateKey)
	}
	return out
}

// ReadOnly reports whether mutation through this container is rejected.
func (c *Container) ReadOnly() bool { return c.readOnly }

// Copy atomically clones the working container to an immutable sibling,
// used to serve concurrent read-only queries while the round executor
// keeps mutating the original.
func (c *Container) Copy() *Container {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Container{
		nodes:    make(map[id]node, len(c.nodes)),
		readOnly: true,
		modified: common.NewShrinkingMap[id, struct{}](256),
	}
	for k, n := range c.nodes {
		clone.nodes[k] = cloneNode(n)
	}
	return clone
}
