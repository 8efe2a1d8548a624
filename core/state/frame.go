package state

import "sync"

// Frame is one level of the savepoint stack: a write-through overlay over
// the frame below it, or — for the base frame — a direct view of the
// round's working Container.
type Frame struct {
	mu        sync.Mutex
	container *Container // non-nil only for the base frame
	below     *Frame     // non-nil for every overlay frame
	overlays  map[id]node
}

func newBaseFrame(c *Container) *Frame {
	return &Frame{container: c}
}

func newOverlayFrame(below *Frame) *Frame {
	return &Frame{below: below, overlays: make(map[id]node)}
}

// getNode returns the node this frame sees for key, lazily creating an
// overlay the first time an overlay frame's callers touch it.
func (f *Frame) getNode(key id) (node, error) {
	if f.container != nil {
		return f.container.node(key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.overlays[key]; ok {
		return n, nil
	}
	base, err := f.below.getNode(key)
	if err != nil {
		return nil, err
	}
	overlay := base.newOverlay()
	f.overlays[key] = overlay
	return overlay, nil
}

// isReadOnly reports whether mutation through this frame is forbidden,
// walking down to the base container.
func (f *Frame) isReadOnly() bool {
	if f.container != nil {
		return f.container.readOnly
	}
	return f.below.isReadOnly()
}

// commit merges every modified overlay in this frame into the frame below,
// in a deterministic (sorted) key order — the order does
// not affect correctness, since each key is written at most once per
// frame, but a fixed order keeps behaviour reproducible across replicas.
func (f *Frame) commit() error {
	if f.container != nil {
		return ErrEmptyStack
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range sortedIDs(f.overlays) {
		n := f.overlays[key]
		if !n.modified() {
			continue
		}
		baseNode, err := f.below.getNode(key)
		if err != nil {
			return err
		}
		n.commitInto(baseNode)
		if f.below.container != nil {
			f.below.container.markModified(key)
		}
	}
	return nil
}

func sortedIDs(m map[id]node) []id {
	keys := make([]id, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion order from a Go map is non-deterministic; sort by the
	// (service, stateKey) primary key so commit order is reproducible.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func less(a, b id) bool {
	if a.service != b.service {
		return a.service < b.service
	}
	return a.stateKey < b.stateKey
}
