package state

// ReadableStates and WritableStates are the L2 store factories of the
// system overview: they produce readable/writable typed stores scoped to a
// single service, drawn from the top of a SavepointStack.
type ReadableStates struct {
	frame   *Frame
	service string
}

// WritableStates additionally permits mutation; constructing one against a
// frame backed by a read-only Container fails immediately.
type WritableStates struct {
	ReadableStates
}

// CreateReadableStates scopes a read-only store factory to service, backed
// by the stack's current top frame.
func CreateReadableStates(stack *SavepointStack, service string) *ReadableStates {
	return &ReadableStates{frame: stack.Peek(), service: service}
}

// CreateWritableStates scopes a mutable store factory to service. It
// returns ErrImmutable if the stack's top frame is backed by a read-only
// Container.
func CreateWritableStates(stack *SavepointStack, service string) (*WritableStates, error) {
	f := stack.Peek()
	if f.isReadOnly() {
		return nil, ErrImmutable
	}
	return &WritableStates{ReadableStates{frame: f, service: service}}, nil
}

// KVReader is the read-only view of a KVState exposed through
// ReadableStates; it has no Put/Remove so read-only access is enforced at
// compile time for typed callers, matching the container's read-only view.
type KVReader[K comparable, V any] struct {
	inner *KVState[K, V]
}

func (r KVReader[K, V]) Get(k K) (V, bool) { return r.inner.Get(k) }
func (r KVReader[K, V]) Contains(k K) bool { return r.inner.Contains(k) }
func (r KVReader[K, V]) Keys() []K         { return r.inner.Keys() }

// GetKVState returns the read-only KV store for (service, stateKey).
func GetKVState[K comparable, V any](r *ReadableStates, stateKey string) (KVReader[K, V], error) {
	n, err := r.frame.getNode(id{service: r.service, stateKey: stateKey})
	if err != nil {
		return KVReader[K, V]{}, err
	}
	kv, ok := n.(*KVState[K, V])
	if !ok {
		return KVReader[K, V]{}, ErrWrongKind
	}
	return KVReader[K, V]{inner: kv}, nil
}

// GetMutableKVState returns the writable KV store for (service, stateKey).
func GetMutableKVState[K comparable, V any](w *WritableStates, stateKey string) (*KVState[K, V], error) {
	n, err := w.frame.getNode(id{service: w.service, stateKey: stateKey})
	if err != nil {
		return nil, err
	}
	kv, ok := n.(*KVState[K, V])
	if !ok {
		return nil, ErrWrongKind
	}
	return kv, nil
}

// SingletonReader is the read-only view of a Singleton.
type SingletonReader[V any] struct {
	inner *Singleton[V]
}

func (r SingletonReader[V]) Get() (V, bool) { return r.inner.Get() }

// GetSingleton returns the read-only singleton for (service, stateKey).
func GetSingleton[V any](r *ReadableStates, stateKey string) (SingletonReader[V], error) {
	n, err := r.frame.getNode(id{service: r.service, stateKey: stateKey})
	if err != nil {
		return SingletonReader[V]{}, err
	}
	s, ok := n.(*Singleton[V])
	if !ok {
		return SingletonReader[V]{}, ErrWrongKind
	}
	return SingletonReader[V]{inner: s}, nil
}

// GetMutableSingleton returns the writable singleton for (service, stateKey).
func GetMutableSingleton[V any](w *WritableStates, stateKey string) (*Singleton[V], error) {
	n, err := w.frame.getNode(id{service: w.service, stateKey: stateKey})
	if err != nil {
		return nil, err
	}
	s, ok := n.(*Singleton[V])
	if !ok {
		return nil, ErrWrongKind
	}
	return s, nil
}

// QueueReader is the read-only view of a Queue.
type QueueReader[V any] struct {
	inner *Queue[V]
}

func (r QueueReader[V]) Peek() (V, bool) { return r.inner.Peek() }
func (r QueueReader[V]) Len() int        { return r.inner.Len() }

// GetQueue returns the read-only queue for (service, stateKey).
func GetQueue[V any](r *ReadableStates, stateKey string) (QueueReader[V], error) {
	n, err := r.frame.getNode(id{service: r.service, stateKey: stateKey})
	if err != nil {
		return QueueReader[V]{}, err
	}
	q, ok := n.(*Queue[V])
	if !ok {
		return QueueReader[V]{}, ErrWrongKind
	}
	return QueueReader[V]{inner: q}, nil
}

// GetMutableQueue returns the writable queue for (service, stateKey).
func GetMutableQueue[V any](w *WritableStates, stateKey string) (*Queue[V], error) {
	n, err := w.frame.getNode(id{service: w.service, stateKey: stateKey})
	if err != nil {
		return nil, err
	}
	q, ok := n.(*Queue[V])
	if !ok {
		return nil, ErrWrongKind
	}
	return q, nil
}
