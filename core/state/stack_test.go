package state

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestContainer(t testing.TB) *Container {
	c := NewContainer()
	require.NoError(t, RegisterKV[string, int](c, "token", "balances"))
	require.NoError(t, RegisterSingleton[int](c, "token", "totalSupply"))
	require.NoError(t, RegisterQueue[string](c, "consensus", "topicMessages"))
	return c
}

func TestSavepointStackBaseFrameNeverNil(t *testing.T) {
	stack := NewSavepointStack(newTestContainer(t))
	require.NotNil(t, stack.Peek())
	require.Equal(t, 1, stack.Depth())
}

func TestCommitRollbackRequireDepthTwo(t *testing.T) {
	stack := NewSavepointStack(newTestContainer(t))
	require.ErrorIs(t, stack.Commit(), ErrEmptyStack)
	require.ErrorIs(t, stack.Rollback(), ErrEmptyStack)
}

func TestSavepointRoundtrip(t *testing.T) {
	// Law: begin -> (arbitrary writes) -> rollback leaves the stack top
	// equal to the pre-begin top.
	stack := NewSavepointStack(newTestContainer(t))
	w, err := CreateWritableStates(stack, "token")
	require.NoError(t, err)
	kv, err := GetMutableKVState[string, int](w, "balances")
	require.NoError(t, err)
	kv.Put("alice", 100)
	require.NoError(t, stack.CommitFullStack())

	r := CreateReadableStates(stack, "token")
	rkv, err := GetKVState[string, int](r, "balances")
	require.NoError(t, err)
	before, ok := rkv.Get("alice")
	require.True(t, ok)

	stack.CreateSavepoint()
	w2, err := CreateWritableStates(stack, "token")
	require.NoError(t, err)
	kv2, err := GetMutableKVState[string, int](w2, "balances")
	require.NoError(t, err)
	kv2.Put("alice", 999)
	kv2.Put("bob", 1)
	require.NoError(t, stack.Rollback())

	r2 := CreateReadableStates(stack, "token")
	rkv2, err := GetKVState[string, int](r2, "balances")
	require.NoError(t, err)
	after, ok := rkv2.Get("alice")
	require.True(t, ok)
	require.Equal(t, before, after)
	_, hasBob := rkv2.Get("bob")
	require.False(t, hasBob)
	require.Equal(t, 1, stack.Depth())
}

func TestCommitAssociativity(t *testing.T) {
	// Law: begin; write(k,v); commit; begin; rollback equals write(k,v)
	// on the base frame.
	c := newTestContainer(t)
	stack := NewSavepointStack(c)

	stack.CreateSavepoint()
	w, err := CreateWritableStates(stack, "token")
	require.NoError(t, err)
	kv, err := GetMutableKVState[string, int](w, "balances")
	require.NoError(t, err)
	kv.Put("alice", 42)
	require.NoError(t, stack.Commit())

	stack.CreateSavepoint()
	require.NoError(t, stack.Rollback())

	r := CreateReadableStates(stack, "token")
	rkv, err := GetKVState[string, int](r, "balances")
	require.NoError(t, err)
	v, ok := rkv.Get("alice")
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.Equal(t, 1, stack.Depth())
}

func TestRevertAtomicity(t *testing.T) {
	// Invariant: reverting a user transaction leaves state equal to the
	// start plus any preceding-child commits only.
	c := newTestContainer(t)
	stack := NewSavepointStack(c)

	// A preceding child commits fully to the base.
	preceding := stack.CreateSavepoint()
	w, err := CreateWritableStates(stack, "token")
	require.NoError(t, err)
	kv, err := GetMutableKVState[string, int](w, "balances")
	require.NoError(t, err)
	kv.Put("precedingWrite", 1)
	_ = preceding
	require.NoError(t, stack.CommitFullStack())
	require.Equal(t, 1, stack.Depth())

	// The user transaction's own savepoint reverts.
	stack.CreateSavepoint()
	w2, err := CreateWritableStates(stack, "token")
	require.NoError(t, err)
	kv2, err := GetMutableKVState[string, int](w2, "balances")
	require.NoError(t, err)
	kv2.Put("userWrite", 2)
	require.NoError(t, stack.Rollback())

	r := CreateReadableStates(stack, "token")
	rkv, err := GetKVState[string, int](r, "balances")
	require.NoError(t, err)

	_, hasPreceding := rkv.Get("precedingWrite")
	require.True(t, hasPreceding, "preceding commit must survive the user revert")

	_, hasUser := rkv.Get("userWrite")
	require.False(t, hasUser, "reverted user write must not survive")
}

func TestPrecedingCommitmentLeavesFreshEmptySavepoint(t *testing.T) {
	// After a successful preceding dispatch and before the next child
	// dispatches, depth()==1 and a fresh savepoint is opened for
	// subsequent work.
	stack := NewSavepointStack(newTestContainer(t))
	stack.CreateSavepoint()
	require.NoError(t, stack.CommitFullStack())
	require.Equal(t, 1, stack.Depth())

	fresh := stack.CreateSavepoint()
	require.Equal(t, 2, stack.Depth())
	require.NotNil(t, fresh)
}

func TestReadOnlyContainerRejectsWrites(t *testing.T) {
	c := newTestContainer(t)
	stack := NewSavepointStack(c)
	w, err := CreateWritableStates(stack, "token")
	require.NoError(t, err)
	kv, err := GetMutableKVState[string, int](w, "balances")
	require.NoError(t, err)
	kv.Put("alice", 7)
	require.NoError(t, stack.CommitFullStack())

	snapshot := c.Copy()
	require.True(t, snapshot.ReadOnly())
	roStack := NewSavepointStack(snapshot)
	_, err = CreateWritableStates(roStack, "token")
	require.ErrorIs(t, err, ErrImmutable)
}

func TestQueueOverlayOrdering(t *testing.T) {
	c := NewContainer()
	require.NoError(t, RegisterQueue[string](c, "svc", "q"))
	stack := NewSavepointStack(c)

	w, err := CreateWritableStates(stack, "svc")
	require.NoError(t, err)
	q, err := GetMutableQueue[string](w, "q")
	require.NoError(t, err)
	q.Add("a")
	q.Add("b")
	require.NoError(t, stack.CommitFullStack())

	stack.CreateSavepoint()
	w2, err := CreateWritableStates(stack, "svc")
	require.NoError(t, err)
	overlayQ, err := GetMutableQueue[string](w2, "q")
	require.NoError(t, err)

	v, ok := overlayQ.Poll()
	require.True(t, ok)
	require.Equal(t, "a", v)
	overlayQ.Add("c")
	require.Equal(t, []string{"b", "c"}, overlayQ.remaining())
	require.NoError(t, stack.Commit())

	r := CreateReadableStates(stack, "svc")
	rq, err := GetQueue[string](r, "q")
	require.NoError(t, err)
	require.Equal(t, 2, rq.Len())
}

// TestRapidSavepointRoundtrip is a property-based law test:
// for any sequence of writes inside a savepoint, rolling it back always
// restores the pre-savepoint view exactly.
func TestRapidSavepointRoundtrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := NewContainer()
		require.NoError(rt, RegisterKV[int, int](c, "svc", "kv"))
		stack := NewSavepointStack(c)

		w, err := CreateWritableStates(stack, "svc")
		require.NoError(rt, err)
		kv, err := GetMutableKVState[int, int](w, "kv")
		require.NoError(rt, err)

		seedKeys := rapid.SliceOfN(rapid.IntRange(0, 20), 0, 10).Draw(rt, "seed")
		for _, k := range seedKeys {
			kv.Put(k, k*2)
		}
		before := snapshotKV(kv, seedKeys)

		stack.CreateSavepoint()
		w2, err := CreateWritableStates(stack, "svc")
		require.NoError(rt, err)
		kv2, err := GetMutableKVState[int, int](w2, "kv")
		require.NoError(rt, err)

		ops := rapid.SliceOfN(rapid.IntRange(0, 30), 0, 15).Draw(rt, "ops")
		for _, k := range ops {
			kv2.Put(k, -1)
		}
		require.NoError(rt, stack.Rollback())

		r := CreateReadableStates(stack, "svc")
		rkv, err := GetKVState[int, int](r, "kv")
		require.NoError(rt, err)
		after := snapshotKV(rkv, seedKeys)
		require.Equal(rt, before, after)
	})
}

func snapshotKV[K comparable, V any](reader interface{ Get(K) (V, bool) }, keys []K) map[K]V {
	out := make(map[K]V)
	for _, k := range keys {
		if v, ok := reader.Get(k); ok {
			out[k] = v
		}
	}
	return out
}
