package records

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/status"
)

func testPayer() common.AccountID { return common.AccountID{Shard: 0, Realm: 0, Num: 1001} }

func testUserID() common.TransactionID {
	return common.TransactionID{Payer: testPayer(), ValidStart: common.ConsensusTimestamp{Seconds: 1000}, Nonce: 0}
}

func TestListNonceMonotonicity(t *testing.T) {
	userID := testUserID()
	tracker := NewTimeTracker(common.ConsensusTimestamp{Seconds: 1000}, 10, 10)
	user := NewBuilder(KindUser, userID, userID)
	user.Status = status.Success
	list := NewList(tracker, user)

	p1 := NewBuilder(KindPrecedingLimited, userID, userID)
	require.NoError(t, list.AddPreceding(p1))
	f1 := NewBuilder(KindFollowingOrdinary, userID, userID)
	require.NoError(t, list.AddFollowing(f1))
	f2 := NewBuilder(KindFollowingOrdinary, userID, userID)
	require.NoError(t, list.AddFollowing(f2))

	require.Equal(t, userID.Nonce+1, p1.TransactionID.Nonce)
	require.Equal(t, userID.Nonce+2, f1.TransactionID.Nonce)
	require.Equal(t, userID.Nonce+3, f2.TransactionID.Nonce)
}

func TestListFinalizeTimestampOrdering(t *testing.T) {
	userID := testUserID()
	base := common.ConsensusTimestamp{Seconds: 2000}
	tracker := NewTimeTracker(base, 10, 10)
	user := NewBuilder(KindUser, userID, userID)
	user.Status = status.Success
	list := NewList(tracker, user)

	p1 := NewBuilder(KindPrecedingLimited, userID, userID)
	require.NoError(t, list.AddPreceding(p1))
	p2 := NewBuilder(KindPrecedingLimited, userID, userID)
	require.NoError(t, list.AddPreceding(p2))

	f1 := NewBuilder(KindFollowingOrdinary, userID, userID)
	require.NoError(t, list.AddFollowing(f1))
	f2 := NewBuilder(KindFollowingOrdinary, userID, userID)
	require.NoError(t, list.AddFollowing(f2))

	records := list.Finalize()
	require.Len(t, records, 5)

	// Invariant: consensus times strictly increasing in emission order.
	for i := 1; i < len(records); i++ {
		require.True(t, records[i-1].ConsensusTimestamp.Before(records[i].ConsensusTimestamp))
	}
	// The user record sits at the base timestamp.
	require.Equal(t, base, records[2].ConsensusTimestamp)
}

func TestRevertChildrenOfDropsRemovableKeepsOrdinary(t *testing.T) {
	userID := testUserID()
	tracker := NewTimeTracker(common.ConsensusTimestamp{Seconds: 3000}, 10, 10)
	user := NewBuilder(KindUser, userID, userID)
	list := NewList(tracker, user)

	removable := NewBuilder(KindFollowingRemovable, userID, userID)
	require.NoError(t, list.AddFollowing(removable))
	ordinary := NewBuilder(KindFollowingOrdinary, userID, userID)
	require.NoError(t, list.AddFollowing(ordinary))

	list.RevertChildrenOf(userID, status.HandlerFailure)

	require.True(t, removable.ShouldNotBeExternalized())
	require.False(t, ordinary.ShouldNotBeExternalized())
	require.Equal(t, status.HandlerFailure, ordinary.Status)
}

func TestAddPrecedingRespectsBudget(t *testing.T) {
	userID := testUserID()
	tracker := NewTimeTracker(common.ConsensusTimestamp{Seconds: 4000}, 1, 10)
	user := NewBuilder(KindUser, userID, userID)
	list := NewList(tracker, user)

	require.NoError(t, list.AddPreceding(NewBuilder(KindPrecedingLimited, userID, userID)))
	require.ErrorIs(t, list.AddPreceding(NewBuilder(KindPrecedingLimited, userID, userID)), ErrMaxChildRecordsExceeded)
}

func TestCacheIdempotence(t *testing.T) {
	c := NewCache(128, 4096)
	id := testUserID()
	node := common.AccountID{Shard: 0, Realm: 0, Num: 3}
	r := Record{TransactionID: id, Status: status.Success}

	c.Add(id, r, node)
	require.Equal(t, DuplicateSameNode, c.HasDuplicate(id, node))

	// add(r); add(r) == add(r): a second Add must not change the cached
	// submitting node or status.
	c.Add(id, Record{TransactionID: id, Status: status.HandlerFailure}, common.AccountID{Shard: 0, Realm: 0, Num: 9})
	require.Equal(t, DuplicateSameNode, c.HasDuplicate(id, node))

	other := common.AccountID{Shard: 0, Realm: 0, Num: 9}
	require.Equal(t, DuplicateDifferentNode, c.HasDuplicate(id, other))
}

func TestCachePurgeEvictsExpired(t *testing.T) {
	c := NewCache(128, 4096)
	id := testUserID()
	node := common.AccountID{Shard: 0, Realm: 0, Num: 3}
	c.Add(id, Record{TransactionID: id, Status: status.Success}, node)

	c.Purge(id.ValidStart.Seconds + DefaultTTLSeconds + 1)
	require.False(t, c.Contains(id))
}
