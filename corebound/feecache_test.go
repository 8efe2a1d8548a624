package corebound

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/dispatch"
)

func TestFeeScheduleCacheMissThenHit(t *testing.T) {
	calls := 0
	source := func(functionality dispatch.Functionality, consensusTime common.ConsensusTimestamp, subType int) dispatch.Fees {
		calls++
		return dispatch.Fees{NetworkFee: 10}
	}

	cache, err := NewFeeScheduleCache(8, source)
	require.NoError(t, err)

	require.False(t, cache.Contains("CryptoTransfer", 0))

	fees := cache.GetFeeData("CryptoTransfer", common.ConsensusTimestamp{}, 0)
	require.Equal(t, uint64(10), fees.NetworkFee)
	require.Equal(t, 1, calls)

	require.True(t, cache.Contains("CryptoTransfer", 0))

	fees = cache.GetFeeData("CryptoTransfer", common.ConsensusTimestamp{}, 0)
	require.Equal(t, uint64(10), fees.NetworkFee)
	require.Equal(t, 1, calls, "second GetFeeData must hit the cache, not call source again")
}

func TestFeeScheduleCacheContainsDoesNotEvictDifferentKeys(t *testing.T) {
	source := func(functionality dispatch.Functionality, consensusTime common.ConsensusTimestamp, subType int) dispatch.Fees {
		return dispatch.Fees{NetworkFee: 1}
	}
	cache, err := NewFeeScheduleCache(8, source)
	require.NoError(t, err)

	cache.GetFeeData("A", common.ConsensusTimestamp{}, 0)
	cache.GetFeeData("B", common.ConsensusTimestamp{}, 0)
	require.True(t, cache.Contains("A", 0))
	require.True(t, cache.Contains("B", 0))
}

func TestCreateFeeCalculator(t *testing.T) {
	source := func(functionality dispatch.Functionality, consensusTime common.ConsensusTimestamp, subType int) dispatch.Fees {
		return dispatch.Fees{NodeFee: 5}
	}
	cache, err := NewFeeScheduleCache(4, source)
	require.NoError(t, err)

	calc := cache.CreateFeeCalculator(nil, nil, "CryptoTransfer", 1, 1, common.ConsensusTimestamp{}, 0)
	require.Equal(t, uint64(5), calc.Calculate().NodeFee)
}
