package corebound

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/dispatch"
)

type feeScheduleKey struct {
	functionality dispatch.Functionality
	subType       int
}

// FeeScheduleCache fronts a slow fee-schedule source (typically a file or
// mirror-node read) with an LRU of the most recently used schedules.
// Contains never promotes the checked entry, which matters
// for FeeScheduleCache's staleness probe: checking whether a schedule is
// cached must not itself extend that schedule's lifetime.
type FeeScheduleCache struct {
	mu     sync.Mutex
	cache  *lru.Cache
	source func(functionality dispatch.Functionality, consensusTime common.ConsensusTimestamp, subType int) dispatch.Fees
}

// NewFeeScheduleCache returns a cache of the given capacity backed by
// source, consulted on every miss.
func NewFeeScheduleCache(capacity int, source func(dispatch.Functionality, common.ConsensusTimestamp, int) dispatch.Fees) (*FeeScheduleCache, error) {
	c, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &FeeScheduleCache{cache: c, source: source}, nil
}

// Contains reports whether functionality/subType is currently cached,
// without affecting its recency.
func (f *FeeScheduleCache) Contains(functionality dispatch.Functionality, subType int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache.Contains(feeScheduleKey{functionality, subType})
}

// GetFeeData implements dispatch.FeeManager by consulting the cache first
// and falling back to source on a miss.
func (f *FeeScheduleCache) GetFeeData(functionality dispatch.Functionality, consensusTime common.ConsensusTimestamp, subType int) dispatch.Fees {
	key := feeScheduleKey{functionality, subType}

	f.mu.Lock()
	if v, ok := f.cache.Get(key); ok {
		f.mu.Unlock()
		return v.(dispatch.Fees)
	}
	f.mu.Unlock()

	fees := f.source(functionality, consensusTime, subType)

	f.mu.Lock()
	f.cache.Add(key, fees)
	f.mu.Unlock()
	return fees
}

// CreateFeeCalculator implements dispatch.FeeManager.
func (f *FeeScheduleCache) CreateFeeCalculator(body []byte, payerKey []byte, functionality dispatch.Functionality, numSigs, sigMapSize int, consensusTime common.ConsensusTimestamp, subType int) dispatch.FeeCalculator {
	return cachedFeeCalculator{cache: f, functionality: functionality, consensusTime: consensusTime, subType: subType}
}

type cachedFeeCalculator struct {
	cache         *FeeScheduleCache
	functionality dispatch.Functionality
	consensusTime common.ConsensusTimestamp
	subType       int
}

func (c cachedFeeCalculator) Calculate() dispatch.Fees {
	return c.cache.GetFeeData(c.functionality, c.consensusTime, c.subType)
}
