package records

import (
	"encoding/binary"
	"sync"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/common/lru"
)

// DuplicateKind classifies a hasDuplicate result.
type DuplicateKind int

const (
	// DuplicateNone means no prior entry exists for the transaction id.
	DuplicateNone DuplicateKind = iota
	// DuplicateSameNode means the same submitting node already has an
	// entry; this becomes DUPLICATE_TRANSACTION without re-execution.
	DuplicateSameNode
	// DuplicateDifferentNode means a different node's submission is already
	// cached; policy may allow this one to be (re)processed.
	DuplicateDifferentNode
)

// DefaultTTLSeconds is the typical entry lifetime used by Purge.
const DefaultTTLSeconds = 180

// entry is the record cache's value type, held both in the bounded LRU
// index (for fast key iteration at eviction time) and serialised into the
// fastcache-backed blob store, for bounded total memory.
type entry struct {
	status          []byte // serialized status.Code, small
	submittingNode  common.AccountID
	validStartSec   int64
}

// Cache is the global (payer, validStart, nonce) -> entry index used for
// duplicate detection. A single cache-wide read/write lock guards it;
// entries are not partitioned by (payer, validStart).
type Cache struct {
	mu sync.RWMutex

	index *lru.BasicLRU[common.TransactionID, entry]
	blobs *fastcache.Cache

	ttlSeconds int64
}

// NewCache returns an empty cache bounded to maxEntries index slots and a
// fastcache blob store of the given size in bytes (fastcache rounds up to
// its internal bucket granularity).
func NewCache(maxEntries int, blobBytes int) *Cache {
	return &Cache{
		index:      lru.NewBasicLRU[common.TransactionID, entry](maxEntries),
		blobs:      fastcache.New(blobBytes),
		ttlSeconds: DefaultTTLSeconds,
	}
}

// Add inserts r's status and submitting node under its transaction id. Add
// is a no-op if the id is already present — caching must be idempotent.
func (c *Cache) Add(id common.TransactionID, r Record, submittingNode common.AccountID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index.Peek(id); ok {
		return
	}
	e := entry{
		status:         []byte(r.Status.String()),
		submittingNode: submittingNode,
		validStartSec:  id.ValidStart.Seconds,
	}
	c.index.Add(id, e)
	c.blobs.Set(cacheKey(id), e.status)
}

// HasDuplicate reports whether id is already cached, and if so, whether the
// submission came from the same node.
func (c *Cache) HasDuplicate(id common.TransactionID, submittingNode common.AccountID) DuplicateKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.index.Peek(id)
	if !ok {
		return DuplicateNone
	}
	if e.submittingNode == submittingNode {
		return DuplicateSameNode
	}
	return DuplicateDifferentNode
}

// Contains reports whether id has any cache entry, regardless of node.
func (c *Cache) Contains(id common.TransactionID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.Contains(id)
}

// Purge drops every entry whose validStart + ttl is before
// currentConsensusSecond. It runs lazily,
// intended to be called once per round boundary.
func (c *Cache) Purge(currentConsensusSecond int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.index.Keys() {
		e, ok := c.index.Peek(key)
		if !ok {
			continue
		}
		if e.validStartSec+c.ttlSeconds < currentConsensusSecond {
			c.index.Remove(key)
			c.blobs.Del(cacheKey(key))
		}
	}
}

func cacheKey(id common.TransactionID) []byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[0:8], uint64(id.Payer.Shard))
	binary.BigEndian.PutUint64(b[8:16], uint64(id.Payer.Num))
	binary.BigEndian.PutUint64(b[16:24], uint64(id.ValidStart.Seconds))
	binary.BigEndian.PutUint32(b[24:28], uint32(id.ValidStart.Nanos))
	binary.BigEndian.PutUint32(b[28:32], id.Nonce)
	return b[:]
}
