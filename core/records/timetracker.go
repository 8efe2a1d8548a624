package records

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hedera-core/txcore/common"
)

// TimeTracker hands out preceding/following offsets around a single user
// transaction's base consensus time, enforcing the preceding/following bounds.
// Consumed offsets are permanent for the tracker's lifetime: once handed out
// they are never reused, even if the dispatch that requested them later
// reverts.
type TimeTracker struct {
	base               common.ConsensusTimestamp
	maxPrecedingOffset int
	maxFollowingOffset int

	followingCount int
	consumed       mapset.Set[int]
}

// NewTimeTracker returns a tracker for a user transaction with base
// consensus time base, bounded to at most maxPreceding preceding offsets
// and maxFollowing following offsets.
func NewTimeTracker(base common.ConsensusTimestamp, maxPreceding, maxFollowing int) *TimeTracker {
	return &TimeTracker{
		base:               base,
		maxPrecedingOffset: maxPreceding,
		maxFollowingOffset: maxFollowing,
		consumed:           mapset.NewThreadUnsafeSet[int](),
	}
}

// IsAllowablePrecedingOffset reports whether a total of n preceding offsets
// (counting those already consumed) stays within budget.
func (t *TimeTracker) IsAllowablePrecedingOffset(n int) bool {
	return n <= t.maxPrecedingOffset
}

// IsAllowableFollowingOffset reports whether a total of n following
// offsets (counting those already consumed) stays within budget.
func (t *TimeTracker) IsAllowableFollowingOffset(n int) bool {
	return n <= t.maxFollowingOffset
}

// NextFollowingOffset reserves and returns the next following offset, or
// ok=false if doing so would exceed the following budget.
func (t *TimeTracker) NextFollowingOffset() (offset int, ok bool) {
	next := t.followingCount + 1
	if !t.IsAllowableFollowingOffset(next) {
		return 0, false
	}
	t.followingCount = next
	t.consumed.Add(next)
	return next, true
}

// FollowingCount reports how many following offsets this tracker has
// handed out so far.
func (t *TimeTracker) FollowingCount() int { return t.followingCount }

// Base returns the user transaction's base consensus time.
func (t *TimeTracker) Base() common.ConsensusTimestamp { return t.base }
