package records

import (
	"errors"
	"time"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/status"
)

// ErrMaxChildRecordsExceeded is raised by AddPreceding/AddFollowing when the
// time tracker's budget is exhausted.
var ErrMaxChildRecordsExceeded = errors.New("records: max child records exceeded")

// tick is the unit offset between adjacent synthetic consensus timestamps;
// nanosecond granularity is sufficient for deterministic ordering.
const tick = time.Nanosecond

// List accumulates a single user transaction's preceding, user, and
// following record builders, and assigns their consensus timestamps and
// nonces at finalize time.
type List struct {
	tracker *TimeTracker

	user       *Builder
	preceding  []*Builder // creation order: oldest dispatched first
	following  []*Builder // creation order
	nextNonce  uint32
}

// NewList starts a record list for the given user transaction, with nonce
// assignment beginning at userID.Nonce+1.
func NewList(tracker *TimeTracker, user *Builder) *List {
	return &List{
		tracker:   tracker,
		user:      user,
		nextNonce: user.TransactionID.Nonce + 1,
	}
}

// AddPreceding appends a preceding builder, reserving one unit of the
// tracker's preceding budget. Preceding count is simply len(l.preceding);
// unlike following offsets, preceding offsets are computed from the final
// count at finalize time, so no separate reservation counter is kept here.
func (l *List) AddPreceding(b *Builder) error {
	if !l.tracker.IsAllowablePrecedingOffset(len(l.preceding) + 1) {
		return ErrMaxChildRecordsExceeded
	}
	b.TransactionID = b.TransactionID.WithNonce(l.nextNonce)
	l.nextNonce++
	l.preceding = append(l.preceding, b)
	return nil
}

// AddPrecedingUnlimited appends a preceding builder without consulting the
// tracker's preceding budget, used only for migration records.
func (l *List) AddPrecedingUnlimited(b *Builder) error {
	b.TransactionID = b.TransactionID.WithNonce(l.nextNonce)
	l.nextNonce++
	l.preceding = append(l.preceding, b)
	return nil
}

// AddFollowing appends a following builder, reserving one unit of the
// tracker's following budget.
func (l *List) AddFollowing(b *Builder) error {
	if _, ok := l.tracker.NextFollowingOffset(); !ok {
		return ErrMaxChildRecordsExceeded
	}
	b.TransactionID = b.TransactionID.WithNonce(l.nextNonce)
	l.nextNonce++
	l.following = append(l.following, b)
	return nil
}

// RevertChildrenOf marks (or drops) every following builder whose SourceID
// matches parent's transaction id directly: removable builders are flagged
// shouldNotBeExternalized (dropped at Finalize), non-removable ones are
// marked with parentStatus. It does not
// descend into grandchildren; use RevertSubtree for that.
func (l *List) RevertChildrenOf(parent common.TransactionID, parentStatus status.Code) []common.TransactionID {
	var touched []common.TransactionID
	for _, b := range l.following {
		if b.SourceID != parent || b.ShouldNotBeExternalized() {
			continue
		}
		touched = append(touched, b.TransactionID)
		if b.Kind.IsRemovable() {
			b.SetShouldNotBeExternalized()
			continue
		}
		b.MarkReverted(parentStatus)
	}
	return touched
}

// RevertSubtree reverts every following record transitively descended from
// root, level by level: a handler error during any child dispatch reverts
// all descendants of the current user record, not merely its immediate
// children.
func (l *List) RevertSubtree(root common.TransactionID, parentStatus status.Code) {
	frontier := []common.TransactionID{root}
	for len(frontier) > 0 {
		var next []common.TransactionID
		for _, parent := range frontier {
			next = append(next, l.RevertChildrenOf(parent, parentStatus)...)
		}
		frontier = next
	}
}

// RevertReversiblePreceding drops every preceding builder of kind
// KindPrecedingReversible or KindPrecedingRemovable, used when the user
// transaction itself reverts.
func (l *List) RevertReversiblePreceding() {
	kept := l.preceding[:0]
	for _, b := range l.preceding {
		if b.Kind == KindPrecedingReversible || b.Kind == KindPrecedingRemovable {
			b.SetShouldNotBeExternalized()
			continue
		}
		kept = append(kept, b)
	}
	l.preceding = kept
}

// Finalize assigns consensus timestamps in the mandated order —
// preceding (creation order, strictly ascending), user, following
// (creation order, skipping shouldNotBeExternalized entries when advancing
// the offset) — and returns the ordered, emission-ready records.
func (l *List) Finalize() []Record {
	base := l.tracker.Base()

	live := make([]*Builder, 0, len(l.preceding))
	for _, b := range l.preceding {
		if !b.ShouldNotBeExternalized() {
			live = append(live, b)
		}
	}
	out := make([]Record, 0, len(live)+1+len(l.following))

	// Preceding offsets: the oldest-dispatched record gets the most-negative
	// offset. Emitting in dispatch order then yields strictly ascending
	// timestamps.
	n := len(live)
	for i, b := range live {
		k := n - i
		ts := base.Add(-int64(k) * int64(tick))
		out = append(out, b.Finalize(ts, nil))
	}

	userRecord := l.user.Finalize(base, nil)
	out = append(out, userRecord)

	k := 0
	for _, b := range l.following {
		if b.ShouldNotBeExternalized() {
			continue
		}
		k++
		ts := base.Add(int64(k) * int64(tick))
		parent := base
		out = append(out, b.Finalize(ts, &parent))
	}
	return out
}

// Preceding returns the live preceding builders, for tests and diagnostics.
func (l *List) Preceding() []*Builder { return l.preceding }

// Following returns every following builder, including those marked
// shouldNotBeExternalized.
func (l *List) Following() []*Builder { return l.following }

// User returns the user record builder.
func (l *List) User() *Builder { return l.user }
