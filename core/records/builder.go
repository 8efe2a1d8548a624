// Package records implements the record builder, record list, consensus
// time tracker, and record cache.
package records

import (
	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/status"
)

// Kind distinguishes a record's position in a record list.
type Kind int

const (
	// KindUser is the single user record every list carries.
	KindUser Kind = iota
	// KindPrecedingLimited is capped to a per-user-transaction bound.
	KindPrecedingLimited
	// KindPrecedingReversible may be reverted by the user transaction failing.
	KindPrecedingReversible
	// KindPrecedingUnlimited is bounded only by the consensus time tracker,
	// used for migration records.
	KindPrecedingUnlimited
	// KindPrecedingRemovable may be dropped entirely if the user transaction
	// reverts.
	KindPrecedingRemovable
	// KindFollowingOrdinary is an ordinary following child.
	KindFollowingOrdinary
	// KindFollowingRemovable may be dropped if its parent reverts.
	KindFollowingRemovable
	// KindFollowingRemovableCustomized is KindFollowingRemovable with an
	// externalization customizer applied before emission.
	KindFollowingRemovableCustomized
)

// IsPreceding reports whether k occupies a negative offset.
func (k Kind) IsPreceding() bool {
	switch k {
	case KindPrecedingLimited, KindPrecedingReversible, KindPrecedingUnlimited, KindPrecedingRemovable:
		return true
	}
	return false
}

// IsFollowing reports whether k occupies a positive offset.
func (k Kind) IsFollowing() bool {
	switch k {
	case KindFollowingOrdinary, KindFollowingRemovable, KindFollowingRemovableCustomized:
		return true
	}
	return false
}

// IsRemovable reports whether k's record is dropped entirely (rather than
// marked with an error status) when its governing ancestor reverts.
func (k Kind) IsRemovable() bool {
	switch k {
	case KindPrecedingRemovable, KindFollowingRemovable, KindFollowingRemovableCustomized:
		return true
	}
	return false
}

// Customizer rewrites a record builder immediately before externalization,
// used by KindFollowingRemovableCustomized.
type Customizer func(*Builder)

// Builder accumulates the fields of an in-flight record. A
// Builder is mutable until Finalize produces an immutable Record.
type Builder struct {
	Kind Kind

	TransactionID common.TransactionID
	Status        status.Code

	ConsensusTimestamp common.ConsensusTimestamp
	ParentConsensusTime *common.ConsensusTimestamp

	// SourceID identifies the dispatch that created this builder, used by
	// revertChildrenOf to find a parent's descendants.
	SourceID common.TransactionID

	Fee       uint64
	Transfers []Transfer
	TokenChanges []TokenChange
	Memo      string
	Body      []byte
	Sidecars  [][]byte

	customizer Customizer

	// shouldNotBeExternalized marks a reversibly-removable child that the
	// user transaction's own revert has dropped; it is never emitted, and
	// offset assignment does not advance past it.
	shouldNotBeExternalized bool
}

// Transfer is an HBAR balance movement attached to a record.
type Transfer struct {
	Account common.AccountID
	Amount  int64
}

// TokenChange is a token balance movement attached to a record.
type TokenChange struct {
	Token    common.AccountID
	Account  common.AccountID
	Amount   int64
}

// NewBuilder returns an empty builder of the given kind, seeded with a
// transaction id. Nonce is assigned later by the record list.
func NewBuilder(kind Kind, id common.TransactionID, source common.TransactionID) *Builder {
	return &Builder{Kind: kind, TransactionID: id, SourceID: source, Status: status.Unknown}
}

// MarkReverted sets b's status to the given failure code and clears any
// balance-affecting fields, matching revertChildrenOf's non-removable
// branch.
func (b *Builder) MarkReverted(s status.Code) {
	b.Status = s
	b.Transfers = nil
	b.TokenChanges = nil
}

// SetShouldNotBeExternalized marks b as dropped from emission entirely.
func (b *Builder) SetShouldNotBeExternalized() { b.shouldNotBeExternalized = true }

// ShouldNotBeExternalized reports whether b is excluded from emission.
func (b *Builder) ShouldNotBeExternalized() bool { return b.shouldNotBeExternalized }

// SetCustomizer attaches an externalization customizer, used by
// KindFollowingRemovableCustomized builders.
func (b *Builder) SetCustomizer(c Customizer) { b.customizer = c }

// Finalize fixes b's consensus timestamp and parent pointer, applies any
// customizer, and returns the immutable Record. b must not be reused after
// Finalize.
func (b *Builder) Finalize(consensusTime common.ConsensusTimestamp, parent *common.ConsensusTimestamp) Record {
	if b.customizer != nil {
		b.customizer(b)
	}
	b.ConsensusTimestamp = consensusTime
	b.ParentConsensusTime = parent
	return Record{
		Kind:               b.Kind,
		TransactionID:      b.TransactionID,
		Status:             b.Status,
		ConsensusTimestamp: b.ConsensusTimestamp,
		ParentConsensusTime: b.ParentConsensusTime,
		SourceID:           b.SourceID,
		Fee:                b.Fee,
		Transfers:          append([]Transfer(nil), b.Transfers...),
		TokenChanges:       append([]TokenChange(nil), b.TokenChanges...),
		Memo:               b.Memo,
		Body:               b.Body,
		Sidecars:           b.Sidecars,
	}
}

// Record is the externalized, immutable outcome of a transaction.
// Once constructed it is never mutated; revert semantics operate on
// the Builder that produced it, before Finalize is called.
type Record struct {
	Kind Kind

	TransactionID common.TransactionID
	Status        status.Code

	ConsensusTimestamp  common.ConsensusTimestamp
	ParentConsensusTime *common.ConsensusTimestamp

	SourceID common.TransactionID

	Fee          uint64
	Transfers    []Transfer
	TokenChanges []TokenChange
	Memo         string
	Body         []byte
	Sidecars     [][]byte
}
