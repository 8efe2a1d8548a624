package dispatch

import (
	"github.com/hedera-core/txcore/common"
)

// Functionality tags the kind of business operation a transaction body
// performs (GLOSSARY). It is the dispatcher's lookup key.
type Functionality string

// VerificationResult is the outcome of checking one key against the
// signatures in scope for a dispatch.
type VerificationResult int

const (
	VerificationFailed VerificationResult = iota
	VerificationPassed
)

// Verifier is the signature-verification capability the core consumes; its
// cryptographic implementation lives outside the core.
type Verifier interface {
	VerificationFor(key []byte) VerificationResult
	VerificationForAlias(evmAlias []byte) VerificationResult
	NumVerifiedSignatures() int
	SignatureMapSize() int
}

// Fees is a computed fee schedule for a dispatch. FREE waives every
// component, used when the payer is authorised to waive fees.
type Fees struct {
	NetworkFee  uint64
	NodeFee     uint64
	ServiceFee  uint64
}

// Total returns the sum of every fee component.
func (f Fees) Total() uint64 { return f.NetworkFee + f.NodeFee + f.ServiceFee }

// FreeFees is the zero-cost fee schedule dispatchComputeFees returns when
// the payer has a fee waiver.
var FreeFees = Fees{}

// FeeCalculator computes fees for a single dispatch's body.
type FeeCalculator interface {
	Calculate() Fees
}

// FeeManager is the fee-schedule capability the core consumes.
type FeeManager interface {
	CreateFeeCalculator(body []byte, payerKey []byte, functionality Functionality, numSigs, sigMapSize int, consensusTime common.ConsensusTimestamp, subType int) FeeCalculator
	GetFeeData(functionality Functionality, consensusTime common.ConsensusTimestamp, subType int) Fees
}

// PrivilegedAuthorization is the result of a privileged-authorization check.
type PrivilegedAuthorization int

const (
	PrivilegeUnnecessary PrivilegedAuthorization = iota
	PrivilegeAuthorized
	PrivilegeUnauthorized
	PrivilegeImpermissible
)

// Authorizer is the permission-checking capability the core consumes from
// its hosting environment.
type Authorizer interface {
	IsAuthorized(payer common.AccountID, functionality Functionality) bool
	HasPrivilegedAuthorization(payer common.AccountID, functionality Functionality, body []byte) PrivilegedAuthorization
	HasWaivedFees(payer common.AccountID, functionality Functionality, body []byte) bool
	IsSuperUser(payer common.AccountID) bool
}

// SolvencyChecker verifies a payer can afford a dispatch's fees, delegating
// to service state the core does not interpret directly.
type SolvencyChecker interface {
	CheckSolvency(payer common.AccountID, fees Fees) error
}
