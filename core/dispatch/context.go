package dispatch

import (
	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/records"
	"github.com/hedera-core/txcore/core/state"
	"github.com/hedera-core/txcore/core/status"
	"github.com/hedera-core/txcore/log"
)

// Origin classifies why a HandleContext exists: a top-level user
// transaction, a preceding child, a following child, or a scheduled
// dispatch. dispatchPreceding* primitives reject calls from a PRECEDING
// context.
type Origin int

const (
	OriginUser Origin = iota
	OriginPreceding
	OriginFollowing
	OriginScheduled
)

// Config is the subset of node configuration the handle context needs:
// per-user-transaction child record budgets, primarily. Loaded once at
// startup and passed down immutably.
type Config struct {
	MaxPrecedingRecords int
	MaxFollowingRecords int
}

// HandleContext is the per-dispatch façade: the single struct
// every Handler receives, bundling transaction body, payer identity,
// consensus time, store access, capability references, and the
// child-dispatch primitives.
type HandleContext struct {
	Body          []byte
	Functionality Functionality
	Payer         common.AccountID
	PayerKey      []byte // absent (nil) for synthetic dispatches without a resolvable payer
	ConsensusTime common.ConsensusTimestamp
	Config        Config
	Origin        Origin

	Stack       *state.SavepointStack
	RecordList  *records.List
	TimeTracker *records.TimeTracker
	RecordCache *records.Cache
	Dispatcher  *Dispatcher

	Verifier   Verifier
	FeeManager FeeManager
	Authorizer Authorizer
	Solvency   SolvencyChecker

	Builder *records.Builder

	log log.Logger
}

// NewHandleContext constructs the top-level context for a user
// transaction's dispatch.
func NewHandleContext(
	body []byte, functionality Functionality, payer common.AccountID, payerKey []byte,
	consensusTime common.ConsensusTimestamp, cfg Config,
	stack *state.SavepointStack, list *records.List, tracker *records.TimeTracker,
	cache *records.Cache, dispatcher *Dispatcher,
	verifier Verifier, feeMgr FeeManager, authz Authorizer, solvency SolvencyChecker,
	builder *records.Builder,
) *HandleContext {
	return &HandleContext{
		Body: body, Functionality: functionality, Payer: payer, PayerKey: payerKey,
		ConsensusTime: consensusTime, Config: cfg, Origin: OriginUser,
		Stack: stack, RecordList: list, TimeTracker: tracker, RecordCache: cache, Dispatcher: dispatcher,
		Verifier: verifier, FeeManager: feeMgr, Authorizer: authz, Solvency: solvency,
		Builder: builder,
		log:      log.New("module", "dispatch"),
	}
}

// ReadableStates scopes a read-only store factory to service, through the
// current top of the savepoint stack.
func (c *HandleContext) ReadableStates(service string) *state.ReadableStates {
	return state.CreateReadableStates(c.Stack, service)
}

// WritableStates scopes a mutable store factory to service. Fails with
// state.ErrImmutable if the current top frame is backed by a read-only
// container.
func (c *HandleContext) WritableStates(service string) (*state.WritableStates, error) {
	return state.CreateWritableStates(c.Stack, service)
}

// dispatchPreceding is the shared implementation behind
// DispatchPrecedingLimited/Reversible/Removable.
func (c *HandleContext) dispatchPreceding(kind records.Kind, body []byte, functionality Functionality) (*records.Builder, error) {
	if c.Origin == OriginPreceding {
		return nil, HandleError(status.HandlerFailure, "dispatch: dispatchPreceding cannot be invoked from a preceding dispatch")
	}
	if err := c.Dispatcher.DispatchPureChecks(functionality, body); err != nil {
		return nil, err
	}
	id := c.Builder.TransactionID
	builder := records.NewBuilder(kind, id, id)
	if err := c.RecordList.AddPreceding(builder); err != nil {
		return nil, ResourceLimitError(status.MaxChildRecordsExceeded, err.Error())
	}

	child := c.childContext(body, functionality, builder, OriginPreceding)
	if err := c.Dispatcher.DispatchPreHandle(functionality, child); err != nil {
		builder.MarkReverted(status.HandlerFailure)
		return builder, err
	}
	if err := c.Dispatcher.DispatchHandle(functionality, child); err != nil {
		builder.MarkReverted(status.HandlerFailure)
		return builder, err
	}
	builder.Status = status.Success
	// Successful preceding dispatches commit fully so later work in the
	// same user transaction observes their effect, then a fresh empty
	// savepoint is opened.
	if err := c.Stack.CommitFullStack(); err != nil {
		return builder, StateError(err.Error())
	}
	c.Stack.CreateSavepoint()
	return builder, nil
}

// DispatchPrecedingLimited runs a preceding dispatch counted against the
// per-user-transaction limited budget.
func (c *HandleContext) DispatchPrecedingLimited(body []byte, functionality Functionality) (*records.Builder, error) {
	return c.dispatchPreceding(records.KindPrecedingLimited, body, functionality)
}

// DispatchPrecedingReversible runs a preceding dispatch that is dropped if
// the governing user transaction reverts.
func (c *HandleContext) DispatchPrecedingReversible(body []byte, functionality Functionality) (*records.Builder, error) {
	return c.dispatchPreceding(records.KindPrecedingReversible, body, functionality)
}

// DispatchPrecedingRemovable runs a preceding dispatch that may be dropped
// entirely on revert.
func (c *HandleContext) DispatchPrecedingRemovable(body []byte, functionality Functionality) (*records.Builder, error) {
	return c.dispatchPreceding(records.KindPrecedingRemovable, body, functionality)
}

// dispatchChild is the shared implementation behind
// DispatchChildOrdinary/Removable/RemovableWithCustomizer.
func (c *HandleContext) dispatchChild(kind records.Kind, body []byte, functionality Functionality, customizer records.Customizer) (*records.Builder, error) {
	parentID := c.Builder.TransactionID
	builder := records.NewBuilder(kind, parentID, parentID)
	if customizer != nil {
		builder.SetCustomizer(customizer)
	}
	if err := c.RecordList.AddFollowing(builder); err != nil {
		return nil, ResourceLimitError(status.MaxChildRecordsExceeded, err.Error())
	}

	childStack := c.Stack.Fork()
	child := *c
	child.Stack = childStack
	child.Builder = builder
	child.Origin = OriginFollowing
	child.Body = body
	child.Functionality = functionality

	runErr := func() error {
		if err := c.Dispatcher.DispatchPureChecks(functionality, body); err != nil {
			return err
		}
		if err := c.Dispatcher.DispatchPreHandle(functionality, &child); err != nil {
			return err
		}
		return c.Dispatcher.DispatchHandle(functionality, &child)
	}()

	if runErr != nil {
		// The child stack is discarded (nothing was committed into the
		// parent) and all descendants of the current user record revert,
		// not merely this dispatch's own siblings.
		c.RecordList.RevertSubtree(c.RecordList.User().TransactionID, status.HandlerFailure)
		return builder, runErr
	}
	if err := childStack.CommitFullStack(); err != nil {
		return builder, StateError(err.Error())
	}
	if err := childStack.CommitFork(); err != nil {
		return builder, StateError(err.Error())
	}
	builder.Status = status.Success
	return builder, nil
}

// DispatchChildOrdinary runs a following child dispatch whose record is
// kept (with an error status) if the parent later reverts.
func (c *HandleContext) DispatchChildOrdinary(body []byte, functionality Functionality) (*records.Builder, error) {
	return c.dispatchChild(records.KindFollowingOrdinary, body, functionality, nil)
}

// DispatchChildRemovable runs a following child dispatch whose record is
// dropped entirely if the parent reverts.
func (c *HandleContext) DispatchChildRemovable(body []byte, functionality Functionality) (*records.Builder, error) {
	return c.dispatchChild(records.KindFollowingRemovable, body, functionality, nil)
}

// DispatchChildRemovableWithCustomizer is DispatchChildRemovable with a
// customizer applied at externalization time.
func (c *HandleContext) DispatchChildRemovableWithCustomizer(body []byte, functionality Functionality, customizer records.Customizer) (*records.Builder, error) {
	return c.dispatchChild(records.KindFollowingRemovableCustomized, body, functionality, customizer)
}

// DispatchComputeFees computes fees for a synthetic body without side
// effects, returning FreeFees if the payer is authorised to waive fees.
func (c *HandleContext) DispatchComputeFees(body []byte, functionality Functionality, numSigs, sigMapSize, subType int) Fees {
	if c.Authorizer != nil && c.Authorizer.HasWaivedFees(c.Payer, functionality, body) {
		return FreeFees
	}
	calc := c.FeeManager.CreateFeeCalculator(body, c.PayerKey, functionality, numSigs, sigMapSize, c.ConsensusTime, subType)
	return calc.Calculate()
}

func (c *HandleContext) childContext(body []byte, functionality Functionality, builder *records.Builder, origin Origin) *HandleContext {
	child := *c
	child.Body = body
	child.Functionality = functionality
	child.Builder = builder
	child.Origin = origin
	return &child
}
