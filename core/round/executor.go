package round

import (
	"fmt"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/dispatch"
	"github.com/hedera-core/txcore/core/records"
	"github.com/hedera-core/txcore/core/state"
	"github.com/hedera-core/txcore/core/status"
	"github.com/hedera-core/txcore/log"
)

// UserTransaction is one pre-gathered, consensus-ordered transaction as
// delivered by the platform round feed.
type UserTransaction struct {
	Body           []byte
	Functionality  dispatch.Functionality
	Payer          common.AccountID
	PayerKey       []byte
	SubmittingNode common.AccountID
	ValidStart     common.ConsensusTimestamp
}

// Event carries the user transactions belonging to one consensus event,
// already enriched with pre-handle signature metadata upstream of the core.
type Event struct {
	Transactions []UserTransaction
}

// RecordStreamSink externalizes a finalized record list; the core tolerates
// transient backpressure from it.
type RecordStreamSink interface {
	Emit(r records.Record, sidecars [][]byte) error
}

// NetworkContext carries the cross-round flags the executor consults, in
// particular the migration run-once guard.
type NetworkContext struct {
	MigrationRecordsStreamed bool
}

// Executor drives one consensus round through its state machine:
// START -> (optional) MIGRATION -> per user transaction
// (OPEN_SAVEPOINT -> RECORD_CACHE_CHECK -> PAYER_VERIFY -> HANDLE ->
// FINALIZE -> EXTERNALIZE -> CACHE_UPDATE) -> END.
type Executor struct {
	cfg Config

	container  *state.Container
	dispatcher *dispatch.Dispatcher
	cache      *records.Cache
	sink       RecordStreamSink

	verifier   dispatch.Verifier
	feeManager dispatch.FeeManager
	authorizer dispatch.Authorizer
	solvency   dispatch.SolvencyChecker

	migration *MigrationPublisher
	network   *NetworkContext

	finalizers []ServiceFinalizer
	metrics    *Metrics

	log log.Logger
}

// SetMetrics attaches a Metrics collector; nil (the default) disables
// observation entirely.
func (e *Executor) SetMetrics(m *Metrics) { e.metrics = m }

// ServiceFinalizer runs after a user transaction's handler succeeds, in a
// fixed registration order (token finalizer last among built-ins, by
// convention).
type ServiceFinalizer interface {
	Finalize(ctx *dispatch.HandleContext) error
}

// NewExecutor returns an Executor wired to a working state container and
// the capability set the core consumes from its environment.
func NewExecutor(
	cfg Config, container *state.Container, dispatcher *dispatch.Dispatcher,
	verifier dispatch.Verifier, feeManager dispatch.FeeManager, authorizer dispatch.Authorizer,
	solvency dispatch.SolvencyChecker, sink RecordStreamSink, migration *MigrationPublisher, network *NetworkContext,
) *Executor {
	return &Executor{
		cfg:        cfg,
		container:  container,
		dispatcher: dispatcher,
		cache:      records.NewCache(cfg.RecordCacheCapacity, cfg.RecordCacheBlobBytes),
		sink:       sink,
		verifier:   verifier,
		feeManager: feeManager,
		authorizer: authorizer,
		solvency:   solvency,
		migration:  migration,
		network:    network,
		log:        log.New("module", "round"),
	}
}

// RegisterFinalizer appends f to the fixed FINALIZE order. Call during
// startup wiring only; the order established here is the order finalizers
// run in for every subsequent round.
func (e *Executor) RegisterFinalizer(f ServiceFinalizer) {
	e.finalizers = append(e.finalizers, f)
}

// ErrISS signals a StateError escalated past the round boundary: the round
// aborted with no records externalised, and the node must raise an
// inconsistent-state-signature notification.
type ErrISS struct{ Cause error }

func (e *ErrISS) Error() string { return fmt.Sprintf("round: aborted, ISS: %v", e.Cause) }
func (e *ErrISS) Unwrap() error { return e.Cause }

// RunRound drives one consensus round to completion.
func (e *Executor) RunRound(events []Event, consensusTime common.ConsensusTimestamp) error {
	stack := state.NewSavepointStack(e.container)

	firstUser := firstTransaction(events)
	if firstUser != nil && e.migration != nil && !e.network.MigrationRecordsStreamed {
		base := common.TransactionID{Payer: firstUser.Payer, ValidStart: firstUser.ValidStart}
		tracker := records.NewTimeTracker(consensusTime, e.cfg.MaxPrecedingRecords, e.cfg.MaxFollowingRecords)
		userBuilder := records.NewBuilder(records.KindUser, base, base)
		list := records.NewList(tracker, userBuilder)
		stack.CreateSavepoint()
		if err := e.migration.Publish(stack, list, tracker); err != nil {
			e.observeAborted()
			return &ErrISS{Cause: err}
		}
		if err := stack.CommitFullStack(); err != nil {
			e.observeAborted()
			return &ErrISS{Cause: err}
		}
		e.emitMigrationRecords(list)
		e.network.MigrationRecordsStreamed = true
		if e.metrics != nil {
			for range list.Preceding() {
				e.metrics.observeMigrationStep()
			}
		}
	}

	for _, ev := range events {
		for _, tx := range ev.Transactions {
			if err := e.handleUserTransaction(stack, tx, consensusTime); err != nil {
				var iss *ErrISS
				if isISS(err, &iss) {
					e.observeAborted()
					return err
				}
				e.log.Warn("user transaction failed", "payer", tx.Payer, "err", err)
			}
		}
	}
	if e.metrics != nil {
		e.metrics.observeRoundCompleted()
	}
	return nil
}

func (e *Executor) observeAborted() {
	if e.metrics != nil {
		e.metrics.observeRoundAborted()
	}
}

func isISS(err error, target **ErrISS) bool {
	iss, ok := err.(*ErrISS)
	if ok {
		*target = iss
	}
	return ok
}

func firstTransaction(events []Event) *UserTransaction {
	for i := range events {
		if len(events[i].Transactions) > 0 {
			return &events[i].Transactions[0]
		}
	}
	return nil
}

func (e *Executor) emitMigrationRecords(list *records.List) {
	for _, r := range list.Finalize()[:len(list.Preceding())] {
		if err := e.sink.Emit(r, nil); err != nil {
			e.log.Error("migration record emit failed", "err", err)
		}
	}
}

// handleUserTransaction drives OPEN_SAVEPOINT through CACHE_UPDATE for a
// single user transaction.
func (e *Executor) handleUserTransaction(stack *state.SavepointStack, tx UserTransaction, consensusTime common.ConsensusTimestamp) error {
	txID := common.TransactionID{Payer: tx.Payer, ValidStart: tx.ValidStart}

	tracker := records.NewTimeTracker(consensusTime, e.cfg.MaxPrecedingRecords, e.cfg.MaxFollowingRecords)
	userBuilder := records.NewBuilder(records.KindUser, txID, txID)
	list := records.NewList(tracker, userBuilder)

	// RECORD_CACHE_CHECK
	if e.cache.HasDuplicate(txID, tx.SubmittingNode) == records.DuplicateSameNode {
		userBuilder.Status = status.DuplicateTransaction
		if e.metrics != nil {
			e.metrics.observeCacheDuplicate()
		}
		e.externalizeAndCache(list, txID, tx.SubmittingNode)
		return nil
	}

	// PAYER_VERIFY
	if e.solvency != nil {
		fees := dispatch.Fees{}
		if err := e.solvency.CheckSolvency(tx.Payer, fees); err != nil {
			userBuilder.Status = status.InsufficientPayerBalance
			e.externalizeAndCache(list, txID, tx.SubmittingNode)
			return nil
		}
	}

	// OPEN_SAVEPOINT + HANDLE
	stack.CreateSavepoint()
	ctx := dispatch.NewHandleContext(
		tx.Body, tx.Functionality, tx.Payer, tx.PayerKey, consensusTime, e.cfg.Config,
		stack, list, tracker, e.cache, e.dispatcher,
		e.verifier, e.feeManager, e.authorizer, e.solvency, userBuilder,
	)

	handleErr := e.dispatcher.DispatchHandle(tx.Functionality, ctx)
	if handleErr != nil {
		failStatus := status.HandlerFailure
		if de, ok := dispatch.AsDispatchError(handleErr); ok {
			if de.IsFatal() {
				return &ErrISS{Cause: handleErr}
			}
			failStatus = de.Status
		}
		userBuilder.MarkReverted(failStatus)
		if err := stack.Rollback(); err != nil {
			return &ErrISS{Cause: err}
		}
		list.RevertSubtree(txID, failStatus)
		list.RevertReversiblePreceding()
	} else {
		userBuilder.Status = status.Success
		for _, f := range e.finalizers {
			if err := f.Finalize(ctx); err != nil {
				e.log.Warn("finalizer failed", "err", err)
			}
		}
		if err := stack.Commit(); err != nil {
			return &ErrISS{Cause: err}
		}
	}

	if e.metrics != nil {
		e.metrics.observeHandled(userBuilder.Status)
	}
	e.externalizeAndCache(list, txID, tx.SubmittingNode)
	return nil
}

func (e *Executor) externalizeAndCache(list *records.List, txID common.TransactionID, submittingNode common.AccountID) {
	for _, r := range list.Finalize() {
		if err := e.sink.Emit(r, nil); err != nil {
			e.log.Error("record emit failed", "err", err)
		}
		e.cache.Add(r.TransactionID, r, submittingNode)
	}
	_ = txID
}
