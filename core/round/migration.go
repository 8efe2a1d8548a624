package round

import (
	"fmt"

	"github.com/hedera-core/txcore/core/dispatch"
	"github.com/hedera-core/txcore/core/records"
	"github.com/hedera-core/txcore/core/state"
	"github.com/hedera-core/txcore/core/status"
)

// MigrationStep is one software-upgrade action, run as an unlimited
// preceding record the first round after an upgrade.
type MigrationStep struct {
	Functionality dispatch.Functionality
	Body          []byte
}

// MigrationPublisher runs every registered MigrationStep as a preceding,
// unlimited-offset record exactly once per software upgrade. The executor
// guards invocation on the network context's migrationRecordsStreamed flag.
type MigrationPublisher struct {
	dispatcher *dispatch.Dispatcher
	steps      []MigrationStep
}

// NewMigrationPublisher returns a publisher fixed to the given ordered
// steps; they run in registration order.
func NewMigrationPublisher(dispatcher *dispatch.Dispatcher, steps ...MigrationStep) *MigrationPublisher {
	return &MigrationPublisher{dispatcher: dispatcher, steps: append([]MigrationStep(nil), steps...)}
}

// Publish dispatches every migration step against stack's current top
// frame, appending a KindPrecedingUnlimited builder to list for each. A
// step's failure aborts the whole publish: migrations never partially
// apply, so the caller treats a non-nil error as round-fatal.
func (p *MigrationPublisher) Publish(stack *state.SavepointStack, list *records.List, tracker *records.TimeTracker) error {
	for _, step := range p.steps {
		if err := p.runStep(stack, list, tracker, step); err != nil {
			return err
		}
	}
	return nil
}

func (p *MigrationPublisher) runStep(stack *state.SavepointStack, list *records.List, tracker *records.TimeTracker, step MigrationStep) error {
	id := list.User().TransactionID
	builder := records.NewBuilder(records.KindPrecedingUnlimited, id, id)
	if err := list.AddPrecedingUnlimited(builder); err != nil {
		return fmt.Errorf("round: migration step %s: %w", step.Functionality, err)
	}

	stack.CreateSavepoint()
	ctx := dispatch.NewHandleContext(
		step.Body, step.Functionality, id.Payer, nil, tracker.Base(), dispatch.Config{},
		stack, list, tracker, nil, p.dispatcher,
		nil, nil, nil, nil, builder,
	)
	ctx.Origin = dispatch.OriginPreceding

	if err := p.dispatcher.DispatchPreHandle(step.Functionality, ctx); err != nil {
		_ = stack.Rollback()
		builder.MarkReverted(status.HandlerFailure)
		return fmt.Errorf("round: migration step %s: %w", step.Functionality, err)
	}
	if err := p.dispatcher.DispatchHandle(step.Functionality, ctx); err != nil {
		_ = stack.Rollback()
		builder.MarkReverted(status.HandlerFailure)
		return fmt.Errorf("round: migration step %s: %w", step.Functionality, err)
	}
	builder.Status = status.Success
	return stack.Commit()
}
