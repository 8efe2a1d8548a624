// Package corebound adapts the consensus-agnostic transaction handling core
// to a hosting platform: it turns whatever the platform hands over for one
// round (a software version, a trigger, and a batch of pre-ordered events)
// into a round.Executor invocation, and turns the executor's outputs back
// into platform-facing notifications and persisted records.
package corebound

import (
	"fmt"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/round"
	"github.com/hedera-core/txcore/log"
)

// Trigger identifies why a round is being executed.
type Trigger int

const (
	// TriggerEventStream is the ordinary path: the platform delivered a
	// batch of consensus events to process.
	TriggerEventStream Trigger = iota
	// TriggerReconnect asks the core to replay state without handling new
	// transactions, used when a node rejoins the network mid-round.
	TriggerReconnect
)

func (t Trigger) String() string {
	switch t {
	case TriggerEventStream:
		return "EVENT_STREAM"
	case TriggerReconnect:
		return "RECONNECT"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

// SoftwareVersion identifies the running build, compared against the last
// version that streamed migration records to decide whether this round
// owes the network a fresh migration pass.
type SoftwareVersion struct {
	Major, Minor, Patch int
}

func (v SoftwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v SoftwareVersion) equal(o SoftwareVersion) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

// RoundHandle is the platform's entry point into the core: one instance is
// constructed at startup and its OnRound method is called once per round
// the platform advances to.
type RoundHandle struct {
	executor *round.Executor
	notifier *Notifier
	network  *round.NetworkContext

	lastVersion SoftwareVersion
	haveVersion bool

	log log.Logger
}

// NewRoundHandle wires an executor, its shared network context, and a
// notification engine into a single platform-facing callback target.
func NewRoundHandle(executor *round.Executor, network *round.NetworkContext, notifier *Notifier) *RoundHandle {
	return &RoundHandle{
		executor: executor,
		notifier: notifier,
		network:  network,
		log:      log.New("module", "corebound"),
	}
}

// OnRound runs one round for the given consensus events and timestamp. A
// software version change since the previous round rearms the migration
// guard so the next round's executor pass re-publishes migration records.
func (h *RoundHandle) OnRound(events []round.Event, consensusTime common.ConsensusTimestamp, version SoftwareVersion, trigger Trigger) error {
	if trigger == TriggerReconnect {
		h.log.Info("skipping round on reconnect", "consensusTime", consensusTime)
		return nil
	}
	if h.haveVersion && !version.equal(h.lastVersion) {
		h.network.MigrationRecordsStreamed = false
		h.log.Info("software version changed, migration records will republish",
			"from", h.lastVersion, "to", version)
	}
	h.lastVersion = version
	h.haveVersion = true

	err := h.executor.RunRound(events, consensusTime)
	if h.notifier != nil {
		h.notifier.roundCompleted(RoundOutcome{
			ConsensusTime: consensusTime,
			Trigger:       trigger,
			Err:           err,
		})
	}
	return err
}
