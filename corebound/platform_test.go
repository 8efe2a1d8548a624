package corebound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/dispatch"
	"github.com/hedera-core/txcore/core/round"
)

type noopHandler struct{}

func (noopHandler) PureChecks(body []byte) error                { return nil }
func (noopHandler) PreHandle(ctx *dispatch.HandleContext) error { return nil }
func (noopHandler) Handle(ctx *dispatch.HandleContext) error    { return nil }

func newTestRoundHandle(t *testing.T) (*RoundHandle, *Notifier) {
	t.Helper()
	cfg := round.DefaultConfig()
	dispatcher := dispatch.NewDispatcher(map[dispatch.Functionality]dispatch.Handler{
		"CryptoTransfer": noopHandler{},
	})
	adapter := NewStateAdapter()
	sink := &fakeDownstream{}
	network := &round.NetworkContext{}
	executor := round.NewExecutor(cfg, adapter.Working(), dispatcher, nil, nil, nil, nil, sink, nil, network)

	notifier := NewNotifier()
	handle := NewRoundHandle(executor, network, notifier)
	return handle, notifier
}

func TestRoundHandleNotifiesOnEachRound(t *testing.T) {
	handle, notifier := newTestRoundHandle(t)
	defer notifier.Close()

	outcomes := make(chan RoundOutcome, 1)
	notifier.SubscribeRoundOutcomes(outcomes)

	ts := common.ConsensusTimestampFromTime(time.Unix(1, 0))
	err := handle.OnRound(nil, ts, SoftwareVersion{Major: 1}, TriggerEventStream)
	require.NoError(t, err)

	select {
	case got := <-outcomes:
		require.Equal(t, ts, got.ConsensusTime)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for round outcome notification")
	}
}

func TestRoundHandleSkipsReconnectTrigger(t *testing.T) {
	handle, notifier := newTestRoundHandle(t)
	defer notifier.Close()

	ts := common.ConsensusTimestampFromTime(time.Unix(2, 0))
	require.NoError(t, handle.OnRound(nil, ts, SoftwareVersion{Major: 1}, TriggerReconnect))
}

func TestRoundHandleRearmsMigrationOnVersionChange(t *testing.T) {
	handle, notifier := newTestRoundHandle(t)
	defer notifier.Close()

	handle.network.MigrationRecordsStreamed = true
	ts := common.ConsensusTimestampFromTime(time.Unix(3, 0))
	require.NoError(t, handle.OnRound(nil, ts, SoftwareVersion{Major: 1}, TriggerEventStream))
	require.True(t, handle.network.MigrationRecordsStreamed)

	require.NoError(t, handle.OnRound(nil, ts, SoftwareVersion{Major: 2}, TriggerEventStream))
	require.False(t, handle.network.MigrationRecordsStreamed)
}

func TestSoftwareVersionString(t *testing.T) {
	v := SoftwareVersion{Major: 1, Minor: 2, Patch: 3}
	require.Equal(t, "1.2.3", v.String())
}
