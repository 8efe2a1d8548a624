package corebound

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/round"
)

type countingPreHandler struct {
	calls   atomic.Int32
	failOdd bool
}

func (h *countingPreHandler) PreHandle(tx round.UserTransaction) error {
	n := h.calls.Add(1)
	if h.failOdd && n%2 == 1 {
		return fmt.Errorf("prehandle: synthetic failure for call %d", n)
	}
	return nil
}

func txBatch(n int) []round.UserTransaction {
	txs := make([]round.UserTransaction, n)
	for i := range txs {
		txs[i] = round.UserTransaction{Payer: common.AccountID{Num: int64(i)}}
	}
	return txs
}

func TestExpandPoolRunsEveryTransaction(t *testing.T) {
	h := &countingPreHandler{}
	pool := NewExpandPool(h, 4)

	events := []round.Event{{Transactions: txBatch(10)}, {Transactions: txBatch(5)}}
	results, err := pool.Expand(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, results[0].Errs, 10)
	require.Len(t, results[1].Errs, 5)
	require.Equal(t, int32(15), h.calls.Load())
}

func TestExpandPoolRecordsPerTransactionFailures(t *testing.T) {
	h := &countingPreHandler{failOdd: true}
	pool := NewExpandPool(h, 2)

	events := []round.Event{{Transactions: txBatch(4)}}
	results, err := pool.Expand(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, results, 1)

	var failed int
	for _, e := range results[0].Errs {
		if e != nil {
			failed++
		}
	}
	require.Greater(t, failed, 0, "at least one synthetic failure must be recorded")
}

func TestExpandPoolAssignsDistinctBatchIDs(t *testing.T) {
	h := &countingPreHandler{}
	pool := NewExpandPool(h, 1)

	events := []round.Event{{Transactions: txBatch(1)}, {Transactions: txBatch(1)}}
	results, err := pool.Expand(context.Background(), events)
	require.NoError(t, err)
	require.NotEqual(t, results[0].BatchID, results[1].BatchID)
}
