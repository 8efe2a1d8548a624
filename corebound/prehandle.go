package corebound

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hedera-core/txcore/core/round"
	"github.com/hedera-core/txcore/log"
)

// PreHandleResult pairs one event's transactions with the signature
// expansion a PreHandler computed for each, keyed by a per-batch
// correlation id useful for tracing a slow pre-handle back to its batch
// across log lines.
type PreHandleResult struct {
	BatchID      string
	Transactions []round.UserTransaction
	Errs         []error
}

// PreHandler computes the keys required to sign tx, ahead of consensus.
// The round executor itself never calls PreHandle; expanding signature
// requirements is pure, read-only work the host can parallelize before
// handing transactions to RunRound.
type PreHandler interface {
	PreHandle(tx round.UserTransaction) error
}

// ExpandPool runs PreHandle for every transaction in events concurrently,
// bounded by concurrency, and returns results in the original per-event
// order. A single transaction's PreHandle failure does not cancel its
// siblings; each result records its own error.
type ExpandPool struct {
	handler     PreHandler
	concurrency int
	log         log.Logger
}

// NewExpandPool returns a pool that runs at most concurrency PreHandle
// calls at a time.
func NewExpandPool(handler PreHandler, concurrency int) *ExpandPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ExpandPool{handler: handler, concurrency: concurrency, log: log.New("module", "corebound", "component", "prehandle")}
}

// Expand pre-handles every transaction across events and returns one
// PreHandleResult per event, tagged with a fresh correlation id.
func (p *ExpandPool) Expand(ctx context.Context, events []round.Event) ([]PreHandleResult, error) {
	results := make([]PreHandleResult, len(events))

	for i, ev := range events {
		batchID := uuid.NewString()
		errs := make([]error, len(ev.Transactions))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		for j, tx := range ev.Transactions {
			j, tx := j, tx
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if err := p.handler.PreHandle(tx); err != nil {
					errs[j] = err
					p.log.Warn("pre-handle failed", "batch", batchID, "payer", tx.Payer, "err", err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		results[i] = PreHandleResult{BatchID: batchID, Transactions: ev.Transactions, Errs: errs}
	}
	return results, nil
}
