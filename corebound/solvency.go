package corebound

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/dispatch"
)

// BalanceLedger holds every account's balance as a 256-bit unsigned
// integer, so repeated credits cannot overflow the way a native uint64
// could. Each solvency check compares one fees.Total(), summed as a uint64,
// against that balance. It implements dispatch.SolvencyChecker.
type BalanceLedger struct {
	mu       sync.Mutex
	balances map[common.AccountID]*uint256.Int
}

// NewBalanceLedger returns an empty ledger.
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{balances: make(map[common.AccountID]*uint256.Int)}
}

// SetBalance assigns account's balance, in tinybar-equivalent units.
func (l *BalanceLedger) SetBalance(account common.AccountID, balance uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = uint256.NewInt(balance)
}

// Balance returns account's current balance, or zero if unknown.
func (l *BalanceLedger) Balance(account common.AccountID) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.balances[account]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// CheckSolvency implements dispatch.SolvencyChecker: it reports an error
// if payer's balance is below fees.Total().
func (l *BalanceLedger) CheckSolvency(payer common.AccountID, fees dispatch.Fees) error {
	total := uint256.NewInt(fees.Total())

	l.mu.Lock()
	balance, ok := l.balances[payer]
	l.mu.Unlock()
	if !ok {
		balance = uint256.NewInt(0)
	}

	if balance.Lt(total) {
		return fmt.Errorf("corebound: payer %s balance %s below required fee %s", payer, balance, total)
	}
	return nil
}

// Debit subtracts amount from payer's balance. It returns an error rather
// than underflowing if amount exceeds the current balance.
func (l *BalanceLedger) Debit(payer common.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[payer]
	if !ok {
		balance = uint256.NewInt(0)
	}
	delta := uint256.NewInt(amount)
	if balance.Lt(delta) {
		return fmt.Errorf("corebound: debit %s from %s underflows balance %s", delta, payer, balance)
	}
	next := new(uint256.Int).Sub(balance, delta)
	l.balances[payer] = next
	return nil
}

// Credit adds amount to payer's balance.
func (l *BalanceLedger) Credit(payer common.AccountID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[payer]
	if !ok {
		balance = uint256.NewInt(0)
	}
	l.balances[payer] = new(uint256.Int).Add(balance, uint256.NewInt(amount))
}
