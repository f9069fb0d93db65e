// Package economy implements the resource-accumulation core: a per-account
// ledger, the tier policy, and the collection engine that turns elapsed time
// into balance under cooldown and multiplier rules.
//
// Nothing in this package reads the wall clock. Every time-sensitive
// operation takes an explicit now so callers (and tests) control time.
package economy

import (
	"time"

	"github.com/google/uuid"

	"github.com/drip-labs/drip/internal/domain"
)

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Ledger tracks one account's balance and a bounded transaction history.
// The balance never goes negative: debits that would overdraw are rejected
// without mutation.
type Ledger struct {
	balance     int64
	totalEarned int64
	history     []domain.Transaction
	maxHistory  int // 0 = unbounded
}

// NewLedger creates an empty ledger. maxHistory bounds the retained history
// to the N most recent entries; 0 keeps everything.
func NewLedger(maxHistory int) *Ledger {
	if maxHistory < 0 {
		maxHistory = 0
	}
	return &Ledger{maxHistory: maxHistory}
}

// restoreLedger rebuilds a ledger from persisted snapshot state.
func restoreLedger(balance, totalEarned int64, history []domain.Transaction, maxHistory int) *Ledger {
	l := NewLedger(maxHistory)
	l.balance = balance
	l.totalEarned = totalEarned
	l.history = append(l.history, history...)
	l.trim()
	return l
}

// Balance returns the current balance.
func (l *Ledger) Balance() int64 { return l.balance }

// TotalEarned returns the lifetime sum of all credits.
func (l *Ledger) TotalEarned() int64 { return l.totalEarned }

// Credit adds amount to the balance and records the transaction.
func (l *Ledger) Credit(amount int64, label string, now time.Time) (int64, error) {
	if amount <= 0 {
		return l.balance, domain.ErrInvalidAmount
	}
	l.balance += amount
	l.totalEarned += amount
	l.record(amount, label, now)
	return l.balance, nil
}

// Debit subtracts amount from the balance. A debit exceeding the balance
// fails with InsufficientFundsError and leaves ledger and history unchanged.
func (l *Ledger) Debit(amount int64, label string, now time.Time) (int64, error) {
	if amount <= 0 {
		return l.balance, domain.ErrInvalidAmount
	}
	if amount > l.balance {
		return l.balance, &domain.InsufficientFundsError{Requested: amount, Balance: l.balance}
	}
	l.balance -= amount
	l.record(-amount, label, now)
	return l.balance, nil
}

// History returns the most recent count transactions, newest first.
// count is clamped to the available history; <= 0 returns everything.
func (l *Ledger) History(count int) []domain.Transaction {
	n := len(l.history)
	if count <= 0 || count > n {
		count = n
	}
	out := make([]domain.Transaction, count)
	for i := 0; i < count; i++ {
		out[i] = l.history[n-1-i]
	}
	return out
}

// Transactions returns the retained history in chronological order, the
// layout snapshots store and restoreLedger expects back.
func (l *Ledger) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(l.history))
	copy(out, l.history)
	return out
}

func (l *Ledger) record(amount int64, label string, now time.Time) {
	l.history = append(l.history, domain.Transaction{
		ID:        uuid.NewString(),
		Amount:    amount,
		Label:     label,
		Timestamp: now,
	})
	l.trim()
}

func (l *Ledger) trim() {
	if l.maxHistory > 0 && len(l.history) > l.maxHistory {
		l.history = l.history[len(l.history)-l.maxHistory:]
	}
}
