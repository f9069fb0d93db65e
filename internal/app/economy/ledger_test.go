package economy

import (
	"errors"
	"testing"
	"time"

	"github.com/drip-labs/drip/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLedger_CreditDebit(t *testing.T) {
	l := NewLedger(0)

	if _, err := l.Credit(100, "rent", t0); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := l.Debit(40, "shop", t0.Add(time.Minute)); err != nil {
		t.Fatalf("debit: %v", err)
	}

	if l.Balance() != 60 {
		t.Errorf("balance = %d, want 60", l.Balance())
	}
	if l.TotalEarned() != 100 {
		t.Errorf("total earned = %d, want 100", l.TotalEarned())
	}
}

// Balance must always equal the sum of history amounts: ledger and history
// never diverge.
func TestLedger_BalanceMatchesHistory(t *testing.T) {
	l := NewLedger(0)
	now := t0

	ops := []struct {
		amount int64
		debit  bool
	}{
		{100, false}, {250, false}, {75, true}, {30, false}, {200, true},
	}
	for _, op := range ops {
		now = now.Add(time.Minute)
		if op.debit {
			l.Debit(op.amount, "out", now)
		} else {
			l.Credit(op.amount, "in", now)
		}
	}

	var sum int64
	for _, tx := range l.History(0) {
		sum += tx.Amount
	}
	if sum != l.Balance() {
		t.Errorf("history sum = %d, balance = %d", sum, l.Balance())
	}
}

func TestLedger_OverdraftRejected(t *testing.T) {
	l := NewLedger(0)
	l.Credit(100, "seed", t0)

	_, err := l.Debit(150, "too much", t0)

	var ife *domain.InsufficientFundsError
	if !errors.As(err, &ife) {
		t.Fatalf("err = %v, want InsufficientFundsError", err)
	}
	if ife.Requested != 150 || ife.Balance != 100 {
		t.Errorf("error fields = %+v, want Requested=150 Balance=100", ife)
	}

	// No mutation: balance and history untouched.
	if l.Balance() != 100 {
		t.Errorf("balance = %d, want 100", l.Balance())
	}
	if len(l.History(0)) != 1 {
		t.Errorf("history length = %d, want 1", len(l.History(0)))
	}
}

func TestLedger_InvalidAmounts(t *testing.T) {
	l := NewLedger(0)
	if _, err := l.Credit(0, "zero", t0); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Credit(0) err = %v, want ErrInvalidAmount", err)
	}
	if _, err := l.Debit(-5, "negative", t0); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Debit(-5) err = %v, want ErrInvalidAmount", err)
	}
}

func TestLedger_BoundedHistory(t *testing.T) {
	l := NewLedger(3)
	for i := 1; i <= 5; i++ {
		l.Credit(int64(i), "tick", t0.Add(time.Duration(i)*time.Minute))
	}

	hist := l.History(0)
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3", len(hist))
	}
	// Newest first: amounts 5, 4, 3.
	for i, want := range []int64{5, 4, 3} {
		if hist[i].Amount != want {
			t.Errorf("hist[%d].Amount = %d, want %d", i, hist[i].Amount, want)
		}
	}
	// Balance still reflects everything, trimmed history or not.
	if l.Balance() != 15 {
		t.Errorf("balance = %d, want 15", l.Balance())
	}
}

// Transactions feeds snapshots, so it runs oldest first while History runs
// newest first. Restoring from it must reproduce the same view.
func TestLedger_TransactionsChronological(t *testing.T) {
	l := NewLedger(0)
	l.Credit(1, "a", t0)
	l.Credit(2, "b", t0.Add(time.Minute))
	l.Debit(1, "c", t0.Add(2*time.Minute))

	txs := l.Transactions()
	if len(txs) != 3 {
		t.Fatalf("transactions length = %d, want 3", len(txs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if txs[i].Label != want {
			t.Errorf("txs[%d].Label = %q, want %q", i, txs[i].Label, want)
		}
	}

	restored := restoreLedger(l.Balance(), l.TotalEarned(), txs, 0)
	if restored.History(0)[0].Label != "c" {
		t.Error("restored History(0) should still be newest first")
	}
}

func TestLedger_HistoryCountClamped(t *testing.T) {
	l := NewLedger(0)
	l.Credit(1, "a", t0)
	l.Credit(2, "b", t0.Add(time.Minute))

	if got := len(l.History(10)); got != 2 {
		t.Errorf("History(10) length = %d, want 2", got)
	}
	if got := len(l.History(1)); got != 1 {
		t.Errorf("History(1) length = %d, want 1", got)
	}
	if l.History(1)[0].Amount != 2 {
		t.Error("History(1) should return the newest entry")
	}
}
