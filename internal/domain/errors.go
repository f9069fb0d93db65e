package domain

import (
	"errors"
	"fmt"
	"time"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency. Every error is
// recoverable by the caller: retry later, top up the balance, pick a valid
// tier.

var (
	// Source errors
	ErrSourceNotFound     = errors.New("source not found")
	ErrDuplicateSource    = errors.New("source id already registered")
	ErrSourceLimitReached = errors.New("source limit for current tier reached")
	ErrInvalidSource      = errors.New("invalid source definition")

	// Ledger errors
	ErrInvalidAmount = errors.New("amount must be positive")

	// Tier errors
	ErrInvalidTier     = errors.New("unrecognized tier")
	ErrInvalidDuration = errors.New("duration must be at least one month")
)

// NotReadyError reports a collection attempt before the cooldown elapsed.
// Remaining carries the wait left so callers can display it.
type NotReadyError struct {
	SourceID  string
	Remaining time.Duration
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("source %s not ready: %s remaining", e.SourceID, e.Remaining)
}

// InsufficientFundsError reports a spend that exceeds the balance.
// No partial spend is performed.
type InsufficientFundsError struct {
	Requested int64
	Balance   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %d, balance %d", e.Requested, e.Balance)
}
