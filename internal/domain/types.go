// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the architecture; it depends on nothing.
package domain

import (
	"fmt"
	"time"
)

// ─── Source Types ───────────────────────────────────────────────────────────

// SourceKind categorizes how a source produces currency.
type SourceKind string

const (
	// KindPassive sources accrue on their own and are eligible for
	// background auto-collection.
	KindPassive SourceKind = "passive"
	// KindActive sources require an explicit collect call by the owner.
	KindActive SourceKind = "active"
	// KindBonus sources are promotional grants; collected manually.
	KindBonus SourceKind = "bonus"
)

// ValidKind reports whether k is a recognized source kind.
func ValidKind(k SourceKind) bool {
	switch k {
	case KindPassive, KindActive, KindBonus:
		return true
	}
	return false
}

// Source is a single income-generating unit with a collection cooldown.
// A zero LastCollectedAt means the source has never been collected.
type Source struct {
	ID              string        `json:"id"`
	Kind            SourceKind    `json:"kind"`
	Name            string        `json:"name,omitempty"`
	BaseYield       int64         `json:"base_yield"`
	Cooldown        time.Duration `json:"cooldown"`
	LastCollectedAt time.Time     `json:"last_collected_at"`
}

// Ready reports whether the source may be collected at now, using the
// source's raw cooldown (tier effects are applied by the engine).
func (s Source) Ready(now time.Time) bool {
	if s.LastCollectedAt.IsZero() {
		return true
	}
	return now.Sub(s.LastCollectedAt) >= s.Cooldown
}

// Remaining returns how long until the source is collectible again.
// Zero when the source is already ready.
func (s Source) Remaining(now time.Time) time.Duration {
	if s.Ready(now) {
		return 0
	}
	return s.Cooldown - now.Sub(s.LastCollectedAt)
}

// ─── Ledger Types ───────────────────────────────────────────────────────────

// Transaction is a single entry in an account's ledger history.
// Amount is signed: credits positive, debits negative.
type Transaction struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// Snapshot is the unit of transfer between the engine and the persistence
// layer: the full (sources, ledger, tier) state of one account. Any lossless
// round-trip of a Snapshot satisfies the persistence contract.
type Snapshot struct {
	AccountID   string        `json:"account_id"`
	Sources     []Source      `json:"sources"`
	Balance     int64         `json:"balance"`
	TotalEarned int64         `json:"total_earned"`
	History     []Transaction `json:"history"`
	Tier        Tier          `json:"tier"`
	ActiveUntil time.Time     `json:"active_until"`
}

// DefaultSnapshot returns the state a brand-new account starts with:
// no sources, zero balance, base tier with no expiry.
func DefaultSnapshot(accountID string) Snapshot {
	return Snapshot{
		AccountID: accountID,
		Tier:      TierFree,
	}
}

// ─── Collection Results ─────────────────────────────────────────────────────

// CollectResult describes one realized collection.
type CollectResult struct {
	SourceID string     `json:"source_id"`
	Kind     SourceKind `json:"kind"`
	Yield    int64      `json:"yield"`
	Balance  int64      `json:"balance"`
}

// Stats is the aggregate account view returned by the engine.
type Stats struct {
	Balance        int64  `json:"balance"`
	TotalEarned    int64  `json:"total_earned"`
	SourceCount    int    `json:"source_count"`
	ReadySources   int    `json:"ready_sources"`
	CoolingSources int    `json:"cooling_sources"`
	Tier           string `json:"tier"`
	TierActive     bool   `json:"tier_active"`
}

// FormatAmount renders a currency amount for display.
func FormatAmount(amount int64) string {
	return fmt.Sprintf("%d cr", amount)
}
