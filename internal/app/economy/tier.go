package economy

import (
	"time"

	"github.com/drip-labs/drip/internal/domain"
)

// ─── Tier Policy ────────────────────────────────────────────────────────────

// TierPolicy holds one account's purchased tier and its expiry, and answers
// "what multiplier and feature set applies right now". Active status is
// never stored; it is derived from ActiveUntil against the caller's now.
type TierPolicy struct {
	tier        domain.Tier
	activeUntil time.Time
}

// NewTierPolicy starts an account on the free tier with no expiry.
func NewTierPolicy() *TierPolicy {
	return &TierPolicy{tier: domain.TierFree}
}

// restoreTierPolicy rebuilds a policy from persisted snapshot state.
func restoreTierPolicy(tier domain.Tier, activeUntil time.Time) *TierPolicy {
	if !tier.Valid() {
		tier = domain.TierFree
	}
	return &TierPolicy{tier: tier, activeUntil: activeUntil}
}

// Tier returns the stored (purchased) tier, regardless of expiry.
func (p *TierPolicy) Tier() domain.Tier { return p.tier }

// ActiveUntil returns the stored expiry timestamp.
func (p *TierPolicy) ActiveUntil() time.Time { return p.activeUntil }

// IsActive reports whether a purchased tier entitlement is in force at now.
// The free tier carries no entitlement and is never "active".
func (p *TierPolicy) IsActive(now time.Time) bool {
	if p.tier == domain.TierFree {
		return false
	}
	return !now.After(p.activeUntil)
}

// ActiveTier returns the tier in force at now: the stored tier while the
// entitlement lasts, the free tier once it lapses. Lapse is automatic;
// there is no explicit downgrade call.
func (p *TierPolicy) ActiveTier(now time.Time) domain.Tier {
	if p.IsActive(now) {
		return p.tier
	}
	return domain.TierFree
}

// Multiplier returns the yield multiplier in force at now.
func (p *TierPolicy) Multiplier(now time.Time) float64 {
	return p.ActiveTier(now).Info().Multiplier
}

// ActiveInfo returns the full tier row in force at now.
func (p *TierPolicy) ActiveInfo(now time.Time) domain.TierInfo {
	return p.ActiveTier(now).Info()
}

// Upgrade atomically replaces the stored tier and recomputes the expiry as
// now + months billing months. Upgrades overwrite rather than stack: a new
// call always replaces the current entitlement, even when that shortens or
// cheapens what the account already had.
func (p *TierPolicy) Upgrade(tier domain.Tier, months int, now time.Time) error {
	if !tier.Valid() || tier == domain.TierFree {
		return domain.ErrInvalidTier
	}
	if months < 1 {
		return domain.ErrInvalidDuration
	}
	p.tier = tier
	p.activeUntil = now.Add(time.Duration(months) * domain.MonthLength)
	return nil
}
