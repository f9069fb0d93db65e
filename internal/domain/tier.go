package domain

import "time"

// ─── Tier Types ─────────────────────────────────────────────────────────────
// Tiers are a small closed set of ordered service levels. The currently
// active tier is always derived from an expiry timestamp against the caller's
// clock; there is no stored "is active" flag to desync.

// Tier is an ordinal service level. Higher values strictly outrank lower.
type Tier int

const (
	TierFree Tier = iota
	TierPlus
	TierPremium
	TierElite
)

// MonthLength is the billing month used to compute tier expiry.
const MonthLength = 30 * 24 * time.Hour

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierPlus:
		return "plus"
	case TierPremium:
		return "premium"
	case TierElite:
		return "elite"
	default:
		return "unknown"
	}
}

// ParseTier maps a tier name to its Tier value.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "free":
		return TierFree, nil
	case "plus":
		return TierPlus, nil
	case "premium":
		return TierPremium, nil
	case "elite":
		return TierElite, nil
	default:
		return TierFree, ErrInvalidTier
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t >= TierFree && t <= TierElite
}

// Features is the set of capability flags a tier unlocks.
type Features struct {
	ExtraSourceSlots bool `json:"extra_source_slots"`
	ReducedCooldowns bool `json:"reduced_cooldowns"`
	AutoCollect      bool `json:"auto_collect"`
}

// TierInfo describes one tier's pricing and capabilities.
type TierInfo struct {
	Tier         Tier     `json:"tier"`
	Name         string   `json:"name"`
	CostPerMonth int64    `json:"cost_per_month"`
	Multiplier   float64  `json:"multiplier"`
	MaxSources   int      `json:"max_sources"`
	Features     Features `json:"features"`
}

// tierTable is the single authority for tier pricing and capabilities.
// Indexed by Tier ordinal.
var tierTable = [...]TierInfo{
	TierFree: {
		Tier:       TierFree,
		Name:       "free",
		Multiplier: 1.0,
		MaxSources: 3,
	},
	TierPlus: {
		Tier:         TierPlus,
		Name:         "plus",
		CostPerMonth: 500,
		Multiplier:   1.25,
		MaxSources:   6,
		Features:     Features{ExtraSourceSlots: true},
	},
	TierPremium: {
		Tier:         TierPremium,
		Name:         "premium",
		CostPerMonth: 1500,
		Multiplier:   1.75,
		MaxSources:   12,
		Features:     Features{ExtraSourceSlots: true, ReducedCooldowns: true, AutoCollect: true},
	},
	TierElite: {
		Tier:         TierElite,
		Name:         "elite",
		CostPerMonth: 4000,
		Multiplier:   2.5,
		MaxSources:   24,
		Features:     Features{ExtraSourceSlots: true, ReducedCooldowns: true, AutoCollect: true},
	},
}

// Info returns the pricing and capability row for a tier.
// Unknown tiers fall back to the free row.
func (t Tier) Info() TierInfo {
	if !t.Valid() {
		return tierTable[TierFree]
	}
	return tierTable[t]
}

// PlanComparison returns all tiers in ascending order for display.
// Pure data, no state.
func PlanComparison() []TierInfo {
	out := make([]TierInfo, len(tierTable))
	copy(out, tierTable[:])
	return out
}
