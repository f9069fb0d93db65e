package economy

import (
	"math"
	"time"

	"github.com/drip-labs/drip/internal/domain"
)

// ─── Collection Engine ──────────────────────────────────────────────────────

// Engine is the single authority for turning elapsed time into balance for
// one account. It owns the source registry, the ledger, and the tier policy,
// and enforces per-source cooldowns and tier multipliers.
//
// The engine is not safe for concurrent use: each account's engine must be
// driven by one goroutine at a time (the account manager serializes access).
// Every mutating operation either fully succeeds or fully fails with no
// partial state.
type Engine struct {
	accountID string
	sources   map[string]*domain.Source
	order     []string // insertion order of source ids
	ledger    *Ledger
	tier      *TierPolicy
}

// NewEngine creates an engine for a fresh account.
func NewEngine(accountID string, maxHistory int) *Engine {
	return &Engine{
		accountID: accountID,
		sources:   make(map[string]*domain.Source),
		ledger:    NewLedger(maxHistory),
		tier:      NewTierPolicy(),
	}
}

// Restore rebuilds an engine from a persisted snapshot.
func Restore(snap domain.Snapshot, maxHistory int) *Engine {
	e := &Engine{
		accountID: snap.AccountID,
		sources:   make(map[string]*domain.Source, len(snap.Sources)),
		order:     make([]string, 0, len(snap.Sources)),
		ledger:    restoreLedger(snap.Balance, snap.TotalEarned, snap.History, maxHistory),
		tier:      restoreTierPolicy(snap.Tier, snap.ActiveUntil),
	}
	for i := range snap.Sources {
		src := snap.Sources[i]
		e.sources[src.ID] = &src
		e.order = append(e.order, src.ID)
	}
	return e
}

// Snapshot captures the engine's full state for persistence.
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		AccountID:   e.accountID,
		Sources:     e.Sources(),
		Balance:     e.ledger.Balance(),
		TotalEarned: e.ledger.TotalEarned(),
		History:     e.ledger.Transactions(),
		Tier:        e.tier.Tier(),
		ActiveUntil: e.tier.ActiveUntil(),
	}
}

// AccountID returns the owning account's id.
func (e *Engine) AccountID() string { return e.accountID }

// ─── Source Registry ────────────────────────────────────────────────────────

// AddSource registers a new source. Fails if the id is already present or
// the active tier's source slots are exhausted.
func (e *Engine) AddSource(src domain.Source, now time.Time) error {
	if src.ID == "" || src.BaseYield < 0 || src.Cooldown < 0 || !domain.ValidKind(src.Kind) {
		return domain.ErrInvalidSource
	}
	if _, ok := e.sources[src.ID]; ok {
		return domain.ErrDuplicateSource
	}
	if len(e.sources) >= e.tier.ActiveInfo(now).MaxSources {
		return domain.ErrSourceLimitReached
	}
	s := src
	e.sources[s.ID] = &s
	e.order = append(e.order, s.ID)
	return nil
}

// RemoveSource deletes a source by id.
func (e *Engine) RemoveSource(id string) error {
	if _, ok := e.sources[id]; !ok {
		return domain.ErrSourceNotFound
	}
	delete(e.sources, id)
	for i, sid := range e.order {
		if sid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Sources returns a snapshot of all sources in insertion order.
func (e *Engine) Sources() []domain.Source {
	out := make([]domain.Source, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.sources[id])
	}
	return out
}

// effectiveCooldown applies the reduced-cooldowns tier feature: active tiers
// carrying the flag halve every source's cooldown.
func (e *Engine) effectiveCooldown(src *domain.Source, now time.Time) time.Duration {
	if e.tier.ActiveInfo(now).Features.ReducedCooldowns {
		return src.Cooldown / 2
	}
	return src.Cooldown
}

func (e *Engine) ready(src *domain.Source, now time.Time) (bool, time.Duration) {
	if src.LastCollectedAt.IsZero() {
		return true, 0
	}
	cd := e.effectiveCooldown(src, now)
	elapsed := now.Sub(src.LastCollectedAt)
	if elapsed >= cd {
		return true, 0
	}
	return false, cd - elapsed
}

// ─── Collection ─────────────────────────────────────────────────────────────

// CollectFrom collects from one source at now. The yield is the source's
// base yield scaled by the tier multiplier in force at now. On success the
// ledger is credited exactly once and the source's cooldown restarts.
// Repeated calls before the cooldown elapses fail with NotReadyError rather
// than double-crediting.
func (e *Engine) CollectFrom(sourceID string, now time.Time) (domain.CollectResult, error) {
	src, ok := e.sources[sourceID]
	if !ok {
		return domain.CollectResult{}, domain.ErrSourceNotFound
	}
	ok, remaining := e.ready(src, now)
	if !ok {
		return domain.CollectResult{}, &domain.NotReadyError{SourceID: sourceID, Remaining: remaining}
	}

	yield := int64(math.Floor(float64(src.BaseYield) * e.tier.Multiplier(now)))
	balance := e.ledger.Balance()
	if yield > 0 {
		var err error
		balance, err = e.ledger.Credit(yield, sourceID, now)
		if err != nil {
			return domain.CollectResult{}, err
		}
	}
	src.LastCollectedAt = now

	return domain.CollectResult{SourceID: sourceID, Kind: src.Kind, Yield: yield, Balance: balance}, nil
}

// SourceReadiness reports whether the source may be collected at now under
// the active tier's cooldown rules, and the wait remaining otherwise.
// This, not the source's raw cooldown, is what CollectFrom enforces.
func (e *Engine) SourceReadiness(sourceID string, now time.Time) (bool, time.Duration, error) {
	src, ok := e.sources[sourceID]
	if !ok {
		return false, 0, domain.ErrSourceNotFound
	}
	ready, remaining := e.ready(src, now)
	return ready, remaining, nil
}

// CollectAll attempts every source at now, skipping those still cooling
// down. Partial success is the normal case, never an error: the result
// holds one entry per source actually collected.
func (e *Engine) CollectAll(now time.Time) []domain.CollectResult {
	return e.collectWhere(now, func(domain.SourceKind) bool { return true })
}

// AutoCollect collects only passive sources, skipping active/manual kinds
// and anything still cooling down.
func (e *Engine) AutoCollect(now time.Time) []domain.CollectResult {
	return e.collectWhere(now, func(k domain.SourceKind) bool { return k == domain.KindPassive })
}

func (e *Engine) collectWhere(now time.Time, keep func(domain.SourceKind) bool) []domain.CollectResult {
	var results []domain.CollectResult
	for _, id := range e.order {
		if !keep(e.sources[id].Kind) {
			continue
		}
		res, err := e.CollectFrom(id, now)
		if err != nil {
			continue // not ready, skip without aborting the batch
		}
		results = append(results, res)
	}
	return results
}

// ─── Direct Ledger Access ───────────────────────────────────────────────────

// AddMoney credits the ledger directly, bypassing sources.
func (e *Engine) AddMoney(amount int64, label string, now time.Time) (int64, error) {
	return e.ledger.Credit(amount, label, now)
}

// SpendMoney debits the ledger. Spends exceeding the balance fail with
// InsufficientFundsError and perform no mutation.
func (e *Engine) SpendMoney(amount int64, label string, now time.Time) (int64, error) {
	return e.ledger.Debit(amount, label, now)
}

// Balance returns the current balance.
func (e *Engine) Balance() int64 { return e.ledger.Balance() }

// History returns the most recent count transactions, newest first.
func (e *Engine) History(count int) []domain.Transaction {
	return e.ledger.History(count)
}

// ─── Tier Operations ────────────────────────────────────────────────────────

// UpgradePlan purchases a tier for the given number of billing months,
// debiting the ledger for the full cost up front. The entitlement replaces
// whatever the account had; it never stacks or extends.
func (e *Engine) UpgradePlan(tier domain.Tier, months int, now time.Time) error {
	if !tier.Valid() || tier == domain.TierFree {
		return domain.ErrInvalidTier
	}
	if months < 1 {
		return domain.ErrInvalidDuration
	}
	cost := tier.Info().CostPerMonth * int64(months)
	if cost > 0 {
		if _, err := e.ledger.Debit(cost, "upgrade:"+tier.String(), now); err != nil {
			return err
		}
	}
	return e.tier.Upgrade(tier, months, now)
}

// TierPolicy exposes the account's tier policy for read-side callers.
func (e *Engine) TierPolicy() *TierPolicy { return e.tier }

// ─── Stats ──────────────────────────────────────────────────────────────────

// Stats returns the aggregate account view at now.
func (e *Engine) Stats(now time.Time) domain.Stats {
	ready, cooling := 0, 0
	for _, id := range e.order {
		if ok, _ := e.ready(e.sources[id], now); ok {
			ready++
		} else {
			cooling++
		}
	}
	return domain.Stats{
		Balance:        e.ledger.Balance(),
		TotalEarned:    e.ledger.TotalEarned(),
		SourceCount:    len(e.order),
		ReadySources:   ready,
		CoolingSources: cooling,
		Tier:           e.tier.ActiveTier(now).String(),
		TierActive:     e.tier.IsActive(now),
	}
}
