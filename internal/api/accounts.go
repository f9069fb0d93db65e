package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drip-labs/drip/internal/app/economy"
	"github.com/drip-labs/drip/internal/domain"
	"github.com/drip-labs/drip/internal/infra/observability"
)

// ─── Account API ────────────────────────────────────────────────────────────
// REST endpoints for the CLI and dashboard to drive one account's economy.
//
// GET    /api/accounts                         — known account ids
// GET    /api/accounts/{id}/stats              — aggregate account view
// GET    /api/accounts/{id}/history?count=N    — recent transactions
// GET    /api/accounts/{id}/sources            — registered sources
// POST   /api/accounts/{id}/sources            — register a source
// DELETE /api/accounts/{id}/sources/{sourceID} — remove a source
// POST   /api/accounts/{id}/collect            — collect everything ready
// POST   /api/accounts/{id}/collect/{sourceID} — collect one source
// POST   /api/accounts/{id}/deposit            — direct credit
// POST   /api/accounts/{id}/spend              — direct debit
// POST   /api/accounts/{id}/upgrade            — purchase a tier

// writeDomainError maps domain errors onto HTTP statuses. Cooldown and
// balance refusals are conflicts with machine-readable detail; validation
// failures are bad requests.
func writeDomainError(w http.ResponseWriter, err error) {
	var notReady *domain.NotReadyError
	if errors.As(err, &notReady) {
		observability.RecordCollectionRejected()
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": map[string]interface{}{
				"message":           notReady.Error(),
				"type":              "not_ready",
				"source_id":         notReady.SourceID,
				"remaining_seconds": notReady.Remaining.Seconds(),
			},
		})
		return
	}
	var insufficient *domain.InsufficientFundsError
	if errors.As(err, &insufficient) {
		observability.RecordSpendRejected()
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": map[string]interface{}{
				"message":   insufficient.Error(),
				"type":      "insufficient_funds",
				"requested": insufficient.Requested,
				"balance":   insufficient.Balance,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateSource),
		errors.Is(err, domain.ErrSourceLimitReached):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidSource),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidTier),
		errors.Is(err, domain.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func accountID(r *http.Request) string { return chi.URLParam(r, "accountID") }

// handleListAccounts is GET /api/accounts.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.accounts.ListAccountIDs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": ids})
}

// handleStats is GET /api/accounts/{id}/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	var stats domain.Stats
	err := s.accounts.View(accountID(r), func(e *economy.Engine) error {
		stats = e.Stats(now)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleHistory is GET /api/accounts/{id}/history?count=N (default 20).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	count := 20
	if q := r.URL.Query().Get("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}

	var history []domain.Transaction
	err := s.accounts.View(accountID(r), func(e *economy.Engine) error {
		history = e.History(count)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if history == nil {
		history = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// handleListSources is GET /api/accounts/{id}/sources.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	type sourceView struct {
		domain.Source
		Ready            bool    `json:"ready"`
		RemainingSeconds float64 `json:"remaining_seconds"`
	}

	var out []sourceView
	err := s.accounts.View(accountID(r), func(e *economy.Engine) error {
		for _, src := range e.Sources() {
			// Tier-adjusted readiness: the same check CollectFrom enforces,
			// so a client honoring remaining_seconds never waits too long.
			ready, remaining, err := e.SourceReadiness(src.ID, now)
			if err != nil {
				return err
			}
			out = append(out, sourceView{
				Source:           src,
				Ready:            ready,
				RemainingSeconds: remaining.Seconds(),
			})
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if out == nil {
		out = []sourceView{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sources": out})
}

type addSourceRequest struct {
	ID              string `json:"id"`
	Kind            string `json:"kind"`
	Name            string `json:"name"`
	BaseYield       int64  `json:"base_yield"`
	CooldownSeconds int64  `json:"cooldown_seconds"`
}

// handleAddSource is POST /api/accounts/{id}/sources.
func (s *Server) handleAddSource(w http.ResponseWriter, r *http.Request) {
	var req addSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CooldownSeconds < 0 {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidSource.Error())
		return
	}

	src := domain.Source{
		ID:        req.ID,
		Kind:      domain.SourceKind(req.Kind),
		Name:      req.Name,
		BaseYield: req.BaseYield,
		Cooldown:  time.Duration(req.CooldownSeconds) * time.Second,
	}

	now := s.now()
	err := s.accounts.Execute(accountID(r), func(e *economy.Engine) error {
		return e.AddSource(src, now)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

// handleRemoveSource is DELETE /api/accounts/{id}/sources/{sourceID}.
func (s *Server) handleRemoveSource(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")
	err := s.accounts.Execute(accountID(r), func(e *economy.Engine) error {
		return e.RemoveSource(sourceID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": sourceID})
}

// handleCollect is POST /api/accounts/{id}/collect/{sourceID}.
func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")
	now := s.now()

	var result domain.CollectResult
	err := s.accounts.Execute(accountID(r), func(e *economy.Engine) error {
		var err error
		result, err = e.CollectFrom(sourceID, now)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	observability.RecordCollection(string(result.Kind))
	observability.RecordCredit(result.Yield)
	writeJSON(w, http.StatusOK, result)
}

// handleCollectAll is POST /api/accounts/{id}/collect. Sources still on
// cooldown are skipped, never an error.
func (s *Server) handleCollectAll(w http.ResponseWriter, r *http.Request) {
	now := s.now()

	var results []domain.CollectResult
	err := s.accounts.Execute(accountID(r), func(e *economy.Engine) error {
		results = e.CollectAll(now)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var total int64
	for _, res := range results {
		observability.RecordCollection(string(res.Kind))
		observability.RecordCredit(res.Yield)
		total += res.Yield
	}
	if results == nil {
		results = []domain.CollectResult{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collected": results,
		"total":     total,
	})
}

type amountRequest struct {
	Amount int64  `json:"amount"`
	Label  string `json:"label"`
}

// handleDeposit is POST /api/accounts/{id}/deposit.
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := s.now()
	var balance int64
	err := s.accounts.Execute(accountID(r), func(e *economy.Engine) error {
		var err error
		balance, err = e.AddMoney(req.Amount, req.Label, now)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	observability.RecordCredit(req.Amount)
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// handleSpend is POST /api/accounts/{id}/spend.
func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := s.now()
	var balance int64
	err := s.accounts.Execute(accountID(r), func(e *economy.Engine) error {
		var err error
		balance, err = e.SpendMoney(req.Amount, req.Label, now)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

type upgradeRequest struct {
	Tier   string `json:"tier"`
	Months int    `json:"months"`
}

// handleUpgrade is POST /api/accounts/{id}/upgrade. The full cost is
// debited up front; the purchased plan replaces the current one outright.
func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tier, err := domain.ParseTier(req.Tier)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := s.now()
	var stats domain.Stats
	err = s.accounts.Execute(accountID(r), func(e *economy.Engine) error {
		if err := e.UpgradePlan(tier, req.Months, now); err != nil {
			return err
		}
		stats = e.Stats(now)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	observability.RecordTierUpgrade(tier.String())
	writeJSON(w, http.StatusOK, stats)
}
