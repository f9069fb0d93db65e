// Package scheduler runs the background auto-collect sweep. Accounts whose
// active tier carries the auto-collect feature get their passive sources
// collected on a cron cadence without any API call.
package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/drip-labs/drip/internal/app/economy"
	"github.com/drip-labs/drip/internal/infra/accounts"
	"github.com/drip-labs/drip/internal/infra/observability"
)

// Sweeper periodically auto-collects eligible accounts.
type Sweeper struct {
	accounts *accounts.Manager
	cron     *cron.Cron

	// now is injected for tests; production uses UTC wall clock.
	now func() time.Time
}

// NewSweeper creates a sweeper over the account manager.
func NewSweeper(mgr *accounts.Manager) *Sweeper {
	return &Sweeper{
		accounts: mgr,
		cron:     cron.New(cron.WithSeconds()),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep with the given cron spec (seconds field
// included, e.g. "0 * * * * *" for every minute) and starts the scheduler.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep runs one pass over every persisted account. Accounts without an
// active auto-collect entitlement are skipped; per-account failures are
// logged and never abort the pass.
func (s *Sweeper) Sweep() {
	ids, err := s.accounts.ListAccountIDs()
	if err != nil {
		log.Printf("sweep: list accounts: %v", err)
		return
	}

	now := s.now()
	collected := 0
	for _, id := range ids {
		err := s.accounts.Execute(id, func(e *economy.Engine) error {
			if !e.TierPolicy().ActiveInfo(now).Features.AutoCollect {
				return nil
			}
			for _, res := range e.AutoCollect(now) {
				observability.RecordCollection(string(res.Kind))
				observability.RecordCredit(res.Yield)
				collected++
			}
			return nil
		})
		if err != nil {
			log.Printf("sweep: account %s: %v", id, err)
		}
	}
	observability.RecordSweep(collected)
}
