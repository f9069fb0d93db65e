// Package accounts coordinates engine access on top of the snapshot store.
// The engine itself is single-threaded; the manager gives each account a
// lock so concurrent API and scheduler calls never interleave on one
// account's state.
package accounts

import (
	"fmt"
	"sync"

	"github.com/drip-labs/drip/internal/app/economy"
	"github.com/drip-labs/drip/internal/infra/sqlite"
)

// Manager loads, executes against, and persists per-account engines.
type Manager struct {
	db           *sqlite.DB
	historyLimit int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager over the given store. historyLimit bounds
// the in-memory transaction history per account (0 = unbounded).
func NewManager(db *sqlite.DB, historyLimit int) *Manager {
	return &Manager{
		db:           db,
		historyLimit: historyLimit,
		locks:        make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(accountID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[accountID] = l
	}
	return l
}

// Execute runs fn against the account's engine under the account lock.
// The snapshot is loaded fresh, fn mutates the engine, and the result is
// persisted before the lock is released. If fn returns an error nothing
// is persisted; if persistence fails the operation fails.
func (m *Manager) Execute(accountID string, fn func(*economy.Engine) error) error {
	l := m.lockFor(accountID)
	l.Lock()
	defer l.Unlock()

	snap, _, err := m.db.LoadSnapshot(accountID, m.historyLimit)
	if err != nil {
		return fmt.Errorf("load account %s: %w", accountID, err)
	}
	engine := economy.Restore(snap, m.historyLimit)

	if err := fn(engine); err != nil {
		return err
	}

	if err := m.db.SaveSnapshot(engine.Snapshot()); err != nil {
		return fmt.Errorf("persist account %s: %w", accountID, err)
	}
	return nil
}

// View runs fn against a read-only copy of the account's engine. Nothing
// is persisted, so mutations inside fn are discarded.
func (m *Manager) View(accountID string, fn func(*economy.Engine) error) error {
	l := m.lockFor(accountID)
	l.Lock()
	defer l.Unlock()

	snap, _, err := m.db.LoadSnapshot(accountID, m.historyLimit)
	if err != nil {
		return fmt.Errorf("load account %s: %w", accountID, err)
	}
	return fn(economy.Restore(snap, m.historyLimit))
}

// Exists reports whether the account has ever been persisted.
func (m *Manager) Exists(accountID string) (bool, error) {
	_, found, err := m.db.LoadSnapshot(accountID, 1)
	return found, err
}

// ListAccountIDs returns every persisted account id.
func (m *Manager) ListAccountIDs() ([]string, error) {
	return m.db.ListAccountIDs()
}
