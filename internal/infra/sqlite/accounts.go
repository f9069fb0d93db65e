package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/drip-labs/drip/internal/domain"
)

// ─── Snapshot Operations ────────────────────────────────────────────────────

// SaveSnapshot writes the full account snapshot in one transaction: the
// account row is upserted, sources are replaced wholesale (preserving
// insertion order via position), and history entries are appended with
// INSERT OR IGNORE so persisting the same snapshot twice is harmless.
func (db *DB) SaveSnapshot(snap domain.Snapshot) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO accounts (id, balance, total_earned, tier, active_until, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			balance      = excluded.balance,
			total_earned = excluded.total_earned,
			tier         = excluded.tier,
			active_until = excluded.active_until,
			updated_at   = datetime('now')
	`, snap.AccountID, snap.Balance, snap.TotalEarned, int(snap.Tier), formatTime(snap.ActiveUntil))
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM sources WHERE account_id = ?`, snap.AccountID); err != nil {
		return fmt.Errorf("clear sources: %w", err)
	}
	for i, src := range snap.Sources {
		_, err := tx.Exec(`
			INSERT INTO sources (account_id, id, kind, name, base_yield, cooldown_ns, last_collected_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, snap.AccountID, src.ID, string(src.Kind), src.Name, src.BaseYield, int64(src.Cooldown), formatTime(src.LastCollectedAt), i)
		if err != nil {
			return fmt.Errorf("insert source %s: %w", src.ID, err)
		}
	}

	for _, entry := range snap.History {
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO transactions (id, account_id, amount, label, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, entry.ID, snap.AccountID, entry.Amount, entry.Label, formatTime(entry.Timestamp))
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadSnapshot reads an account snapshot. The second return is false when
// the account has never been persisted; callers supply the default snapshot
// in that case. historyLimit bounds the loaded transaction history
// (0 = everything).
func (db *DB) LoadSnapshot(accountID string, historyLimit int) (domain.Snapshot, bool, error) {
	snap := domain.DefaultSnapshot(accountID)

	var tier int
	var activeUntil string
	err := db.db.QueryRow(`
		SELECT balance, total_earned, tier, active_until
		FROM accounts WHERE id = ?
	`, accountID).Scan(&snap.Balance, &snap.TotalEarned, &tier, &activeUntil)
	if err == sql.ErrNoRows {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("load account: %w", err)
	}
	snap.Tier = domain.Tier(tier)
	snap.ActiveUntil = parseTime(activeUntil)

	snap.Sources, err = db.loadSources(accountID)
	if err != nil {
		return snap, false, err
	}
	snap.History, err = db.loadHistory(accountID, historyLimit)
	if err != nil {
		return snap, false, err
	}
	return snap, true, nil
}

func (db *DB) loadSources(accountID string) ([]domain.Source, error) {
	rows, err := db.db.Query(`
		SELECT id, kind, name, base_yield, cooldown_ns, last_collected_at
		FROM sources WHERE account_id = ? ORDER BY position
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	defer rows.Close()

	var out []domain.Source
	for rows.Next() {
		var src domain.Source
		var kind, last string
		var cooldownNs int64
		if err := rows.Scan(&src.ID, &kind, &src.Name, &src.BaseYield, &cooldownNs, &last); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.Kind = domain.SourceKind(kind)
		src.Cooldown = time.Duration(cooldownNs)
		src.LastCollectedAt = parseTime(last)
		out = append(out, src)
	}
	return out, rows.Err()
}

func (db *DB) loadHistory(accountID string, limit int) ([]domain.Transaction, error) {
	q := `SELECT id, amount, label, created_at FROM transactions
	      WHERE account_id = ? ORDER BY seq DESC`
	args := []any{accountID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var newest []domain.Transaction
	for rows.Next() {
		var entry domain.Transaction
		var created string
		if err := rows.Scan(&entry.ID, &entry.Amount, &entry.Label, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		entry.Timestamp = parseTime(created)
		newest = append(newest, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Snapshot history runs oldest → newest.
	out := make([]domain.Transaction, len(newest))
	for i, entry := range newest {
		out[len(newest)-1-i] = entry
	}
	return out, nil
}

// ListAccountIDs returns every persisted account id, ordered for stable
// sweeps.
func (db *DB) ListAccountIDs() ([]string, error) {
	rows, err := db.db.Query(`SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ─── Time Encoding ──────────────────────────────────────────────────────────
// Zero times are stored as the empty string so "never collected" and
// "no tier expiry" survive the round trip.

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
