package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/drip-labs/drip/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "drip.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadSnapshot_Missing(t *testing.T) {
	db := openTestDB(t)

	snap, found, err := db.LoadSnapshot("ghost", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("found should be false for an unknown account")
	}
	if snap.AccountID != "ghost" || snap.Tier != domain.TierFree || snap.Balance != 0 {
		t.Errorf("missing account should load as default snapshot, got %+v", snap)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	in := domain.Snapshot{
		AccountID: "acct-1",
		Sources: []domain.Source{
			{ID: "rent", Kind: domain.KindPassive, Name: "Apartment", BaseYield: 100, Cooldown: time.Hour, LastCollectedAt: t0},
			{ID: "job", Kind: domain.KindActive, BaseYield: 250, Cooldown: 8 * time.Hour},
		},
		Balance:     350,
		TotalEarned: 350,
		History: []domain.Transaction{
			{ID: "tx-1", Amount: 100, Label: "rent", Timestamp: t0},
			{ID: "tx-2", Amount: 250, Label: "job", Timestamp: t0.Add(time.Minute)},
		},
		Tier:        domain.TierPremium,
		ActiveUntil: t0.Add(domain.MonthLength),
	}

	if err := db.SaveSnapshot(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, found, err := db.LoadSnapshot("acct-1", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("account should be found after save")
	}

	if out.Balance != in.Balance || out.TotalEarned != in.TotalEarned {
		t.Errorf("ledger diverged: got %d/%d, want %d/%d", out.Balance, out.TotalEarned, in.Balance, in.TotalEarned)
	}
	if out.Tier != in.Tier || !out.ActiveUntil.Equal(in.ActiveUntil) {
		t.Errorf("tier diverged: got %v until %v", out.Tier, out.ActiveUntil)
	}

	if len(out.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(out.Sources))
	}
	if out.Sources[0].ID != "rent" || out.Sources[1].ID != "job" {
		t.Error("source insertion order not preserved")
	}
	if !out.Sources[0].LastCollectedAt.Equal(t0) {
		t.Errorf("LastCollectedAt = %v, want %v", out.Sources[0].LastCollectedAt, t0)
	}
	if !out.Sources[1].LastCollectedAt.IsZero() {
		t.Error("never-collected source must load with zero timestamp")
	}
	if out.Sources[1].Cooldown != 8*time.Hour {
		t.Errorf("cooldown = %v, want 8h", out.Sources[1].Cooldown)
	}

	if len(out.History) != 2 {
		t.Fatalf("history = %d, want 2", len(out.History))
	}
	if out.History[0].ID != "tx-1" || out.History[1].ID != "tx-2" {
		t.Error("history must load oldest first")
	}
}

// Persisting the same snapshot twice must not duplicate transactions.
func TestSaveSnapshot_Idempotent(t *testing.T) {
	db := openTestDB(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	snap := domain.Snapshot{
		AccountID: "acct-1",
		Balance:   10,
		History: []domain.Transaction{
			{ID: "tx-1", Amount: 10, Label: "seed", Timestamp: t0},
		},
		Tier: domain.TierFree,
	}

	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("second save: %v", err)
	}

	out, _, err := db.LoadSnapshot("acct-1", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.History) != 1 {
		t.Errorf("history = %d entries, want 1 (no duplicates)", len(out.History))
	}
}

func TestLoadSnapshot_HistoryLimit(t *testing.T) {
	db := openTestDB(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	snap := domain.Snapshot{AccountID: "acct-1", Tier: domain.TierFree}
	for i := 0; i < 5; i++ {
		snap.History = append(snap.History, domain.Transaction{
			ID:        string(rune('a' + i)),
			Amount:    int64(i + 1),
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
		})
	}
	snap.Balance = 15

	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, _, err := db.LoadSnapshot("acct-1", 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.History) != 2 {
		t.Fatalf("history = %d, want 2", len(out.History))
	}
	// The two newest, oldest first.
	if out.History[0].Amount != 4 || out.History[1].Amount != 5 {
		t.Errorf("limited history = %+v, want amounts 4 then 5", out.History)
	}
}

func TestListAccountIDs(t *testing.T) {
	db := openTestDB(t)

	for _, id := range []string{"beta", "alpha"} {
		if err := db.SaveSnapshot(domain.DefaultSnapshot(id)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	ids, err := db.ListAccountIDs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Errorf("ids = %v, want [alpha beta]", ids)
	}
}

// Replacing the source set on save must not resurrect deleted sources.
func TestSaveSnapshot_ReplacesSources(t *testing.T) {
	db := openTestDB(t)

	snap := domain.DefaultSnapshot("acct-1")
	snap.Sources = []domain.Source{
		{ID: "a", Kind: domain.KindPassive, BaseYield: 1},
		{ID: "b", Kind: domain.KindActive, BaseYield: 2},
	}
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap.Sources = snap.Sources[1:]
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("resave: %v", err)
	}

	out, _, err := db.LoadSnapshot("acct-1", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Sources) != 1 || out.Sources[0].ID != "b" {
		t.Errorf("sources = %+v, want only b", out.Sources)
	}
}
