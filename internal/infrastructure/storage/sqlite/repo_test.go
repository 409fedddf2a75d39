package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"sfarb/internal/domain/model"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "sfarb.db"))
	if err != nil {
		t.Fatalf("create repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func countWhere(t *testing.T, r *Repo, query string) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestReplaceActiveOpportunities(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []model.Opportunity{
		{Symbol: "BTC", SpotBid: 50000.5, FuturesAsk: 50100, NetExitPct: -0.3, Timestamp: 1},
		{Symbol: "ETH", SpotBid: 2500, FuturesAsk: 2510, NetExitPct: 0.1, Timestamp: 1},
	}
	if err := repo.ReplaceActiveOpportunities(ctx, first); err != nil {
		t.Fatalf("first flush: %v", err)
	}
	if n := countWhere(t, repo, `SELECT COUNT(*) FROM opportunities WHERE active=1`); n != 2 {
		t.Fatalf("active after first flush: want 2, got %d", n)
	}

	second := []model.Opportunity{
		{Symbol: "BTC", SpotBid: 50010, FuturesAsk: 50090, NetExitPct: -0.2, Timestamp: 2},
	}
	if err := repo.ReplaceActiveOpportunities(ctx, second); err != nil {
		t.Fatalf("second flush: %v", err)
	}

	if n := countWhere(t, repo, `SELECT COUNT(*) FROM opportunities WHERE active=1`); n != 1 {
		t.Errorf("active after second flush: want 1, got %d", n)
	}
	if n := countWhere(t, repo, `SELECT COUNT(*) FROM opportunities WHERE active=0`); n != 2 {
		t.Errorf("deactivated history: want 2, got %d", n)
	}

	var bid float64
	err := repo.db.QueryRow(`SELECT spot_bid FROM opportunities WHERE active=1`).Scan(&bid)
	if err != nil {
		t.Fatalf("read active row: %v", err)
	}
	if bid != 50010 {
		t.Errorf("active row must carry the new values, got %v", bid)
	}
}

func TestReplaceActiveWithEmptyBatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ReplaceActiveOpportunities(ctx, []model.Opportunity{{Symbol: "BTC", Timestamp: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.ReplaceActiveOpportunities(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if n := countWhere(t, repo, `SELECT COUNT(*) FROM opportunities WHERE active=1`); n != 0 {
		t.Errorf("empty batch still deactivates the old set, got %d active", n)
	}
}

func TestInsertCrossingAppends(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c := model.Crossing{Symbol: "BTC", ExitPct: 0.05, Timestamp: int64(i)}
		if err := repo.InsertCrossing(ctx, c); err != nil {
			t.Fatalf("insert crossing: %v", err)
		}
	}
	if n := countWhere(t, repo, `SELECT COUNT(*) FROM crossings`); n != 3 {
		t.Errorf("crossings are append-only, want 3 rows, got %d", n)
	}
}
