package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sfarb/internal/application/port"
	"sfarb/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS opportunities (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  spot_bid REAL NOT NULL,
  spot_volume REAL NOT NULL,
  futures_ask REAL NOT NULL,
  futures_volume REAL NOT NULL,
  gross_pct REAL NOT NULL,
  net_pct REAL NOT NULL,
  net_entry_pct REAL NOT NULL,
  net_exit_pct REAL NOT NULL,
  fees_pct REAL NOT NULL,
  funding_rate REAL NOT NULL,
  active INTEGER NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_opps_symbol ON opportunities(symbol);
CREATE INDEX IF NOT EXISTS idx_opps_active ON opportunities(active);
CREATE INDEX IF NOT EXISTS idx_opps_ts ON opportunities(ts_ms);

CREATE TABLE IF NOT EXISTS crossings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  exit_pct REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_crossings_symbol ON crossings(symbol);
CREATE INDEX IF NOT EXISTS idx_crossings_ts ON crossings(ts_ms);
`)
	return err
}

// ReplaceActiveOpportunities 同一事务内先整体下线旧行，再写入新一批 active 行
func (r *Repo) ReplaceActiveOpportunities(ctx context.Context, opps []model.Opportunity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE opportunities SET active=0 WHERE active=1`); err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	for _, o := range opps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO opportunities(
				symbol, spot_bid, spot_volume, futures_ask, futures_volume,
				gross_pct, net_pct, net_entry_pct, net_exit_pct, fees_pct,
				funding_rate, active, ts_ms, created_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		`, o.Symbol, o.SpotBid, o.SpotVolume, o.FuturesAsk, o.FuturesVolume,
			o.GrossSpreadPct, o.NetSpreadPct, o.NetEntryPct, o.NetExitPct, o.FeesPct,
			o.FundingRate, o.Timestamp, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) InsertCrossing(ctx context.Context, c model.Crossing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO crossings(symbol, exit_pct, ts_ms, created_at) VALUES(?, ?, ?, ?)`,
		c.Symbol, c.ExitPct, c.Timestamp, time.Now().UnixMilli())
	return err
}

var _ port.Repository = (*Repo)(nil)
