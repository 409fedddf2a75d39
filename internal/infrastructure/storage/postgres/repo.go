package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"sfarb/internal/application/port"
	"sfarb/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  id BIGSERIAL PRIMARY KEY,
  symbol TEXT NOT NULL,
  spot_bid DOUBLE PRECISION NOT NULL,
  spot_volume DOUBLE PRECISION NOT NULL,
  futures_ask DOUBLE PRECISION NOT NULL,
  futures_volume DOUBLE PRECISION NOT NULL,
  gross_pct DOUBLE PRECISION NOT NULL,
  net_pct DOUBLE PRECISION NOT NULL,
  net_entry_pct DOUBLE PRECISION NOT NULL,
  net_exit_pct DOUBLE PRECISION NOT NULL,
  fees_pct DOUBLE PRECISION NOT NULL,
  funding_rate DOUBLE PRECISION NOT NULL,
  active BOOLEAN NOT NULL,
  ts_ms BIGINT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_opps_symbol ON opportunities(symbol);
CREATE INDEX IF NOT EXISTS idx_opps_active ON opportunities(active);

CREATE TABLE IF NOT EXISTS crossings (
  id BIGSERIAL PRIMARY KEY,
  symbol TEXT NOT NULL,
  exit_pct DOUBLE PRECISION NOT NULL,
  ts_ms BIGINT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_crossings_symbol ON crossings(symbol);
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

	if _, err := tx.ExecContext(ctx, `UPDATE opportunities SET active=FALSE WHERE active`); err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	for _, o := range opps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO opportunities(
				symbol, spot_bid, spot_volume, futures_ask, futures_volume,
				gross_pct, net_pct, net_entry_pct, net_exit_pct, fees_pct,
				funding_rate, active, ts_ms, created_at)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12, $13)
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
		`INSERT INTO crossings(symbol, exit_pct, ts_ms, created_at) VALUES($1, $2, $3, $4)`,
		c.Symbol, c.ExitPct, c.Timestamp, time.Now().UnixMilli())
	return err
}

var _ port.Repository = (*Repo)(nil)
