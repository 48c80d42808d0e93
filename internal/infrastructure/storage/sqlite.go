package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/arb_dashboard/internal/domain"
)

// SQLiteJournal records executed trades and simulation stat snapshots
// locally. The backend stays authoritative for everything else; this is a
// history the dashboard can show offline.
type SQLiteJournal struct {
	db *sql.DB
}

var _ domain.TradeJournal = (*SQLiteJournal)(nil)

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	journal := &SQLiteJournal{db: db}
	if err := journal.initSchema(); err != nil {
		return nil, err
	}

	return journal, nil
}

func (j *SQLiteJournal) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pair TEXT NOT NULL,
			buy_exchange TEXT NOT NULL,
			sell_exchange TEXT NOT NULL,
			amount_usdt REAL NOT NULL,
			mode TEXT NOT NULL,
			profit REAL NOT NULL,
			buy_order_id TEXT,
			sell_order_id TEXT,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_pair ON trades(pair);`,
		`CREATE TABLE IF NOT EXISTS stats_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			total_trades INTEGER NOT NULL,
			win_rate REAL NOT NULL,
			total_profit REAL NOT NULL,
			average_profit REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := j.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

func (j *SQLiteJournal) SaveTrade(ctx context.Context, record *domain.TradeRecord) error {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO trades (pair, buy_exchange, sell_exchange, amount_usdt, mode, profit, buy_order_id, sell_order_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Pair, record.BuyExchange, record.SellExchange, record.AmountUSDT,
		string(record.Mode), record.Profit, record.BuyOrderID, record.SellOrderID, record.CreatedAt)
	if err != nil {
		return err
	}
	record.ID, _ = res.LastInsertId()
	return nil
}

func (j *SQLiteJournal) ListTrades(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, pair, buy_exchange, sell_exchange, amount_usdt, mode, profit, buy_order_id, sell_order_id, created_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.TradeRecord
	for rows.Next() {
		r := &domain.TradeRecord{}
		var mode string
		if err := rows.Scan(&r.ID, &r.Pair, &r.BuyExchange, &r.SellExchange, &r.AmountUSDT,
			&mode, &r.Profit, &r.BuyOrderID, &r.SellOrderID, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Mode = domain.TradingMode(mode)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (j *SQLiteJournal) SaveStatsSnapshot(ctx context.Context, snap *domain.StatsSnapshot) error {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO stats_snapshots (total_trades, win_rate, total_profit, average_profit, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.TotalTrades, snap.WinRate, snap.TotalProfit, snap.AverageProfit, snap.CreatedAt)
	if err != nil {
		return err
	}
	snap.ID, _ = res.LastInsertId()
	return nil
}

func (j *SQLiteJournal) ListStatsSnapshots(ctx context.Context, limit int) ([]*domain.StatsSnapshot, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, total_trades, win_rate, total_profit, average_profit, created_at
		 FROM stats_snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*domain.StatsSnapshot
	for rows.Next() {
		s := &domain.StatsSnapshot{}
		if err := rows.Scan(&s.ID, &s.TotalTrades, &s.WinRate, &s.TotalProfit, &s.AverageProfit, &s.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
