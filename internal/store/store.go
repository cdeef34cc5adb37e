// Package store provides the SQLite usage ledger for the relay daemon.
// Every priced remote call is recorded here so budgets and summaries can be
// computed without touching the remote account.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB and provides migration support.
type DB struct {
	*sql.DB
}

// New opens a SQLite connection with WAL mode and foreign keys enabled.
// Driver name is "sqlite" (modernc.org/sqlite, not mattn/go-sqlite3).
func New(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_journal=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store.New: open: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("store.New: ping: %w", err)
	}
	// Limit to 1 writer at a time to avoid SQLITE_BUSY in WAL mode.
	sqlDB.SetMaxOpenConns(1)
	return &DB{sqlDB}, nil
}

const schemaVersion = 1

// Migrate runs all CREATE TABLE IF NOT EXISTS migrations exactly once per
// schema version.
func (d *DB) Migrate() error {
	if _, err := d.Exec(ddlSettings); err != nil {
		return fmt.Errorf("store.Migrate: settings table: %w", err)
	}

	var version int
	row := d.QueryRow(`SELECT value FROM settings WHERE key='schema_version' LIMIT 1`)
	_ = row.Scan(&version) // Row may not exist yet (version=0).

	if version >= schemaVersion {
		return nil
	}

	if _, err := d.Exec(ddlUsage); err != nil {
		return fmt.Errorf("store.Migrate: %w", err)
	}

	_, err := d.Exec(`INSERT INTO settings (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, schemaVersion)
	if err != nil {
		return fmt.Errorf("store.Migrate: schema_version upsert: %w", err)
	}
	return nil
}

// Operation names recorded in the ledger.
const (
	OpCount    = "count"
	OpOptimize = "optimize"
)

// UsageEntry is one recorded remote call.
type UsageEntry struct {
	ID           int       `json:"id"`
	Operation    string    `json:"operation"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TokensSaved  int       `json:"tokens_saved"`
	CostUSD      float64   `json:"cost_usd"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordUsage inserts a ledger row for one completed remote call.
func (d *DB) RecordUsage(ctx context.Context, op string, inputTokens, outputTokens, tokensSaved int, costUSD float64) error {
	today := time.Now().Format("2006-01-02")
	_, err := d.ExecContext(ctx, `
		INSERT INTO usage (operation, input_tokens, output_tokens, tokens_saved, cost_usd, date)
		VALUES (?,?,?,?,?,?)`,
		op, inputTokens, outputTokens, tokensSaved, costUSD, today,
	)
	if err != nil {
		return fmt.Errorf("store.RecordUsage: %w", err)
	}
	return nil
}

// DailyTotal aggregates the ledger for a single date (YYYY-MM-DD).
type DailyTotal struct {
	Date         string  `json:"date"`
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TokensSaved  int     `json:"tokens_saved"`
	CostUSD      float64 `json:"cost_usd"`
}

// SpendSince returns the total USD spend recorded on or after date.
func (d *DB) SpendSince(ctx context.Context, date string) (float64, error) {
	var spend float64
	err := d.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_usd), 0) FROM usage WHERE date >= ?`, date,
	).Scan(&spend)
	if err != nil {
		return 0, fmt.Errorf("store.SpendSince: %w", err)
	}
	return spend, nil
}

// TotalsSince returns per-day aggregates for dates on or after since,
// newest first.
func (d *DB) TotalsSince(ctx context.Context, since string) ([]DailyTotal, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT date, COUNT(*),
			SUM(input_tokens), SUM(output_tokens), SUM(tokens_saved), SUM(cost_usd)
		FROM usage WHERE date >= ?
		GROUP BY date ORDER BY date DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("store.TotalsSince: %w", err)
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.Date, &t.Calls,
			&t.InputTokens, &t.OutputTokens, &t.TokensSaved, &t.CostUSD); err != nil {
			return nil, fmt.Errorf("store.TotalsSince: scan: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// GetSetting retrieves a settings value by key, returning fallback if not found.
func (d *DB) GetSetting(key, fallback string) string {
	var v string
	if err := d.QueryRow(`SELECT value FROM settings WHERE key=?`, key).Scan(&v); err != nil {
		return fallback
	}
	return v
}

// SetSetting upserts a settings key-value pair.
func (d *DB) SetSetting(key, value string) error {
	_, err := d.Exec(
		`INSERT INTO settings (key, value) VALUES (?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("store.SetSetting: %w", err)
	}
	return nil
}

const ddlSettings = `CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);`

const ddlUsage = `CREATE TABLE IF NOT EXISTS usage (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	operation     TEXT    NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	tokens_saved  INTEGER NOT NULL DEFAULT 0,
	cost_usd      REAL    NOT NULL DEFAULT 0,
	date          TEXT    NOT NULL,
	created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
);`
