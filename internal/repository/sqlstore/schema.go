package sqlstore

import (
	"context"
	"fmt"
)

// bootstrap applies the table definitions. Statements are idempotent so
// startup is safe against an existing database.
func (s *Store) bootstrap(ctx context.Context) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'viewer',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			last_login TEXT NOT NULL DEFAULT '',
			created_by INTEGER NOT NULL DEFAULT 0
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS partners (
			id %s,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			code TEXT UNIQUE NOT NULL,
			province_code TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			created_by INTEGER NOT NULL DEFAULT 0
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS protocols (
			id %s,
			code TEXT UNIQUE NOT NULL,
			province_code TEXT NOT NULL,
			partner_id INTEGER NOT NULL REFERENCES partners (id),
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			created_by INTEGER NOT NULL DEFAULT 0,
			updated_by INTEGER NOT NULL DEFAULT 0
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS stock_tracking (
			id %s,
			partner_id INTEGER UNIQUE NOT NULL REFERENCES partners (id),
			total_allocated INTEGER NOT NULL DEFAULT 0,
			total_used INTEGER NOT NULL DEFAULT 0,
			total_available INTEGER NOT NULL DEFAULT 0,
			last_updated TEXT NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS activity_logs (
			id %s,
			user_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL DEFAULT '',
			target_id TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS analytics_daily (
			id %s,
			date TEXT UNIQUE NOT NULL,
			total_protocols INTEGER NOT NULL DEFAULT 0,
			created_count INTEGER NOT NULL DEFAULT 0,
			delivered_count INTEGER NOT NULL DEFAULT 0,
			terpakai_count INTEGER NOT NULL DEFAULT 0,
			scan_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`, pk),
		`CREATE INDEX IF NOT EXISTS idx_protocols_partner ON protocols (partner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_protocols_created_at ON protocols (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_logs (created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
