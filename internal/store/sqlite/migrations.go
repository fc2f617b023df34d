package sqlite

import (
	"context"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			service TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_service_started ON runs (service, started_at DESC);`,
		`CREATE TABLE IF NOT EXISTS account_reports (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			identifier TEXT NOT NULL,
			signin_outcome TEXT NOT NULL,
			signin_detail TEXT NOT NULL DEFAULT '',
			lottery_outcome TEXT NOT NULL,
			lottery_detail TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, position)
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
