package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signin_engine/internal/model"
)

// SaveRun 在一个事务里写入运行记录和每个账号的结果。ID 为空时自动生成。
func (s *Store) SaveRun(ctx context.Context, run model.Run) error {
	if run.Service == "" {
		return errors.New("service is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, service, started_at, finished_at, title, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Service, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Payload.Title, run.Payload.Body)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, r := range run.Reports {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO account_reports (run_id, position, identifier, signin_outcome, signin_detail, lottery_outcome, lottery_detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, r.Identifier, string(r.SignIn.Outcome), r.SignIn.Detail, string(r.Lottery.Outcome), r.Lottery.Detail)
		if err != nil {
			return fmt.Errorf("insert report %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListRuns 按开始时间倒序返回最近的运行记录；service 为空时不过滤。
func (s *Store) ListRuns(ctx context.Context, service string, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service, started_at, finished_at, title, body
		FROM runs
		WHERE (? = '' OR service = ?)
		ORDER BY started_at DESC, id
		LIMIT ?
	`, service, service, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		reports, err := s.listReports(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Reports = reports
	}
	return out, nil
}

func (s *Store) GetRun(ctx context.Context, id string) (model.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, service, started_at, finished_at, title, body
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return model.Run{}, err
	}
	run.Reports, err = s.listReports(ctx, id)
	if err != nil {
		return model.Run{}, err
	}
	return run, nil
}

// PruneRuns 每个服务只保留最近 keep 次运行，返回删除的运行数。
// 账号结果随 runs 级联删除。
func (s *Store) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0, got %d", keep)
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY service ORDER BY started_at DESC, id) AS rn
				FROM runs
			) WHERE rn > ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.Run, error) {
	var (
		run        model.Run
		startedAt  int64
		finishedAt int64
	)
	if err := sc.Scan(&run.ID, &run.Service, &startedAt, &finishedAt, &run.Payload.Title, &run.Payload.Body); err != nil {
		return model.Run{}, err
	}
	run.StartedAt = time.UnixMilli(startedAt)
	run.FinishedAt = time.UnixMilli(finishedAt)
	return run, nil
}

func (s *Store) listReports(ctx context.Context, runID string) ([]model.AccountReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, signin_outcome, signin_detail, lottery_outcome, lottery_detail
		FROM account_reports WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AccountReport{}
	for rows.Next() {
		var (
			r              model.AccountReport
			signOutcome    string
			lotteryOutcome string
		)
		if err := rows.Scan(&r.Identifier, &signOutcome, &r.SignIn.Detail, &lotteryOutcome, &r.Lottery.Detail); err != nil {
			return nil, err
		}
		r.SignIn.Kind = model.ActionSignIn
		r.SignIn.Outcome = model.Outcome(signOutcome)
		r.Lottery.Kind = model.ActionLottery
		r.Lottery.Outcome = model.Outcome(lotteryOutcome)
		out = append(out, r)
	}
	return out, rows.Err()
}

// IsNotFound 判断 GetRun 是否因为记录不存在而失败。
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
