package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store 保存运行历史：每次运行一行 runs，每个账号一行 account_reports。
// 不保存任何账号密码或会话 Cookie。
type Store struct {
	db *sql.DB
}

// 单连接下 PRAGMA 对整个库生效；foreign_keys 让删除 runs 时级联清理 account_reports。
var pragmas = []struct {
	name string
	stmt string
}{
	{"foreign_keys", "PRAGMA foreign_keys = ON"},
	{"busy_timeout", "PRAGMA busy_timeout = 5000"},
	{"journal_mode", "PRAGMA journal_mode = WAL"},
	{"synchronous", "PRAGMA synchronous = NORMAL"},
}

// Open 打开（必要时创建）历史库，设置 PRAGMA 后执行迁移。
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma %s: %w", p.name, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
