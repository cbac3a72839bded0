package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/injexpro/internal/database"
)

// defaultHealthTimeout はデータベース疎通確認のタイムアウト。
const defaultHealthTimeout = 2 * time.Second

// DatabaseHealthChecker は*sql.DBをHealthCheckerに適合させるアダプタ。
type DatabaseHealthChecker struct {
	db      *sql.DB
	timeout time.Duration
}

// NewDatabaseHealthChecker はDatabaseHealthCheckerを生成する。
func NewDatabaseHealthChecker(db *sql.DB) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db, timeout: defaultHealthTimeout}
}

// Check はタイムアウト付きでデータベースにPingする。
func (c *DatabaseHealthChecker) Check(ctx context.Context) error {
	return database.Ping(ctx, c.db, c.timeout)
}

// --- compile-time interface checks ---

var _ HealthChecker = (*DatabaseHealthChecker)(nil)
