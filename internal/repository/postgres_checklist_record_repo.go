package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/injexpro/internal/model"
)

// PostgresChecklistRecordRepo はPostgreSQLを使用したチェックリスト完了記録リポジトリ。
type PostgresChecklistRecordRepo struct {
	db *sql.DB
}

// NewPostgresChecklistRecordRepo はPostgresChecklistRecordRepoを生成する。
func NewPostgresChecklistRecordRepo(db *sql.DB) *PostgresChecklistRecordRepo {
	return &PostgresChecklistRecordRepo{db: db}
}

// Create は完了記録を作成する。created_atはDB側で採番し、recordに書き戻す。
func (r *PostgresChecklistRecordRepo) Create(ctx context.Context, record *model.WorkflowRecord) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO checklist_records (id, user_id, procedure_name)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		record.ID, record.UserID, record.ProcedureName,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checklist record: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの完了記録を新しい順に返す。
func (r *PostgresChecklistRecordRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]model.WorkflowRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, procedure_name, created_at
		 FROM checklist_records
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist records: %w", err)
	}
	defer rows.Close()

	records := []model.WorkflowRecord{}
	for rows.Next() {
		var rec model.WorkflowRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ProcedureName, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklist records: %w", err)
	}

	return records, nil
}

// compile-time interface check
var _ ChecklistRecordRepository = (*PostgresChecklistRecordRepo)(nil)
