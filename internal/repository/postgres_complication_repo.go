package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/injexpro/internal/model"
)

// PostgresComplicationRepo はPostgreSQLを使用した合併症リポジトリ。
type PostgresComplicationRepo struct {
	db *sql.DB
}

// NewPostgresComplicationRepo はPostgresComplicationRepoを生成する。
func NewPostgresComplicationRepo(db *sql.DB) *PostgresComplicationRepo {
	return &PostgresComplicationRepo{db: db}
}

// List は全合併症を名前順に返す。
// management_protocolのJSONが壊れている行があればエラーを返す。
func (r *PostgresComplicationRepo) List(ctx context.Context) ([]model.Complication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, signs_symptoms, management_protocol
		 FROM complications
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list complications: %w", err)
	}
	defer rows.Close()

	var complications []model.Complication
	for rows.Next() {
		var (
			c        model.Complication
			protocol []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, pq.Array(&c.SignsSymptoms), &protocol); err != nil {
			return nil, fmt.Errorf("failed to scan complication: %w", err)
		}
		if err := json.Unmarshal(protocol, &c.ManagementProtocol); err != nil {
			return nil, fmt.Errorf("malformed management protocol for complication %s: %w", c.ID, err)
		}
		complications = append(complications, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complications: %w", err)
	}

	return complications, nil
}

// compile-time interface check
var _ ComplicationRepository = (*PostgresComplicationRepo)(nil)
