package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/injexpro/internal/model"
)

// PostgresProcedureRepo はPostgreSQLを使用した施術リポジトリ。
type PostgresProcedureRepo struct {
	db *sql.DB
}

// NewPostgresProcedureRepo はPostgresProcedureRepoを生成する。
func NewPostgresProcedureRepo(db *sql.DB) *PostgresProcedureRepo {
	return &PostgresProcedureRepo{db: db}
}

// List は全施術を名前順に返す。
// 不正な種別を持つ行が含まれる場合はエラーを返す。
func (r *PostgresProcedureRepo) List(ctx context.Context) ([]model.Procedure, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, area, type, description, slug
		 FROM procedures
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list procedures: %w", err)
	}
	defer rows.Close()

	var procedures []model.Procedure
	for rows.Next() {
		var p model.Procedure
		if err := rows.Scan(&p.ID, &p.Name, &p.Area, &p.Type, &p.Description, &p.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan procedure: %w", err)
		}
		if !p.Type.Valid() {
			return nil, fmt.Errorf("procedure %s has unknown type %q", p.ID, p.Type)
		}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate procedures: %w", err)
	}

	return procedures, nil
}

// FindBySlug はslugで施術を取得し、注入パターンを付与して返す。
func (r *PostgresProcedureRepo) FindBySlug(ctx context.Context, slug string) (*model.Procedure, error) {
	p := &model.Procedure{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, area, type, description, slug
		 FROM procedures
		 WHERE slug = $1`,
		slug,
	).Scan(&p.ID, &p.Name, &p.Area, &p.Type, &p.Description, &p.Slug)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find procedure: %w", err)
	}
	if !p.Type.Valid() {
		return nil, fmt.Errorf("procedure %s has unknown type %q", p.ID, p.Type)
	}

	patterns, err := r.listPatterns(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.InjectionPatterns = patterns

	return p, nil
}

func (r *PostgresProcedureRepo) listPatterns(ctx context.Context, procedureID string) ([]model.InjectionPattern, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, pattern_name, target_muscles, dosages
		 FROM injection_patterns
		 WHERE procedure_id = $1
		 ORDER BY created_at, id`,
		procedureID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list injection patterns: %w", err)
	}
	defer rows.Close()

	var patterns []model.InjectionPattern
	for rows.Next() {
		var (
			ip      model.InjectionPattern
			dosages []byte
		)
		if err := rows.Scan(&ip.ID, &ip.PatternName, pq.Array(&ip.TargetMuscles), &dosages); err != nil {
			return nil, fmt.Errorf("failed to scan injection pattern: %w", err)
		}
		if err := json.Unmarshal(dosages, &ip.Dosages); err != nil {
			return nil, fmt.Errorf("malformed dosages for pattern %s: %w", ip.ID, err)
		}
		patterns = append(patterns, ip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate injection patterns: %w", err)
	}

	return patterns, nil
}

// compile-time interface check
var _ ProcedureRepository = (*PostgresProcedureRepo)(nil)
