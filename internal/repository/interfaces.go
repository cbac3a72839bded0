// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/injexpro/internal/model"
)

// SessionRepository はプロバイダーモードのサーバー側セッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。存在しないか期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// UpdateTokens はプロバイダーのトークンをリフレッシュ後の値に置き換える。
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// ProcedureRepository は施術ライブラリの参照インターフェース。
type ProcedureRepository interface {
	// List は全施術を名前順に返す。注入パターンは含まない。
	List(ctx context.Context) ([]model.Procedure, error)
	// FindBySlug はslugで施術を注入パターン付きで取得する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Procedure, error)
}

// ComplicationRepository は合併症リファレンスの参照インターフェース。
type ComplicationRepository interface {
	// List は全合併症を名前順に返す。
	List(ctx context.Context) ([]model.Complication, error)
}

// ChecklistRecordRepository はチェックリスト完了記録の永続化インターフェース。
// 記録は追記のみで、更新・削除は行わない。
type ChecklistRecordRepository interface {
	// Create は完了記録を1件作成する。
	Create(ctx context.Context, record *model.WorkflowRecord) error
	// ListByUserID はユーザーの完了記録を新しい順に最大limit件返す。
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.WorkflowRecord, error)
}
