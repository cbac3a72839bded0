package repository

import (
	"context"

	"github.com/hitoshi/injexpro/internal/model"
)

// OfflineProcedureRepo はDB未接続時に使用する施術リポジトリ。
// 常にErrStoreUnavailableを返し、呼び出し側のフォールバックに委ねる。
type OfflineProcedureRepo struct{}

// List はErrStoreUnavailableを返す。
func (OfflineProcedureRepo) List(context.Context) ([]model.Procedure, error) {
	return nil, model.ErrStoreUnavailable
}

// FindBySlug はErrStoreUnavailableを返す。
func (OfflineProcedureRepo) FindBySlug(context.Context, string) (*model.Procedure, error) {
	return nil, model.ErrStoreUnavailable
}

// OfflineComplicationRepo はDB未接続時に使用する合併症リポジトリ。
type OfflineComplicationRepo struct{}

// List はErrStoreUnavailableを返す。
func (OfflineComplicationRepo) List(context.Context) ([]model.Complication, error) {
	return nil, model.ErrStoreUnavailable
}

// compile-time interface check
var (
	_ ProcedureRepository    = OfflineProcedureRepo{}
	_ ComplicationRepository = OfflineComplicationRepo{}
)
