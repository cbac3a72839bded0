package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/injexpro/internal/model"
)

// MemoryChecklistRecordRepo はDATABASE_URL未設定時に使用するインメモリの完了記録リポジトリ。
// プロセス終了で記録は失われる。
type MemoryChecklistRecordRepo struct {
	mu      sync.RWMutex
	records []model.WorkflowRecord
	now     func() time.Time
}

// NewMemoryChecklistRecordRepo はMemoryChecklistRecordRepoを生成する。
func NewMemoryChecklistRecordRepo() *MemoryChecklistRecordRepo {
	return &MemoryChecklistRecordRepo{now: time.Now}
}

// Create は完了記録を追加する。
func (r *MemoryChecklistRecordRepo) Create(ctx context.Context, record *model.WorkflowRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record.CreatedAt = r.now()
	r.records = append(r.records, *record)
	return nil
}

// ListByUserID はユーザーの完了記録を新しい順に返す。
func (r *MemoryChecklistRecordRepo) ListByUserID(_ context.Context, userID string, limit int) ([]model.WorkflowRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// 追加順の逆に集めてから安定ソートし、同時刻の記録は後から追加したものを先にする
	records := []model.WorkflowRecord{}
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			records = append(records, r.records[i])
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// compile-time interface check
var _ ChecklistRecordRepository = (*MemoryChecklistRecordRepo)(nil)
