package checklist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/injexpro/internal/model"
	"github.com/hitoshi/injexpro/internal/repository"
)

// LatencyRecorder は記録書き込みのレイテンシを記録するインターフェース。
type LatencyRecorder interface {
	RecordRecordWriteLatency(duration time.Duration)
}

// RepositoryWriter はChecklistRecordRepositoryに完了記録を1件追加するRecordWriter。
// リトライは行わない。
type RepositoryWriter struct {
	repo    repository.ChecklistRecordRepository
	latency LatencyRecorder
}

// NewRepositoryWriter はRepositoryWriterを生成する。latencyはnilでもよい。
func NewRepositoryWriter(repo repository.ChecklistRecordRepository, latency LatencyRecorder) *RepositoryWriter {
	return &RepositoryWriter{repo: repo, latency: latency}
}

// WriteRecord は新しいIDを採番して完了記録を作成する。
func (w *RepositoryWriter) WriteRecord(ctx context.Context, userID, procedureName string) (*model.WorkflowRecord, error) {
	record := &model.WorkflowRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		ProcedureName: procedureName,
	}

	start := time.Now()
	err := w.repo.Create(ctx, record)
	if w.latency != nil {
		w.latency.RecordRecordWriteLatency(time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// compile-time interface check
var _ RecordWriter = (*RepositoryWriter)(nil)
