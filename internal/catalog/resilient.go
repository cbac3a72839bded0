// Package catalog は施術ライブラリ・合併症リファレンス・開業支援資料の参照を提供する。
//
// データストアから読み出せない場合、または結果が空の場合は、
// 同梱のフォールバックデータで応答する。
package catalog

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNotFound はデータストアとフォールバックのどちらにも該当データがないことを表す。
var ErrNotFound = errors.New("catalog: not found")

// FallbackRecorder はフォールバック発生を記録するインターフェース。
// metrics.Collectorが実装する。
type FallbackRecorder interface {
	RecordReferenceFallback(dataset string)
}

// ResilientReader はプライマリの読み取りに失敗した場合にフォールバックへ切り替えるデコレーター。
//
// 切り替え条件:
//   - プライマリがエラーを返した（接続不可・不正な行など）
//   - プライマリの結果がemptyと判定された（0件、未検出）
//
// フォールバックにも該当がなければErrNotFoundを返す。プライマリのエラーは呼び出し元に返さず、ログにのみ記録する。
type ResilientReader[K any, T any] struct {
	dataset  string
	primary  func(ctx context.Context, key K) (T, error)
	empty    func(T) bool
	fallback func(key K) (T, bool)
	recorder FallbackRecorder
	logger   *slog.Logger
}

// NewResilientReader はResilientReaderを生成する。
// recorderとloggerはnilでもよい。loggerがnilの場合はslog.Default()を使う。
func NewResilientReader[K any, T any](
	dataset string,
	primary func(ctx context.Context, key K) (T, error),
	empty func(T) bool,
	fallback func(key K) (T, bool),
	recorder FallbackRecorder,
	logger *slog.Logger,
) *ResilientReader[K, T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientReader[K, T]{
		dataset:  dataset,
		primary:  primary,
		empty:    empty,
		fallback: fallback,
		recorder: recorder,
		logger:   logger,
	}
}

// Read はプライマリから読み取り、必要に応じてフォールバックの結果を返す。
func (r *ResilientReader[K, T]) Read(ctx context.Context, key K) (T, error) {
	result, err := r.primary(ctx, key)
	if err == nil && !r.empty(result) {
		return result, nil
	}

	if err != nil {
		r.logger.WarnContext(ctx, "reference store read failed, using fallback",
			slog.String("dataset", r.dataset),
			slog.String("error", err.Error()),
		)
	} else {
		r.logger.DebugContext(ctx, "reference store returned no data, using fallback",
			slog.String("dataset", r.dataset),
		)
	}
	if r.recorder != nil {
		r.recorder.RecordReferenceFallback(r.dataset)
	}

	fb, ok := r.fallback(key)
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return fb, nil
}
