package checklist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/injexpro/internal/model"
	"github.com/hitoshi/injexpro/internal/repository"
)

// historyLimit は完了履歴として返す最大件数。
const historyLimit = 50

// MetricsRecorder はチェックリストのメトリクスを記録するインターフェース。
// metrics.Collectorが実装する。
type MetricsRecorder interface {
	RecordChecklistSubmission(outcome string)
	SetOpenChecklistSessions(count int)
}

// 送信結果ラベル
const (
	submissionSuccess  = "success"
	submissionRejected = "rejected"
	submissionError    = "error"
)

// ServiceConfig はチェックリストサービスの設定を保持する。
type ServiceConfig struct {
	SessionTTL      time.Duration // 最終アクセスからこの時間を超えたセッションは破棄する
	CleanupInterval time.Duration // 破棄処理の実行間隔
}

// Service はユーザーごとの開いているチェックリストセッションを管理する。
// セッションはメモリ上にのみ保持し、完了時にRecordWriterで記録を永続化する。
type Service struct {
	config  ServiceConfig
	def     *Definition
	writer  RecordWriter
	records repository.ChecklistRecordRepository
	metrics MetricsRecorder
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewService はServiceを生成する。Startを呼ぶまでセッションの破棄は行われない。
// metricsとloggerはnilでもよい。
func NewService(
	config ServiceConfig,
	def *Definition,
	writer RecordWriter,
	records repository.ChecklistRecordRepository,
	metrics MetricsRecorder,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	return &Service{
		config:   config,
		def:      def,
		writer:   writer,
		records:  records,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
		stopCh:   make(chan struct{}),
	}
}

// Definition はチェックリスト定義を返す。
func (s *Service) Definition() *Definition {
	return s.def
}

// Open は新しいチェックリストセッションを開く。
func (s *Service) Open(userID, procedureName string) (View, error) {
	procedureName = strings.TrimSpace(procedureName)
	if procedureName == "" {
		return View{}, model.NewValidationError("Procedure name is required")
	}

	session := NewSession(uuid.NewString(), userID, procedureName, s.def.ItemIDs(), s.now())

	s.mu.Lock()
	s.sessions[session.id] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.reportOpen(count)
	return session.View(), nil
}

// Get はセッションの現在の状態を返す。
func (s *Service) Get(userID, sessionID string) (View, error) {
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return View{}, err
	}
	return session.View(), nil
}

// ToggleItem は項目のチェック状態を設定し、更新後の状態を返す。
func (s *Service) ToggleItem(userID, sessionID, itemID string, checked bool) (View, error) {
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return View{}, err
	}
	if err := session.ToggleItem(itemID, checked); err != nil {
		return View{}, err
	}
	return session.View(), nil
}

// Submit はセッションを送信し、完了記録を作成する。
func (s *Service) Submit(ctx context.Context, userID, sessionID string) (View, error) {
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return View{}, err
	}

	if err := session.Submit(ctx, s.writer); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			s.recordSubmission(submissionRejected)
		} else {
			s.recordSubmission(submissionError)
			s.logger.ErrorContext(ctx, "checklist record write failed",
				slog.String("user_id", userID),
				slog.String("checklist_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return View{}, err
	}

	s.recordSubmission(submissionSuccess)
	s.logger.InfoContext(ctx, "checklist completed",
		slog.String("user_id", userID),
		slog.String("checklist_id", sessionID),
	)
	return session.View(), nil
}

// Close はセッションを破棄する。書き込み中のセッションも破棄できるが、書き込み自体は中断しない。
func (s *Service) Close(userID, sessionID string) error {
	if _, err := s.lookup(userID, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	count := len(s.sessions)
	s.mu.Unlock()

	s.reportOpen(count)
	return nil
}

// History はユーザーの完了記録を新しい順に返す。
func (s *Service) History(ctx context.Context, userID string) ([]model.WorkflowRecord, error) {
	return s.records.ListByUserID(ctx, userID, historyLimit)
}

// OpenCount は開いているセッション数を返す。
func (s *Service) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Start はバックグラウンドで放置セッションの破棄を開始する。
func (s *Service) Start() {
	go s.cleanupLoop()
}

// Stop は破棄処理のバックグラウンドゴルーチンを停止する。複数回呼んでも安全。
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// lookup はセッションを取得し、最終アクセス時刻を更新する。
// 他のユーザーのセッションは存在しないものとして扱う。
func (s *Service) lookup(userID, sessionID string) (*Session, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()

	if !ok || session.userID != userID {
		return nil, model.NewChecklistNotFoundError(sessionID)
	}
	session.touch(s.now())
	return session, nil
}

// cleanupLoop はバックグラウンドで放置セッションを定期的に破棄する。
func (s *Service) cleanupLoop() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup は最終アクセスからSessionTTLを超えたセッションを破棄する。
// 書き込み中のセッションは対象外とする。
func (s *Service) cleanup() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, session := range s.sessions {
		idle, submitting := session.idleSince(now)
		if !submitting && idle > s.config.SessionTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("evicted idle checklist sessions", slog.Int("count", removed))
	}
	s.reportOpen(count)
	return removed
}

func (s *Service) reportOpen(count int) {
	if s.metrics != nil {
		s.metrics.SetOpenChecklistSessions(count)
	}
}

func (s *Service) recordSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordChecklistSubmission(outcome)
	}
}
