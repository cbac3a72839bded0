package checklist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/injexpro/internal/model"
)

// RecordWriter はチェックリスト完了記録を書き込むインターフェース。
type RecordWriter interface {
	WriteRecord(ctx context.Context, userID, procedureName string) (*model.WorkflowRecord, error)
}

// Session は1件のワークフローダイアログに対応するチェックリストの状態機械。
//
// 状態遷移: InProgress → Submitting → Completed（終端）。書き込み失敗時はSubmittingからInProgressへ戻る。
// フィールドはmuで保護するが、記録の書き込み中はロックを解放する。
// 書き込み中の再送信はSubmitting状態によって拒否される。
type Session struct {
	mu sync.Mutex

	id            string
	userID        string
	procedureName string
	required      []string
	checked       map[string]bool
	status        model.ChecklistStatus
	record        *model.WorkflowRecord
	createdAt     time.Time
	lastAccess    time.Time
}

// View はチェックリストセッションのAPI表現。
type View struct {
	ID              string                `json:"id"`
	ProcedureName   string                `json:"procedure_name"`
	Status          model.ChecklistStatus `json:"status"`
	CheckedItemIDs  []string              `json:"checked_item_ids"`
	RequiredItemIDs []string              `json:"required_item_ids"`
	Ready           bool                  `json:"ready"`
	RecordID        string                `json:"record_id,omitempty"`
}

// NewSession は全項目未チェックのInProgressセッションを生成する。
func NewSession(id, userID, procedureName string, required []string, now time.Time) *Session {
	return &Session{
		id:            id,
		userID:        userID,
		procedureName: procedureName,
		required:      append([]string(nil), required...),
		checked:       make(map[string]bool, len(required)),
		status:        model.ChecklistStatusInProgress,
		createdAt:     now,
		lastAccess:    now,
	}
}

// ToggleItem は項目のチェック状態を設定する。
// InProgress以外では何もしない。未知の項目IDはVALIDATION_ERRORを返す。
func (s *Session) ToggleItem(itemID string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRequired(itemID) {
		return model.NewValidationError(fmt.Sprintf("Unknown checklist item: %s", itemID))
	}
	if s.status != model.ChecklistStatusInProgress {
		return nil
	}

	if checked {
		s.checked[itemID] = true
	} else {
		delete(s.checked, itemID)
	}
	return nil
}

// IsReady は全ての必須項目がチェック済みかどうかを返す。
func (s *Session) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isReady()
}

// Status は現在の状態を返す。
func (s *Session) Status() model.ChecklistStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Submit は全項目がチェック済みの場合に完了記録を1件書き込む。
//
//   - Completed: CHECKLIST_COMPLETEDを返し、書き込みは行わない
//   - Submitting: SUBMISSION_IN_PROGRESSを返す
//   - 未チェック項目あり: CHECKLIST_NOT_READYを返す
//
// 書き込みに失敗した場合はInProgressに戻し、リトライせずにエラーを返す。
func (s *Session) Submit(ctx context.Context, w RecordWriter) error {
	// 1. 状態を検証してSubmittingへ遷移する
	s.mu.Lock()
	switch {
	case s.status == model.ChecklistStatusCompleted:
		s.mu.Unlock()
		return model.NewChecklistCompletedError()
	case s.status == model.ChecklistStatusSubmitting:
		s.mu.Unlock()
		return model.NewSubmissionInProgressError()
	case !s.isReady():
		s.mu.Unlock()
		return model.NewChecklistNotReadyError()
	}
	s.status = model.ChecklistStatusSubmitting
	userID, procedureName := s.userID, s.procedureName
	s.mu.Unlock()

	// 2. ロックを解放した状態で記録を書き込む
	record, err := w.WriteRecord(ctx, userID, procedureName)

	// 3. 結果に応じて状態を確定する
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = model.ChecklistStatusInProgress
		return fmt.Errorf("failed to write checklist record: %w", err)
	}
	s.status = model.ChecklistStatusCompleted
	s.record = record
	return nil
}

// View は現在の状態のスナップショットを返す。チェック済み項目は必須項目の順に並べる。
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	checked := make([]string, 0, len(s.checked))
	for _, id := range s.required {
		if s.checked[id] {
			checked = append(checked, id)
		}
	}

	v := View{
		ID:              s.id,
		ProcedureName:   s.procedureName,
		Status:          s.status,
		CheckedItemIDs:  checked,
		RequiredItemIDs: append([]string(nil), s.required...),
		Ready:           s.isReady(),
	}
	if s.record != nil {
		v.RecordID = s.record.ID
	}
	return v
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
}

// idleSince は最終アクセスからの経過時間と、書き込み中かどうかを返す。
func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastAccess), s.status == model.ChecklistStatusSubmitting
}

func (s *Session) isRequired(itemID string) bool {
	for _, id := range s.required {
		if id == itemID {
			return true
		}
	}
	return false
}

func (s *Session) isReady() bool {
	if len(s.checked) != len(s.required) {
		return false
	}
	for _, id := range s.required {
		if !s.checked[id] {
			return false
		}
	}
	return true
}
