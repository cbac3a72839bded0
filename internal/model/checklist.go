package model

import "time"

// ChecklistStatus はチェックリストセッションの状態を表す。
type ChecklistStatus string

const (
	// ChecklistStatusInProgress は項目の確認中を表す初期状態。
	ChecklistStatusInProgress ChecklistStatus = "in_progress"
	// ChecklistStatusSubmitting は記録の書き込み中を表す。
	ChecklistStatusSubmitting ChecklistStatus = "submitting"
	// ChecklistStatusCompleted は記録が作成済みの終端状態。
	ChecklistStatusCompleted ChecklistStatus = "completed"
)

// ChecklistItem は施術前の安全確認項目を表す。
type ChecklistItem struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

// WorkflowRecord はチェックリスト完了の記録を表す。作成後は変更しない。
type WorkflowRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ProcedureName string    `json:"procedure_name"`
	CreatedAt     time.Time `json:"created_at"`
}
