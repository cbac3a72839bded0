// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, reference, checklist, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeAuth                 = "AUTH_ERROR"
	ErrCodeUnauthenticated      = "UNAUTHENTICATED"
	ErrCodeAccountExists        = "ACCOUNT_EXISTS"
	ErrCodePendingConfirmation  = "PENDING_CONFIRMATION"
	ErrCodeProcedureNotFound    = "PROCEDURE_NOT_FOUND"
	ErrCodeChecklistNotFound    = "CHECKLIST_NOT_FOUND"
	ErrCodeChecklistNotReady    = "CHECKLIST_NOT_READY"
	ErrCodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	ErrCodeChecklistCompleted   = "CHECKLIST_COMPLETED"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// ErrStoreUnavailable は参照データストアが利用できないことを表す。
// フォールバックデータへの切り替えに使われ、ユーザーには表示しない。
var ErrStoreUnavailable = errors.New("reference store unavailable")

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewAuthError は認証情報が拒否された場合のエラーを生成する。
func NewAuthError() *APIError {
	return &APIError{
		Code:     ErrCodeAuth,
		Message:  "Invalid email or password. Please check your credentials and try again.",
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewUnauthenticatedError は未認証リクエストのエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewConflictError は既に登録済みのアカウントで新規登録しようとした場合のエラーを生成する。
func NewConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountExists,
		Message:  "An account with this email already exists. Please sign in instead.",
		Category: "auth",
		Action:   "ログイン画面からサインインしてください。",
	}
}

// NewPendingConfirmationError はメール確認待ちの状態を表すエラーを生成する。
// リトライではなく、ユーザーに確認メールの操作を促す終端状態。
func NewPendingConfirmationError() *APIError {
	return &APIError{
		Code:     ErrCodePendingConfirmation,
		Message:  "Please check your email and click the confirmation link to complete your registration.",
		Category: "auth",
		Action:   "確認メールのリンクを開いてください。",
	}
}

// NewProcedureNotFoundError は施術が見つからない場合のエラーを生成する。
func NewProcedureNotFoundError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeProcedureNotFound,
		Message:  fmt.Sprintf("Procedure not found: %s", slug),
		Category: "reference",
		Action:   "施術一覧から選択し直してください。",
	}
}

// NewChecklistNotFoundError はチェックリストセッションが見つからない場合のエラーを生成する。
func NewChecklistNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeChecklistNotFound,
		Message:  fmt.Sprintf("Checklist session not found: %s", id),
		Category: "checklist",
		Action:   "施術画面からワークフローを開き直してください。",
	}
}

// NewChecklistNotReadyError は未確認の項目が残っている状態で送信された場合のエラーを生成する。
func NewChecklistNotReadyError() *APIError {
	return &APIError{
		Code:     ErrCodeChecklistNotReady,
		Message:  "Please complete all safety checks before proceeding.",
		Category: "checklist",
		Action:   "すべての安全確認項目にチェックしてください。",
	}
}

// NewSubmissionInProgressError は送信処理中に再送信された場合のエラーを生成する。
func NewSubmissionInProgressError() *APIError {
	return &APIError{
		Code:     ErrCodeSubmissionInProgress,
		Message:  "The checklist is already being submitted.",
		Category: "checklist",
		Action:   "送信の完了をお待ちください。",
	}
}

// NewChecklistCompletedError は完了済みのチェックリストを再送信した場合のエラーを生成する。
func NewChecklistCompletedError() *APIError {
	return &APIError{
		Code:     ErrCodeChecklistCompleted,
		Message:  "This workflow has already been documented.",
		Category: "checklist",
		Action:   "新しいワークフローを開始してください。",
	}
}

// NewInternalError は予期しないエラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An unexpected error occurred. Please try again.",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// IsCode はerrがAPIErrorであり、指定されたコードを持つかどうかを判定する。
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
