package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/injexpro/internal/checklist"
	"github.com/hitoshi/injexpro/internal/middleware"
	"github.com/hitoshi/injexpro/internal/model"
)

// ChecklistServiceInterface は施術前チェックリストのサービスインターフェース。
type ChecklistServiceInterface interface {
	Definition() *checklist.Definition
	Open(userID, procedureName string) (checklist.View, error)
	Get(userID, sessionID string) (checklist.View, error)
	ToggleItem(userID, sessionID, itemID string, checked bool) (checklist.View, error)
	Submit(ctx context.Context, userID, sessionID string) (checklist.View, error)
	Close(userID, sessionID string) error
	History(ctx context.Context, userID string) ([]model.WorkflowRecord, error)
}

// ChecklistHandler はチェックリストAPIのHTTPハンドラー。
type ChecklistHandler struct {
	service ChecklistServiceInterface
}

// NewChecklistHandler はChecklistHandlerを生成する。
func NewChecklistHandler(service ChecklistServiceInterface) *ChecklistHandler {
	return &ChecklistHandler{service: service}
}

// openChecklistRequest はチェックリスト開始のリクエストボディ。
type openChecklistRequest struct {
	ProcedureName string `json:"procedure_name"`
}

// toggleItemRequest は項目チェック状態更新のリクエストボディ。
// checkedの省略を検出するためポインタで受け取る。
type toggleItemRequest struct {
	Checked *bool `json:"checked"`
}

// Items はチェックリスト項目の定義を返す。
// GET /api/checklist/items
func (h *ChecklistHandler) Items(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Definition())
}

// Open は施術のチェックリストセッションを開始する。
// POST /api/checklists
func (h *ChecklistHandler) Open(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req openChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	view, err := h.service.Open(identity.ID, req.ProcedureName)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get はチェックリストセッションの現在の状態を返す。
// GET /api/checklists/{id}
func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(identity.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ToggleItem は項目のチェック状態を更新する。
// PUT /api/checklists/{id}/items/{itemId}
func (h *ChecklistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req toggleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}
	if req.Checked == nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("checked is required"))
		return
	}

	view, err := h.service.ToggleItem(identity.ID, chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), *req.Checked)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit は全項目確認済みのチェックリストを完了として記録する。
// POST /api/checklists/{id}/submit
func (h *ChecklistHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	view, err := h.service.Submit(r.Context(), identity.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Close はチェックリストセッションを破棄する。
// DELETE /api/checklists/{id}
func (h *ChecklistHandler) Close(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Close(identity.ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History はユーザーのチェックリスト完了履歴を新しい順に返す。
// GET /api/checklist-records
func (h *ChecklistHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	records, err := h.service.History(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []model.WorkflowRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
