package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/injexpro/internal/model"
)

// CatalogServiceInterface はリファレンスデータ参照のサービスインターフェース。
type CatalogServiceInterface interface {
	ListProcedures(ctx context.Context) ([]model.Procedure, error)
	GetProcedure(ctx context.Context, slug string) (*model.Procedure, error)
	ListComplications(ctx context.Context, term string) ([]model.Complication, error)
	ListResources() []model.Resource
}

// CatalogHandler は施術・合併症・資料のリファレンスAPIのHTTPハンドラー。
type CatalogHandler struct {
	service CatalogServiceInterface
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProcedures は施術一覧を返す。
// GET /api/procedures
func (h *CatalogHandler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	procedures, err := h.service.ListProcedures(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if procedures == nil {
		procedures = []model.Procedure{}
	}
	writeJSON(w, http.StatusOK, procedures)
}

// GetProcedure は注入パターン付きの施術詳細を返す。
// GET /api/procedures/{slug}
func (h *CatalogHandler) GetProcedure(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	procedure, err := h.service.GetProcedure(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, procedure)
}

// ListComplications は合併症一覧を返す。
// クエリパラメータqで名称・症状の部分一致フィルタを行う。
// GET /api/complications?q=term
func (h *CatalogHandler) ListComplications(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	complications, err := h.service.ListComplications(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if complications == nil {
		complications = []model.Complication{}
	}
	writeJSON(w, http.StatusOK, complications)
}

// ListResources は診療用資料の一覧を返す。
// GET /api/resources
func (h *CatalogHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.ListResources())
}
