package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/injexpro/internal/middleware"
	"github.com/hitoshi/injexpro/internal/model"
)

// --- モック定義 ---

// mockCatalogService はCatalogServiceInterfaceのモック実装。
type mockCatalogService struct {
	listProceduresFn    func(ctx context.Context) ([]model.Procedure, error)
	getProcedureFn      func(ctx context.Context, slug string) (*model.Procedure, error)
	listComplicationsFn func(ctx context.Context, term string) ([]model.Complication, error)
	resources           []model.Resource
}

func (m *mockCatalogService) ListProcedures(ctx context.Context) ([]model.Procedure, error) {
	if m.listProceduresFn != nil {
		return m.listProceduresFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogService) GetProcedure(ctx context.Context, slug string) (*model.Procedure, error) {
	if m.getProcedureFn != nil {
		return m.getProcedureFn(ctx, slug)
	}
	return nil, model.NewProcedureNotFoundError(slug)
}

func (m *mockCatalogService) ListComplications(ctx context.Context, term string) ([]model.Complication, error) {
	if m.listComplicationsFn != nil {
		return m.listComplicationsFn(ctx, term)
	}
	return nil, nil
}

func (m *mockCatalogService) ListResources() []model.Resource {
	return m.resources
}

// withIdentity はidentityミドルウェアを通過した状態のリクエストを返す。
func withIdentity(req *http.Request, userID string) *http.Request {
	identity := &model.UserIdentity{ID: userID, Email: "dr@example.com"}
	return req.WithContext(middleware.ContextWithIdentity(req.Context(), identity))
}

// withURLParams はchiのURLパラメータを設定したリクエストを返す。
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// --- テスト ---

func TestCatalogHandler_ListProcedures_Success(t *testing.T) {
	svc := &mockCatalogService{
		listProceduresFn: func(ctx context.Context) ([]model.Procedure, error) {
			return []model.Procedure{
				{ID: "1", Name: "Crow's Feet", Slug: "crows-feet", Type: model.ProcedureTypeNeurotoxin},
				{ID: "2", Name: "Forehead Lines", Slug: "forehead-lines", Type: model.ProcedureTypeNeurotoxin},
			}, nil
		},
	}
	h := NewCatalogHandler(svc)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/procedures", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListProcedures(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var procedures []model.Procedure
	if err := json.NewDecoder(w.Body).Decode(&procedures); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(procedures) != 2 || procedures[1].Slug != "forehead-lines" {
		t.Errorf("procedures = %+v", procedures)
	}
}

func TestCatalogHandler_ListProcedures_EmptyIsArray(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{})

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/procedures", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListProcedures(w, req)

	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestCatalogHandler_ListProcedures_NoIdentity(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/procedures", nil)
	w := httptest.NewRecorder()

	h.ListProcedures(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestCatalogHandler_GetProcedure_Success(t *testing.T) {
	svc := &mockCatalogService{
		getProcedureFn: func(ctx context.Context, slug string) (*model.Procedure, error) {
			if slug != "forehead-lines" {
				t.Errorf("slug = %q, want forehead-lines", slug)
			}
			return &model.Procedure{
				ID:   "2",
				Name: "Forehead Lines",
				Slug: slug,
				InjectionPatterns: []model.InjectionPattern{
					{ID: "p1", PatternName: "Standard", TargetMuscles: []string{"frontalis"}},
				},
			}, nil
		},
	}
	h := NewCatalogHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/procedures/forehead-lines", nil)
	req = withURLParams(withIdentity(req, "user-1"), map[string]string{"slug": "forehead-lines"})
	w := httptest.NewRecorder()

	h.GetProcedure(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var procedure model.Procedure
	if err := json.NewDecoder(w.Body).Decode(&procedure); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(procedure.InjectionPatterns) != 1 || procedure.InjectionPatterns[0].TargetMuscles[0] != "frontalis" {
		t.Errorf("injection_patterns = %+v", procedure.InjectionPatterns)
	}
}

func TestCatalogHandler_GetProcedure_NotFound(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/procedures/unknown", nil)
	req = withURLParams(withIdentity(req, "user-1"), map[string]string{"slug": "unknown"})
	w := httptest.NewRecorder()

	h.GetProcedure(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeProcedureNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeProcedureNotFound)
	}
}

func TestCatalogHandler_ListComplications_PassesQuery(t *testing.T) {
	var gotTerm string
	svc := &mockCatalogService{
		listComplicationsFn: func(ctx context.Context, term string) ([]model.Complication, error) {
			gotTerm = term
			return []model.Complication{{ID: "c2", Name: "Vascular Occlusion"}}, nil
		},
	}
	h := NewCatalogHandler(svc)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/complications?q=vascular", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListComplications(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotTerm != "vascular" {
		t.Errorf("term = %q, want vascular", gotTerm)
	}
}

func TestCatalogHandler_ListComplications_UnexpectedError(t *testing.T) {
	svc := &mockCatalogService{
		listComplicationsFn: func(ctx context.Context, term string) ([]model.Complication, error) {
			return nil, errors.New("unexpected")
		},
	}
	h := NewCatalogHandler(svc)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/complications", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListComplications(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
}

func TestCatalogHandler_ListResources(t *testing.T) {
	svc := &mockCatalogService{
		resources: []model.Resource{{ID: "r1", Title: "Consent Form Template", Category: "Forms"}},
	}
	h := NewCatalogHandler(svc)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/resources", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListResources(w, req)

	var resources []model.Resource
	if err := json.NewDecoder(w.Body).Decode(&resources); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resources) != 1 || resources[0].Title != "Consent Form Template" {
		t.Errorf("resources = %+v", resources)
	}
}
