// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/injexpro/internal/auth"
	"github.com/hitoshi/injexpro/internal/middleware"
	"github.com/hitoshi/injexpro/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (*auth.IssuedCredential, error)
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.IssuedCredential, error)
	SignOut(ctx context.Context, creds auth.Credentials)
	ResolveIdentity(ctx context.Context, creds auth.Credentials) *model.UserIdentity
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	EntryURL     string // サインアウト後の遷移先
	DashboardURL string // サインイン成功時の遷移先
	Cookie       auth.CookieConfig
}

// AuthHandler はサインイン・サインアップ・サインアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	now     func() time.Time
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		now:     time.Now,
	}
}

// credentialsRequest はサインイン・サインアップのリクエストボディ。
// フォーム送信の場合も同じフィールド名を使う。
type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	Name              string `json:"name"`
	ProfessionalTitle string `json:"professional_title"`
}

// authSuccessResponse はJSONリクエストに対する認証成功レスポンス。
type authSuccessResponse struct {
	RedirectTo string             `json:"redirect_to"`
	User       model.UserIdentity `json:"user"`
}

// SignIn はメールアドレスとパスワードでサインインする。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	issued, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.completeSignIn(w, r, issued)
}

// SignUp はアカウントを登録し、登録できた場合はそのままサインインする。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	issued, err := h.service.SignUp(r.Context(), auth.SignUpRequest{
		Email:             req.Email,
		Password:          req.Password,
		FullName:          req.Name,
		ProfessionalTitle: req.ProfessionalTitle,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.completeSignIn(w, r, issued)
}

// SignOut は認証Cookieを削除し、サーバー側セッションを破棄する。
// Cookieの削除はセッション破棄の成否に関わらず行う。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.service.SignOut(r.Context(), auth.CredentialsFromRequest(r))
	auth.ClearCredentialCookies(w, h.config.Cookie)

	if prefersJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"redirect_to": h.config.EntryURL})
		return
	}
	http.Redirect(w, r, h.config.EntryURL, http.StatusSeeOther)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := h.service.ResolveIdentity(r.Context(), auth.CredentialsFromRequest(r))
	if identity == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// completeSignIn は資格情報をCookieに設定し、ダッシュボードへ誘導する。
func (h *AuthHandler) completeSignIn(w http.ResponseWriter, r *http.Request, issued *auth.IssuedCredential) {
	auth.SetCredentialCookie(w, issued, h.config.Cookie, h.now())

	if prefersJSON(r) {
		writeJSON(w, http.StatusOK, authSuccessResponse{
			RedirectTo: h.config.DashboardURL,
			User:       issued.Identity,
		})
		return
	}
	http.Redirect(w, r, h.config.DashboardURL, http.StatusSeeOther)
}

// decodeCredentials はJSONまたはフォームのリクエストボディを解析する。
func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest

	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, invalidRequestError())
			return req, false
		}
		return req, true
	}

	if err := r.ParseForm(); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return req, false
	}
	req.Email = r.PostFormValue("email")
	req.Password = r.PostFormValue("password")
	req.Name = r.PostFormValue("name")
	req.ProfessionalTitle = r.PostFormValue("professional_title")
	return req, true
}
