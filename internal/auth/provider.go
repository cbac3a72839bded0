package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/injexpro/internal/model"
)

// ProviderError は認証プロバイダーが返したエラーレスポンスを表す。
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Rejected はプロバイダーがリクエスト内容を拒否したかどうかを返す。
// 4xxは入力や資格情報の問題、5xxはプロバイダー側の障害として扱う。
func (e *ProviderError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// AlreadyRegistered はメールアドレスが登録済みであることを示すエラーかどうかを返す。
func (e *ProviderError) AlreadyRegistered() bool {
	return e.Code == "user_already_exists" || e.Code == "email_exists" ||
		strings.Contains(strings.ToLower(e.Message), "already registered")
}

// ProviderSession はプロバイダーが発行したトークンとユーザーを表す。
type ProviderSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         model.UserIdentity
}

// SignUpResult はサインアップの結果を表す。
// メール確認が必要な場合、SessionはnilでUserのみが返る。
type SignUpResult struct {
	User    model.UserIdentity
	Session *ProviderSession
}

// ProviderClient は外部認証プロバイダーのインターフェース。
type ProviderClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	SignUp(ctx context.Context, email, password, fullName, professionalTitle string) (*SignUpResult, error)
	GetUser(ctx context.Context, accessToken string) (*model.UserIdentity, error)
	RefreshSession(ctx context.Context, refreshToken string) (*ProviderSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// GoTrueConfig はGoTrue互換プロバイダーの設定。
type GoTrueConfig struct {
	BaseURL string // 例: https://project.supabase.co
	APIKey  string
	Timeout time.Duration
}

// GoTrueClient はGoTrue互換のREST APIによる認証プロバイダークライアント。
type GoTrueClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGoTrueClient はGoTrueClientを生成する。
func NewGoTrueClient(config GoTrueConfig) *GoTrueClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoTrueClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(config.BaseURL, "/") + "/auth/v1",
		apiKey:     config.APIKey,
	}
}

// goTrueUser はプロバイダーのユーザーオブジェクト。
type goTrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName          string `json:"full_name"`
		ProfessionalTitle string `json:"professional_title"`
	} `json:"user_metadata"`
}

func (u *goTrueUser) identity() model.UserIdentity {
	return model.UserIdentity{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.UserMetadata.FullName,
		ProfessionalTitle: u.UserMetadata.ProfessionalTitle,
	}
}

// goTrueTokenResponse はトークン発行レスポンス。
type goTrueTokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *goTrueUser `json:"user"`
}

func (r *goTrueTokenResponse) session() (*ProviderSession, error) {
	if r.AccessToken == "" || r.User == nil || r.User.ID == "" {
		return nil, errors.New("incomplete token response from auth provider")
	}
	return &ProviderSession{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		User:         r.User.identity(),
	}, nil
}

// goTrueErrorBody はエラーレスポンス。APIバージョンにより2種類の形式がある。
type goTrueErrorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Message          string          `json:"message"`
}

// SignInWithPassword はメールアドレスとパスワードでトークンを取得する。
func (c *GoTrueClient) SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error) {
	var resp goTrueTokenResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session()
}

// SignUp はユーザーを登録する。氏名と肩書きはuser_metadataに保存する。
func (c *GoTrueClient) SignUp(ctx context.Context, email, password, fullName, professionalTitle string) (*SignUpResult, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"full_name":          fullName,
			"professional_title": professionalTitle,
		},
	}

	// 自動確認が有効な場合はトークン付き、メール確認が必要な場合はユーザーオブジェクトのみが返る
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &raw); err != nil {
		return nil, err
	}

	var token goTrueTokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to parse sign up response: %w", err)
	}
	if token.AccessToken != "" {
		session, err := token.session()
		if err != nil {
			return nil, err
		}
		return &SignUpResult{User: session.User, Session: session}, nil
	}

	var user goTrueUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to parse sign up user: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("sign up response contained no user")
	}
	return &SignUpResult{User: user.identity()}, nil
}

// GetUser はアクセストークンに対応するユーザーを取得する。
func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (*model.UserIdentity, error) {
	var user goTrueUser
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("user response contained no id")
	}
	identity := user.identity()
	return &identity, nil
}

// RefreshSession はリフレッシュトークンで新しいトークンを取得する。
func (c *GoTrueClient) RefreshSession(ctx context.Context, refreshToken string) (*ProviderSession, error) {
	var resp goTrueTokenResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", map[string]string{
		"refresh_token": refreshToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session()
}

// SignOut はアクセストークンに紐づくプロバイダー側のセッションを無効化する。
func (c *GoTrueClient) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// do はリクエストを送信し、成功時はレスポンスをoutにデコードする。
// 2xx以外のステータスはProviderErrorとして返す。
func (c *GoTrueClient) do(ctx context.Context, method, path, accessToken string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read auth provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseProviderError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse auth provider response: %w", err)
	}
	return nil
}

// parseProviderError は{code, error_code, msg}形式と{error, error_description}形式の両方を解釈する。
func parseProviderError(status int, body []byte) *ProviderError {
	pe := &ProviderError{StatusCode: status}

	var eb goTrueErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		pe.Message = strings.TrimSpace(string(body))
		if pe.Message == "" {
			pe.Message = http.StatusText(status)
		}
		return pe
	}

	switch {
	case eb.ErrorCode != "":
		pe.Code = eb.ErrorCode
	case eb.Error != "":
		pe.Code = eb.Error
	}

	for _, msg := range []string{eb.Msg, eb.ErrorDescription, eb.Message, eb.Error} {
		if msg != "" {
			pe.Message = msg
			break
		}
	}
	if pe.Message == "" {
		pe.Message = http.StatusText(status)
	}
	return pe
}

// escapeEmail はログ出力用にメールアドレスのローカル部をマスクする。
func escapeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	_, size := utf8.DecodeRuneInString(email)
	return email[:size] + "***" + email[at:]
}

// compile-time interface check
var _ ProviderClient = (*GoTrueClient)(nil)
