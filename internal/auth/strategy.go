package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/injexpro/internal/model"
	"github.com/hitoshi/injexpro/internal/repository"
)

const (
	// ModeLocal はデモ用のローカル認証ストラテジー名。
	ModeLocal = "local"
	// ModeProvider は外部認証プロバイダーに委譲するストラテジー名。
	ModeProvider = "provider"
)

// デモ用の固定identity
const (
	demoUserID            = "demo-user-id"
	demoDisplayName       = "Demo User"
	demoProfessionalTitle = "Aesthetic Injector"
)

// SignUpRequest はサインアップの入力を表す。
type SignUpRequest struct {
	Email             string
	Password          string
	FullName          string
	ProfessionalTitle string
}

// Grant は認証ストラテジーが認証に成功した結果を表す。
// SessionIDが空の場合、呼び出し側はidentityを署名付きCookieとして発行する。
type Grant struct {
	Identity  model.UserIdentity
	SessionID string
	ExpiresAt time.Time
}

// Authenticator は認証ストラテジーのインターフェース。
// 返すエラーはすべてAPIErrorに変換済みである。
type Authenticator interface {
	Mode() string
	SignIn(ctx context.Context, email, password string) (*Grant, error)
	SignUp(ctx context.Context, req SignUpRequest) (*Grant, error)
}

// SessionResolver はサーバー側セッションからidentityを復元・破棄するインターフェース。
type SessionResolver interface {
	// Resolve はセッションに対応するidentityを返す。セッションが無い場合はnilを返す。
	Resolve(ctx context.Context, sessionID string) (*model.UserIdentity, error)
	// Revoke はセッションとプロバイダー側のトークンを破棄する。
	Revoke(ctx context.Context, sessionID string) error
}

// LocalAuthenticator は任意の資格情報を受け付けるデモ用ストラテジー。
type LocalAuthenticator struct{}

// NewLocalAuthenticator はLocalAuthenticatorを生成する。
func NewLocalAuthenticator() *LocalAuthenticator {
	return &LocalAuthenticator{}
}

// Mode はストラテジー名を返す。
func (a *LocalAuthenticator) Mode() string { return ModeLocal }

// SignIn は固定のデモidentityを返す。
func (a *LocalAuthenticator) SignIn(_ context.Context, email, _ string) (*Grant, error) {
	return &Grant{Identity: model.UserIdentity{
		ID:                demoUserID,
		Email:             email,
		DisplayName:       demoDisplayName,
		ProfessionalTitle: demoProfessionalTitle,
	}}, nil
}

// SignUp は入力された氏名と肩書きでデモidentityを返す。
func (a *LocalAuthenticator) SignUp(_ context.Context, req SignUpRequest) (*Grant, error) {
	return &Grant{Identity: model.UserIdentity{
		ID:                demoUserID,
		Email:             req.Email,
		DisplayName:       req.FullName,
		ProfessionalTitle: req.ProfessionalTitle,
	}}, nil
}

// ProviderAuthenticator は外部認証プロバイダーに認証を委譲し、
// 発行されたトークンをサーバー側セッションとして保持するストラテジー。
type ProviderAuthenticator struct {
	client   ProviderClient
	sessions repository.SessionRepository
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewProviderAuthenticator はProviderAuthenticatorを生成する。
func NewProviderAuthenticator(
	client ProviderClient,
	sessions repository.SessionRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *ProviderAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderAuthenticator{
		client:   client,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Mode はストラテジー名を返す。
func (a *ProviderAuthenticator) Mode() string { return ModeProvider }

// SignIn はプロバイダーで資格情報を検証し、セッションを作成する。
func (a *ProviderAuthenticator) SignIn(ctx context.Context, email, password string) (*Grant, error) {
	// 1. プロバイダーで資格情報を検証
	ps, err := a.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Rejected() {
			a.logger.Info("sign in rejected by provider",
				slog.String("email", escapeEmail(email)),
				slog.String("provider_code", pe.Code),
			)
			return nil, model.NewAuthError()
		}
		a.logger.Error("sign in failed", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}

	// 2. サーバー側セッションを作成
	return a.createSession(ctx, ps)
}

// SignUp はプロバイダーにユーザーを登録する。
// メール確認が必要な場合はPendingConfirmationErrorを返す。
func (a *ProviderAuthenticator) SignUp(ctx context.Context, req SignUpRequest) (*Grant, error) {
	// 1. プロバイダーに登録
	result, err := a.client.SignUp(ctx, req.Email, req.Password, req.FullName, req.ProfessionalTitle)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Rejected() {
			if pe.AlreadyRegistered() {
				return nil, model.NewConflictError()
			}
			return nil, model.NewValidationError(pe.Message)
		}
		a.logger.Error("sign up failed", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}

	// 2. セッションが無ければメール確認待ち
	if result.Session == nil {
		a.logger.Info("sign up pending confirmation", slog.String("user_id", result.User.ID))
		return nil, model.NewPendingConfirmationError()
	}

	// 3. サーバー側セッションを作成
	return a.createSession(ctx, result.Session)
}

// Resolve はセッションのアクセストークンからidentityを取得する。
// アクセストークンが失効している場合はリフレッシュトークンで更新を試みる。
func (a *ProviderAuthenticator) Resolve(ctx context.Context, sessionID string) (*model.UserIdentity, error) {
	session, err := a.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	identity, err := a.client.GetUser(ctx, session.AccessToken)
	if err == nil {
		return identity, nil
	}

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusUnauthorized || session.RefreshToken == "" {
		return nil, fmt.Errorf("failed to get user from provider: %w", err)
	}

	refreshed, err := a.client.RefreshSession(ctx, session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh provider session: %w", err)
	}
	if err := a.sessions.UpdateTokens(ctx, session.ID, refreshed.AccessToken, refreshed.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refreshed tokens: %w", err)
	}
	return &refreshed.User, nil
}

// Revoke はプロバイダー側のトークンを無効化し、セッションを削除する。
// どちらかが失敗しても残りの処理は実行する。
func (a *ProviderAuthenticator) Revoke(ctx context.Context, sessionID string) error {
	session, err := a.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to find session: %w", err)
	}

	var errs []error
	if session != nil {
		if err := a.client.SignOut(ctx, session.AccessToken); err != nil {
			errs = append(errs, fmt.Errorf("failed to sign out from provider: %w", err))
		}
	}
	if err := a.sessions.DeleteByID(ctx, sessionID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// createSession はプロバイダーのトークンを保持するセッションを作成し永続化する。
func (a *ProviderAuthenticator) createSession(ctx context.Context, ps *ProviderSession) (*Grant, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		a.logger.Error("failed to generate session id", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}

	now := a.now()
	session := &model.Session{
		ID:           sessionID,
		UserID:       ps.User.ID,
		AccessToken:  ps.AccessToken,
		RefreshToken: ps.RefreshToken,
		ExpiresAt:    now.Add(a.ttl),
		CreatedAt:    now,
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		a.logger.Error("failed to save session", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}

	return &Grant{
		Identity:  ps.User,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// compile-time interface check
var (
	_ Authenticator   = (*LocalAuthenticator)(nil)
	_ Authenticator   = (*ProviderAuthenticator)(nil)
	_ SessionResolver = (*ProviderAuthenticator)(nil)
)
