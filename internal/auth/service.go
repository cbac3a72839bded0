// Package auth は施術者の認証（ローカル・外部プロバイダー）とidentityの復元を提供する。
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/injexpro/internal/metrics"
	"github.com/hitoshi/injexpro/internal/model"
)

const (
	// LocalCredentialCookie は署名付きidentityを保持するCookie名。
	LocalCredentialCookie = "demo_user"
	// SessionCookie はプロバイダーモードのセッションIDを保持するCookie名。
	SessionCookie = "session_id"
)

const minPasswordLength = 6

// 入力検証のメッセージ
const (
	msgSignInRequired = "Email and password are required"
	msgSignUpRequired = "All fields are required"
	msgInvalidInput   = "Please enter a valid email and password (minimum 6 characters)"
)

// AuthMetrics は認証結果を記録するメトリクスのインターフェース。
type AuthMetrics interface {
	RecordSignIn(mode, outcome string)
	RecordSignUp(mode, outcome string)
}

// Credentials はリクエストのCookieから取り出した資格情報。
type Credentials struct {
	LocalToken string
	SessionID  string
}

// IssuedCredential は認証成功時にCookieとして発行する資格情報。
type IssuedCredential struct {
	CookieName string
	Value      string
	ExpiresAt  time.Time
	Identity   model.UserIdentity
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	authenticator Authenticator
	codec         *CredentialCodec
	sessions      SessionResolver
	metrics       AuthMetrics
	logger        *slog.Logger
}

// NewService はServiceを生成する。
// sessionsがnilの場合、サーバー側セッションは参照しない。
func NewService(
	authenticator Authenticator,
	codec *CredentialCodec,
	sessions SessionResolver,
	recorder AuthMetrics,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		authenticator: authenticator,
		codec:         codec,
		sessions:      sessions,
		metrics:       recorder,
		logger:        logger,
	}
}

// Mode は有効な認証ストラテジー名を返す。
func (s *Service) Mode() string {
	return s.authenticator.Mode()
}

// SignIn は資格情報を検証し、成功時に発行するCookieを返す。
func (s *Service) SignIn(ctx context.Context, email, password string) (*IssuedCredential, error) {
	// 1. 入力検証
	if strings.TrimSpace(email) == "" || password == "" {
		s.recordSignIn(metrics.OutcomeRejected)
		return nil, model.NewValidationError(msgSignInRequired)
	}
	if !validCredentials(email, password) {
		s.recordSignIn(metrics.OutcomeRejected)
		return nil, model.NewValidationError(msgInvalidInput)
	}

	// 2. ストラテジーで認証
	grant, err := s.authenticator.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.recordSignIn(outcomeOf(err))
		return nil, err
	}

	// 3. 資格情報を発行
	issued, err := s.issue(grant)
	if err != nil {
		s.recordSignIn(metrics.OutcomeError)
		return nil, err
	}

	s.recordSignIn(metrics.OutcomeSuccess)
	s.logger.Info("user signed in",
		slog.String("user_id", grant.Identity.ID),
		slog.String("mode", s.Mode()),
	)
	return issued, nil
}

// SignUp はユーザーを登録し、成功時に発行するCookieを返す。
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*IssuedCredential, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.ProfessionalTitle = strings.TrimSpace(req.ProfessionalTitle)

	// 1. 入力検証
	if req.Email == "" || req.Password == "" || req.FullName == "" || req.ProfessionalTitle == "" {
		s.recordSignUp(metrics.OutcomeRejected)
		return nil, model.NewValidationError(msgSignUpRequired)
	}
	if !validCredentials(req.Email, req.Password) {
		s.recordSignUp(metrics.OutcomeRejected)
		return nil, model.NewValidationError(msgInvalidInput)
	}

	// 2. ストラテジーで登録
	grant, err := s.authenticator.SignUp(ctx, req)
	if err != nil {
		s.recordSignUp(outcomeOf(err))
		return nil, err
	}

	// 3. 資格情報を発行
	issued, err := s.issue(grant)
	if err != nil {
		s.recordSignUp(metrics.OutcomeError)
		return nil, err
	}

	s.recordSignUp(metrics.OutcomeSuccess)
	s.logger.Info("user signed up",
		slog.String("user_id", grant.Identity.ID),
		slog.String("mode", s.Mode()),
	)
	return issued, nil
}

// SignOut はサーバー側セッションとプロバイダーのトークンを破棄する。
// 失敗はログに記録するのみで、呼び出し側はCookieを常に削除する。
func (s *Service) SignOut(ctx context.Context, creds Credentials) {
	if creds.SessionID == "" || s.sessions == nil {
		return
	}
	if err := s.sessions.Revoke(ctx, creds.SessionID); err != nil {
		s.logger.Warn("failed to revoke session", slog.String("error", err.Error()))
	}
}

// ResolveIdentity はCookieの資格情報からidentityを復元する。
// 署名付きCookieを先に確認し、無効な場合のみサーバー側セッションを参照する。
// 復元できない場合やエラー時はnilを返す。
func (s *Service) ResolveIdentity(ctx context.Context, creds Credentials) *model.UserIdentity {
	// 1. 署名付きCookie
	if creds.LocalToken != "" {
		identity, err := s.codec.Decode(creds.LocalToken)
		if err == nil {
			return identity
		}
		s.logger.Debug("ignoring invalid local credential", slog.String("error", err.Error()))
	}

	// 2. サーバー側セッション
	if creds.SessionID == "" || s.sessions == nil {
		return nil
	}
	identity, err := s.sessions.Resolve(ctx, creds.SessionID)
	if err != nil {
		s.logger.Warn("failed to resolve session identity", slog.String("error", err.Error()))
		return nil
	}
	if !identity.Valid() {
		return nil
	}
	return identity
}

// issue はGrantからCookieとして発行する資格情報を生成する。
func (s *Service) issue(grant *Grant) (*IssuedCredential, error) {
	if grant.SessionID != "" {
		return &IssuedCredential{
			CookieName: SessionCookie,
			Value:      grant.SessionID,
			ExpiresAt:  grant.ExpiresAt,
			Identity:   grant.Identity,
		}, nil
	}

	token, expiresAt, err := s.codec.Encode(grant.Identity)
	if err != nil {
		s.logger.Error("failed to issue local credential", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	return &IssuedCredential{
		CookieName: LocalCredentialCookie,
		Value:      token,
		ExpiresAt:  expiresAt,
		Identity:   grant.Identity,
	}, nil
}

func (s *Service) recordSignIn(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSignIn(s.Mode(), outcome)
	}
}

func (s *Service) recordSignUp(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSignUp(s.Mode(), outcome)
	}
}

// validCredentials はメールアドレスが"@"を含み、パスワードが最小文字数以上かどうかを判定する。
func validCredentials(email, password string) bool {
	return strings.Contains(email, "@") && utf8.RuneCountInString(password) >= minPasswordLength
}

// outcomeOf はストラテジーのエラーをメトリクスの結果ラベルに分類する。
func outcomeOf(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code != model.ErrCodeInternal {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
