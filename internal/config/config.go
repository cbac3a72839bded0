package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// AuthMode は認証ストラテジーの種別を表す。
type AuthMode string

const (
	// AuthModeLocal はデモ用のローカル認証。任意のメールアドレスを受け付ける。
	AuthModeLocal AuthMode = "local"
	// AuthModeProvider は外部認証プロバイダーに認証を委譲する。
	AuthModeProvider AuthMode = "provider"
)

// UnmarshalText は環境変数の値をAuthModeに変換する。
func (m *AuthMode) UnmarshalText(text []byte) error {
	switch v := AuthMode(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case AuthModeLocal, AuthModeProvider:
		*m = v
		return nil
	default:
		return fmt.Errorf("unknown auth mode %q: must be %q or %q", string(text), AuthModeLocal, AuthModeProvider)
	}
}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database（未設定の場合は参照データをフォールバックで提供し、記録はメモリに保持する）
	DatabaseURL string `env:"DATABASE_URL"`

	// Auth
	AuthMode            AuthMode      `env:"AUTH_MODE" envDefault:"local"`
	AuthProviderURL     string        `env:"AUTH_PROVIDER_URL"`
	AuthProviderAPIKey  string        `env:"AUTH_PROVIDER_API_KEY"`
	AuthProviderTimeout time.Duration `env:"AUTH_PROVIDER_TIMEOUT" envDefault:"5s"`

	// Session
	SessionSecret          string        `env:"SESSION_SECRET"`
	SessionMaxAge          int           `env:"SESSION_MAX_AGE" envDefault:"604800"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// Checklist
	ChecklistSessionTTL     time.Duration `env:"CHECKLIST_SESSION_TTL" envDefault:"2h"`
	ChecklistDefinitionPath string        `env:"CHECKLIST_DEFINITION_PATH"`

	// Rate Limit（req/min）
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitSignIn  int `env:"RATE_LIMIT_SIGN_IN" envDefault:"10"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerPort    string `env:"SERVER_PORT" envDefault:"8080"`
	BaseURL       string `env:"BASE_URL"`
	LoginPath     string `env:"LOGIN_PATH" envDefault:"/login"`
	DashboardPath string `env:"DASHBOARD_PATH" envDefault:"/dashboard"`

	// Cookie
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"true"`
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`

	// リバースプロキシ配下でX-Forwarded-For/X-Real-IPを信頼するか
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// プロバイダーモードではDB接続とプロバイダー設定も必須になる。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	var missing []string

	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if cfg.AuthMode == AuthModeProvider {
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if cfg.AuthProviderURL == "" {
			missing = append(missing, "AUTH_PROVIDER_URL")
		}
		if cfg.AuthProviderAPIKey == "" {
			missing = append(missing, "AUTH_PROVIDER_API_KEY")
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.AuthProviderURL = strings.TrimRight(cfg.AuthProviderURL, "/")

	return cfg, nil
}

// SessionTTL はセッションCookieの有効期間を返す。
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

// LoginURL は未認証時のリダイレクト先を返す。
func (c *Config) LoginURL() string {
	return c.BaseURL + c.LoginPath
}

// DashboardURL はサインイン成功時のリダイレクト先を返す。
func (c *Config) DashboardURL() string {
	return c.BaseURL + c.DashboardPath
}

// SlogLevel はLOG_LEVELをslog.Levelに変換する。不明な値はInfoとして扱う。
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
