package model

import (
	"strings"
	"time"
)

// UserIdentity はログイン中の施術者を表す。
// ローカルモードでは署名付きCookie、プロバイダーモードでは外部認証プロバイダーから復元される。
type UserIdentity struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	DisplayName       string `json:"display_name"`
	ProfessionalTitle string `json:"professional_title"`
}

// Valid はIDが存在し、メールアドレスが"@"を含むかどうかを判定する。
func (u *UserIdentity) Valid() bool {
	return u != nil && u.ID != "" && strings.Contains(u.Email, "@")
}

// Session はプロバイダーモードのサーバー側セッションを表す。
// Cookieにはセッションのみを保持し、プロバイダーのトークンはDBに保存する。
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
