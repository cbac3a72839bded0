// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/injexpro/internal/auth"
	"github.com/hitoshi/injexpro/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストにidentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// IdentityResolver はCookieの資格情報からidentityを復元するインターフェース。
// auth.Serviceが実装する。
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, creds auth.Credentials) *model.UserIdentity
}

// NewIdentityMiddleware はCookieからidentityを復元し、リクエストコンテキストに注入するミドルウェアを返す。
// 未認証のブラウザ遷移（Accept: text/html）はloginURLへ303でリダイレクトし、
// それ以外には401 JSONを返す。
func NewIdentityMiddleware(resolver IdentityResolver, loginURL string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. 資格情報からidentityを復元
			identity := resolver.ResolveIdentity(r.Context(), auth.CredentialsFromRequest(r))
			if identity == nil {
				if wantsHTML(r) {
					http.Redirect(w, r, loginURL, http.StatusSeeOther)
					return
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 2. リクエストログにユーザーIDを伝える
			if info := requestInfoFromContext(r.Context()); info != nil {
				info.setUserID(identity.ID)
			}

			// 3. identityをコンテキストに注入
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// wantsHTML はブラウザのページ遷移リクエストかどうかを判定する。
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// IdentityFromContext はリクエストコンテキストからidentityを取得する。
// identityミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*model.UserIdentity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*model.UserIdentity)
	return identity, ok && identity != nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.ID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return identity.ID, nil
}

// ContextWithIdentity はコンテキストにidentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity *model.UserIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
