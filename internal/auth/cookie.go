package auth

import (
	"net/http"
	"time"
)

// CookieConfig は認証Cookieの属性。
type CookieConfig struct {
	Secure bool
	Domain string
}

// CredentialsFromRequest はリクエストのCookieから資格情報を取り出す。
func CredentialsFromRequest(r *http.Request) Credentials {
	var creds Credentials
	if c, err := r.Cookie(LocalCredentialCookie); err == nil {
		creds.LocalToken = c.Value
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		creds.SessionID = c.Value
	}
	return creds
}

// SetCredentialCookie は発行した資格情報をHTTP Only Cookieとして設定する。
func SetCredentialCookie(w http.ResponseWriter, issued *IssuedCredential, config CookieConfig, now time.Time) {
	maxAge := int(issued.ExpiresAt.Sub(now).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     issued.CookieName,
		Value:    issued.Value,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCredentialCookies は両方の認証Cookieを削除する。
func ClearCredentialCookies(w http.ResponseWriter, config CookieConfig) {
	for _, name := range []string{LocalCredentialCookie, SessionCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   config.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   config.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
