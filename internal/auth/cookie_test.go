package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCredentialsFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: LocalCredentialCookie, Value: "jwt"})
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess"})

	creds := CredentialsFromRequest(req)
	if creds.LocalToken != "jwt" || creds.SessionID != "sess" {
		t.Errorf("creds = %+v", creds)
	}

	if got := CredentialsFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)); got != (Credentials{}) {
		t.Errorf("creds without cookies = %+v, want empty", got)
	}
}

func TestSetCredentialCookie_Attributes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := httptest.NewRecorder()
	SetCredentialCookie(w, &IssuedCredential{
		CookieName: LocalCredentialCookie,
		Value:      "jwt",
		ExpiresAt:  now.Add(7 * 24 * time.Hour),
	}, CookieConfig{Secure: true, Domain: "example.com"}, now)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != LocalCredentialCookie || c.Value != "jwt" {
		t.Errorf("cookie = %s=%s", c.Name, c.Value)
	}
	if c.MaxAge != 604800 {
		t.Errorf("MaxAge = %d, want 604800", c.MaxAge)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = HttpOnly:%v Secure:%v SameSite:%v", c.HttpOnly, c.Secure, c.SameSite)
	}
	if c.Path != "/" || c.Domain != "example.com" {
		t.Errorf("Path = %q, Domain = %q", c.Path, c.Domain)
	}
}

func TestClearCredentialCookies_ClearsBoth(t *testing.T) {
	w := httptest.NewRecorder()
	ClearCredentialCookies(w, CookieConfig{})

	cleared := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 && c.Value == "" {
			cleared[c.Name] = true
		}
	}
	if !cleared[LocalCredentialCookie] || !cleared[SessionCookie] {
		t.Errorf("cleared = %v, want both credential cookies", cleared)
	}
}
