package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/injexpro/internal/model"
)

var testIdentity = model.UserIdentity{
	ID:                "demo-user-id",
	Email:             "dr@example.com",
	DisplayName:       "Demo User",
	ProfessionalTitle: "Aesthetic Injector",
}

func TestCredentialCodec_RoundTrip(t *testing.T) {
	codec := NewCredentialCodec("secret", 7*24*time.Hour)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return fixed }

	token, expiresAt, err := codec.Encode(testIdentity)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !expiresAt.Equal(fixed.Add(7 * 24 * time.Hour)) {
		t.Errorf("expiresAt = %v, want 7 days later", expiresAt)
	}

	got, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if *got != testIdentity {
		t.Errorf("Decode = %+v, want %+v", *got, testIdentity)
	}
}

func TestCredentialCodec_RejectsExpiredToken(t *testing.T) {
	codec := NewCredentialCodec("secret", time.Hour)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issued }

	token, _, err := codec.Encode(testIdentity)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	codec.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := codec.Decode(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestCredentialCodec_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewCredentialCodec("secret-a", time.Hour).Encode(testIdentity)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if _, err := NewCredentialCodec("secret-b", time.Hour).Decode(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestCredentialCodec_RejectsTamperedToken(t *testing.T) {
	codec := NewCredentialCodec("secret", time.Hour)
	token, _, err := codec.Encode(testIdentity)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[1] = parts[1] + "x"
	if _, err := codec.Decode(strings.Join(parts, ".")); err == nil {
		t.Error("expected error for tampered token")
	}
}

func TestCredentialCodec_RejectsUnsignedToken(t *testing.T) {
	claims := identityClaims{
		Email: "dr@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "demo-user-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	if _, err := NewCredentialCodec("secret", time.Hour).Decode(token); err == nil {
		t.Error("expected error for alg=none token")
	}
}

func TestCredentialCodec_RejectsIncompleteIdentity(t *testing.T) {
	codec := NewCredentialCodec("secret", time.Hour)
	token, _, err := codec.Encode(model.UserIdentity{ID: "demo-user-id", Email: "no-at-sign"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if _, err := codec.Decode(token); err == nil {
		t.Error("expected error for identity without a valid email")
	}
}

func TestCredentialCodec_RejectsGarbage(t *testing.T) {
	if _, err := NewCredentialCodec("secret", time.Hour).Decode("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
