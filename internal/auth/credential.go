package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/injexpro/internal/model"
)

// identityClaims はdemo_user Cookieに格納する署名付きクレーム。SubjectにユーザーIDを入れる。
type identityClaims struct {
	Email             string `json:"email"`
	DisplayName       string `json:"display_name"`
	ProfessionalTitle string `json:"professional_title"`
	jwt.RegisteredClaims
}

// CredentialCodec はUserIdentityをHS256署名付きJWTとの間で変換する。
type CredentialCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCredentialCodec はCredentialCodecを生成する。
func NewCredentialCodec(secret string, ttl time.Duration) *CredentialCodec {
	return &CredentialCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Encode はidentityを署名付きトークンに変換し、トークンと有効期限を返す。
func (c *CredentialCodec) Encode(identity model.UserIdentity) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	claims := identityClaims{
		Email:             identity.Email,
		DisplayName:       identity.DisplayName,
		ProfessionalTitle: identity.ProfessionalTitle,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign credential: %w", err)
	}
	return token, expiresAt, nil
}

// Decode は署名と有効期限を検証し、トークンに格納されたidentityを返す。
func (c *CredentialCodec) Decode(token string) (*model.UserIdentity, error) {
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid credential: %w", err)
	}

	identity := &model.UserIdentity{
		ID:                claims.Subject,
		Email:             claims.Email,
		DisplayName:       claims.DisplayName,
		ProfessionalTitle: claims.ProfessionalTitle,
	}
	if !identity.Valid() {
		return nil, errors.New("invalid credential: incomplete identity")
	}
	return identity, nil
}
