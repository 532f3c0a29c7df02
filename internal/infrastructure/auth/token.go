package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
)

var (
	ErrInvalidToken = errors.New("トークンが無効です")
)

// Token は発行済みのセッショントークン
type Token struct {
	Value     string
	SessionID string
	ExpiresAt time.Time
}

// TokenIssuer は HS256 署名のセッショントークンを発行・検証する
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL はトークンの有効期間を返す
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue は新しいセッションIDを採番してトークンを発行する
func (i *TokenIssuer) Issue(userID, email string) (Token, error) {
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	sessionID := uuid.NewString()

	claims := jwt.MapClaims{
		"sub":   userID,
		"jti":   sessionID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("トークン署名に失敗: %w", err)
	}
	return Token{Value: signed, SessionID: sessionID, ExpiresAt: exp}, nil
}

// Parse は署名と有効期限を検証し、トークンの利用者を返す
func (i *TokenIssuer) Parse(raw string) (identity.Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return identity.Identity{}, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || jti == "" {
		return identity.Identity{}, ErrInvalidToken
	}
	return identity.Identity{UserID: sub, Email: email, SessionID: jti}, nil
}
