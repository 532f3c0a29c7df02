package user

import (
	"strings"
	"time"
)

// MinPasswordLength はパスワードの最小文字数
const MinPasswordLength = 6

// User は利用者エンティティを表す
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         *string
	WhatsApp     *string
	CreatedAt    time.Time
}

// NewUser は新しい利用者を作成する
func NewUser(email, passwordHash string, name, whatsapp string) *User {
	u := &User{
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if name = strings.TrimSpace(name); name != "" {
		u.Name = &name
	}
	if whatsapp = strings.TrimSpace(whatsapp); whatsapp != "" {
		u.WhatsApp = &whatsapp
	}
	return u
}

// NormalizeEmail はメールアドレスを比較用に正規化する
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword は平文パスワードを検証する
func ValidatePassword(plain string) error {
	if len(plain) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Validate は利用者の検証を行う
func (u *User) Validate() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.PasswordHash == "" {
		return ErrPasswordRequired
	}
	return nil
}
