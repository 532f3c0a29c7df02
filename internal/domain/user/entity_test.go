package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("メールアドレスは正規化される", func(t *testing.T) {
		u := NewUser("  Maria@Example.COM ", "hash", "", "")

		assert.Equal(t, "maria@example.com", u.Email)
		assert.Nil(t, u.Name)
		assert.Nil(t, u.WhatsApp)
		require.NoError(t, u.Validate())
	})

	t.Run("プロフィール項目を保持する", func(t *testing.T) {
		u := NewUser("maria@example.com", "hash", " Maria ", "+55 11 99999-0000")

		require.NotNil(t, u.Name)
		assert.Equal(t, "Maria", *u.Name)
		require.NotNil(t, u.WhatsApp)
		assert.Equal(t, "+55 11 99999-0000", *u.WhatsApp)
	})
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name        string
		user        *User
		expectedErr error
	}{
		{"有効", &User{Email: "a@b.c", PasswordHash: "x"}, nil},
		{"メールアドレスが空", &User{Email: "", PasswordHash: "x"}, ErrInvalidEmail},
		{"@がない", &User{Email: "abc", PasswordHash: "x"}, ErrInvalidEmail},
		{"ハッシュが空", &User{Email: "a@b.c"}, ErrPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("12345"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("123456"))
}
