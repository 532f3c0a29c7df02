package user

import "context"

// Repository は利用者リポジトリのインターフェース
type Repository interface {
	// Create は新しい利用者を作成する
	Create(ctx context.Context, u *User) error

	// GetByID はIDから利用者を取得する
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail はメールアドレスから利用者を取得する
	GetByEmail(ctx context.Context, email string) (*User, error)
}
