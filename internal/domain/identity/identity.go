package identity

import (
	"context"
	"errors"
)

var (
	ErrNoActiveSession = errors.New("有効なセッションがありません")
)

// Identity は認証済みセッションの利用者を表す
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

// Provider は認証プロバイダのインターフェース
type Provider interface {
	// CurrentIdentity は呼び出し時点の利用者を返す
	CurrentIdentity(ctx context.Context) (Identity, error)

	// SignOut は現在のセッションを終了する
	SignOut(ctx context.Context) error
}

type ctxKey struct{}

// NewContext は利用者情報をコンテキストに格納する
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext はコンテキストから利用者情報を取り出す
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" || id.SessionID == "" {
		return Identity{}, false
	}
	return id, true
}
