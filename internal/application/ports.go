package application

import (
	"context"
	"time"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/infrastructure/auth"
)

// SeatDirectory は座席選択コントローラーが依存する座席台帳
type SeatDirectory interface {
	// ListSeats は全座席を座席番号の昇順で返す
	ListSeats(ctx context.Context) ([]*seat.Seat, error)

	// ReserveSeat は座席を占有状態にし、更新後の座席を返す（後勝ち）
	ReserveSeat(ctx context.Context, seatID int64, identityRef string) (*seat.Seat, error)
}

// SeatCache は座席情報のキャッシュ
// 値は世代番号ごとに保存され、Bump で世代が進むと以前の値は読めなくなる。
type SeatCache interface {
	Generation(ctx context.Context) (int64, error)
	Bump(ctx context.Context) error
	GetSeats(ctx context.Context, gen int64) ([]*seat.Seat, error)
	SetSeats(ctx context.Context, gen int64, seats []*seat.Seat, ttl time.Duration) error
	GetAvailableCount(ctx context.Context, gen int64) (int, error)
	SetAvailableCount(ctx context.Context, gen int64, count int, ttl time.Duration) error
}

// Locker はキー単位の排他実行を提供する
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// SessionRegistry はサインイン時にセッションを登録する
type SessionRegistry interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
}

// TokenIssuer はセッショントークンを発行する
type TokenIssuer interface {
	Issue(userID, email string) (auth.Token, error)
	TTL() time.Duration
}

// PasswordHasher はパスワードのハッシュ化と照合を行う
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

var (
	_ identity.Provider = (*auth.SessionProvider)(nil)
	_ TokenIssuer       = (*auth.TokenIssuer)(nil)
	_ PasswordHasher    = (*auth.PasswordHasher)(nil)
)
