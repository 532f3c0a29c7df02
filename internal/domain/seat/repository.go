package seat

import (
	"context"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// List は全座席を座席番号の昇順で取得する
	List(ctx context.Context) ([]*Seat, error)

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id int64) (*Seat, error)

	// GetByOccupant は指定ユーザーが占有している座席を取得する
	GetByOccupant(ctx context.Context, identityRef string) (*Seat, error)

	// Occupy は座席を占有状態に更新する（後勝ち、バージョン検査なし）
	Occupy(ctx context.Context, id int64, identityRef string) (*Seat, error)

	// CountAvailable は空席数を取得する
	CountAvailable(ctx context.Context) (int, error)

	// Count は座席の総数を取得する（トランザクション必須）
	Count(ctx context.Context, tx transaction.Tx) (int, error)

	// CreateBulk は複数の座席を一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, seats []*Seat) error
}
