package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound          = errors.New("座席が見つかりません")
	ErrDirectoryUnavailable  = errors.New("座席情報を取得できません")
	ErrIdentityRequired      = errors.New("占有者のユーザーIDは必須です")
	ErrInvalidSeatNumber     = errors.New("座席番号は1以上である必要があります")
	ErrInvalidPrice          = errors.New("価格は0以上である必要があります")
	ErrInconsistentOccupancy = errors.New("占有フラグと占有者が一致しません")
	ErrInvalidCapacity       = errors.New("座席数は1以上である必要があります")
	ErrSeatNumberTaken       = errors.New("座席番号が重複しています")
)
