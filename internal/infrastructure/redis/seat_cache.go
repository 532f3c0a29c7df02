package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

const (
	seatGenerationKey = "seats:gen"
	seatListKeyFmt    = "seats:list:%d"
	availableCountFmt = "seats:available:%d"
)

// cachedSeat はキャッシュ上の座席表現
type cachedSeat struct {
	ID         int64     `json:"id"`
	Number     int       `json:"number"`
	Occupied   bool      `json:"occupied"`
	OccupiedBy *string   `json:"occupied_by,omitempty"`
	Price      int       `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SeatCache は座席一覧と空席数のキャッシュを管理する
//
// 値は世代番号ごとのキーに置く。座席が書き換わるたびに世代を進めるので、
// 古い世代で読んだ一覧を後から書き戻しても新しい世代の読み手には見えない。
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// Generation は現在の世代番号を返す（未設定なら 0）
func (c *SeatCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, seatGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("世代番号の取得に失敗: %w", err)
	}
	return gen, nil
}

// Bump は世代を進め、それまでのキャッシュをすべて読めなくする
func (c *SeatCache) Bump(ctx context.Context) error {
	if err := c.client.Incr(ctx, seatGenerationKey).Err(); err != nil {
		return fmt.Errorf("世代番号の更新に失敗: %w", err)
	}
	return nil
}

// GetSeats は指定世代の座席一覧をキャッシュから取得する
func (c *SeatCache) GetSeats(ctx context.Context, gen int64) ([]*seat.Seat, error) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(seatListKeyFmt, gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var cached []cachedSeat
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(cached))
	for i, cs := range cached {
		seats[i] = &seat.Seat{
			ID: cs.ID, Number: cs.Number, Occupied: cs.Occupied, OccupiedBy: cs.OccupiedBy,
			Price: cs.Price, CreatedAt: cs.CreatedAt, UpdatedAt: cs.UpdatedAt,
		}
	}
	return seats, nil
}

// SetSeats は gen 世代で読んだ座席一覧を保存する
func (c *SeatCache) SetSeats(ctx context.Context, gen int64, seats []*seat.Seat, ttl time.Duration) error {
	cached := make([]cachedSeat, len(seats))
	for i, s := range seats {
		cached[i] = cachedSeat{
			ID: s.ID, Number: s.Number, Occupied: s.Occupied, OccupiedBy: s.OccupiedBy,
			Price: s.Price, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
		}
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("キャッシュのシリアライズに失敗: %w", err)
	}
	if err := c.client.Set(ctx, fmt.Sprintf(seatListKeyFmt, gen), raw, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// GetAvailableCount は指定世代の空席数をキャッシュから取得する
func (c *SeatCache) GetAvailableCount(ctx context.Context, gen int64) (int, error) {
	val, err := c.client.Get(ctx, fmt.Sprintf(availableCountFmt, gen)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は gen 世代で数えた空席数を保存する
func (c *SeatCache) SetAvailableCount(ctx context.Context, gen int64, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, fmt.Sprintf(availableCountFmt, gen), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}
