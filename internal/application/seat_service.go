package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/event"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/transaction"
	redisinfra "github.com/alanmarcone/lugarnaviagem/internal/infrastructure/redis"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
)

const (
	seatCacheTTL = 30 * time.Second
	seedLockKey  = "seats:seed"
	seedLockTTL  = 30 * time.Second
)

// SeatService は座席台帳（一覧・占有・集計・初期投入）を提供する
type SeatService struct {
	seatRepo  seat.Repository
	txManager transaction.Manager
	cache     SeatCache
	locker    Locker
	publisher event.Publisher
	capacity  int

	// 世代の更新に失敗してから、次に更新できるまでの間 true
	cacheSuspect atomic.Bool
}

// SeatServiceOption は SeatService の任意の依存を設定する
type SeatServiceOption func(*SeatService)

func WithSeatCache(c SeatCache) SeatServiceOption {
	return func(s *SeatService) { s.cache = c }
}

func WithLocker(l Locker) SeatServiceOption {
	return func(s *SeatService) { s.locker = l }
}

func WithEventPublisher(p event.Publisher) SeatServiceOption {
	return func(s *SeatService) { s.publisher = p }
}

func NewSeatService(sr seat.Repository, tm transaction.Manager, capacity int, opts ...SeatServiceOption) *SeatService {
	s := &SeatService{
		seatRepo:  sr,
		txManager: tm,
		publisher: event.NopPublisher{},
		capacity:  capacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListSeats は全座席を座席番号順に返す
func (s *SeatService) ListSeats(ctx context.Context) ([]*seat.Seat, error) {
	gen, cached := s.cacheGeneration(ctx)
	if cached {
		seats, err := s.cache.GetSeats(ctx, gen)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.Int("seats", len(seats)), zap.Int64("generation", gen))
			return seats, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	seats, err := s.seatRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", seat.ErrDirectoryUnavailable, err)
	}

	if cached {
		// 読み始める前の世代に保存する。途中で予約が入っていれば誰にも読まれない
		if cacheErr := s.cache.SetSeats(ctx, gen, seats, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return seats, nil
}

// ReserveSeat は座席を指定利用者の占有にする
// 既に占有されていても上書きする（後勝ち）
func (s *SeatService) ReserveSeat(ctx context.Context, seatID int64, identityRef string) (*seat.Seat, error) {
	current, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", seat.ErrDirectoryUnavailable, err)
	}

	var previous string
	if !current.IsAvailable() && !current.IsOccupiedBy(identityRef) && current.OccupiedBy != nil {
		previous = *current.OccupiedBy
	}
	if err := current.Occupy(identityRef); err != nil {
		return nil, err
	}

	updated, err := s.seatRepo.Occupy(ctx, seatID, identityRef)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", seat.ErrDirectoryUnavailable, err)
	}
	if !updated.IsOccupiedBy(identityRef) {
		return nil, fmt.Errorf("%w: 座席 %d の占有者が一致しません", seat.ErrDirectoryUnavailable, seatID)
	}

	s.bumpCache(ctx)

	if previous != "" {
		logger.Info("占有済みの座席を上書きしました",
			zap.Int64("seat_id", seatID),
			zap.String("previous_user_id", previous),
			zap.String("user_id", identityRef),
		)
	}

	ev := event.SeatReservedEvent{
		SeatID:         updated.ID,
		SeatNumber:     updated.Number,
		UserID:         identityRef,
		PreviousUserID: previous,
		ReservedAt:     updated.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, event.SeatReserved, ev); err != nil {
		logger.Warn("予約イベントの送信に失敗",
			zap.Int64("seat_id", updated.ID),
			zap.Error(err),
		)
	}
	return updated, nil
}

// CountAvailable は空席数を返す
func (s *SeatService) CountAvailable(ctx context.Context) (int, error) {
	gen, cached := s.cacheGeneration(ctx)
	if cached {
		count, err := s.cache.GetAvailableCount(ctx, gen)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	count, err := s.seatRepo.CountAvailable(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", seat.ErrDirectoryUnavailable, err)
	}

	if cached {
		if cacheErr := s.cache.SetAvailableCount(ctx, gen, count, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return count, nil
}

// Seat はIDから座席を返す
func (s *SeatService) Seat(ctx context.Context, id int64) (*seat.Seat, error) {
	se, err := s.seatRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", seat.ErrDirectoryUnavailable, err)
	}
	return se, nil
}

// SeatOf は利用者が占有している座席を返す
func (s *SeatService) SeatOf(ctx context.Context, identityRef string) (*seat.Seat, error) {
	se, err := s.seatRepo.GetByOccupant(ctx, identityRef)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", seat.ErrDirectoryUnavailable, err)
	}
	return se, nil
}

// SeedSeats は座席テーブルが空のときだけ 1..count の空席を作成し、作成数を返す
func (s *SeatService) SeedSeats(ctx context.Context, count, price int) (int, error) {
	if count < 1 {
		return 0, seat.ErrInvalidCapacity
	}

	seats := make([]*seat.Seat, 0, count)
	for n := 1; n <= count; n++ {
		se := seat.NewSeat(n, price)
		if err := se.Validate(); err != nil {
			return 0, err
		}
		seats = append(seats, se)
	}

	created := 0
	seed := func(ctx context.Context) error {
		return transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
			existing, err := s.seatRepo.Count(ctx, tx)
			if err != nil {
				return err
			}
			if existing > 0 {
				return nil
			}
			if err := s.seatRepo.CreateBulk(ctx, tx, seats); err != nil {
				return err
			}
			created = len(seats)
			return nil
		})
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, seedLockKey, seedLockTTL, seed)
	} else {
		err = seed(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("座席の初期投入に失敗: %w", err)
	}

	if created > 0 {
		s.bumpCache(ctx)
	}
	return created, nil
}

// Layout は設定座席数の2-2配置を返す
func (s *SeatService) Layout() (*seat.Layout, error) {
	return seat.NewLayout(s.capacity)
}

// cacheGeneration はキャッシュを使えるときその世代番号を返す
// 世代の更新に失敗したままなら、更新をやり直せるまでキャッシュを使わない。
func (s *SeatService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	if s.cacheSuspect.Load() {
		if err := s.cache.Bump(ctx); err != nil {
			return 0, false
		}
		s.cacheSuspect.Store(false)
		logger.Info("キャッシュ世代の更新が復旧しました")
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		logger.Warn("キャッシュ世代の取得エラー", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *SeatService) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.cacheSuspect.Store(true)
		logger.Warn("キャッシュ世代の更新エラー", zap.Error(err))
	}
}

var (
	_ SeatDirectory = (*SeatService)(nil)
	_ SeatLocator   = (*SeatService)(nil)
)
