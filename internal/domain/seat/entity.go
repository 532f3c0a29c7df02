package seat

import "time"

// Seat は座席エンティティを表す
type Seat struct {
	ID         int64
	Number     int
	Occupied   bool
	OccupiedBy *string // 占有者のユーザーID
	Price      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSeat は新しい空席を作成する
func NewSeat(number, price int) *Seat {
	now := time.Now()
	return &Seat{
		Number:    number,
		Occupied:  false,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAvailable は座席が選択可能かを返す
func (s *Seat) IsAvailable() bool {
	return !s.Occupied
}

// Occupy は座席を占有状態にする
func (s *Seat) Occupy(identityRef string) error {
	if identityRef == "" {
		return ErrIdentityRequired
	}
	s.Occupied = true
	s.OccupiedBy = &identityRef
	s.UpdatedAt = time.Now()
	return nil
}

// IsOccupiedBy は指定ユーザーが座席を占有しているかを返す
func (s *Seat) IsOccupiedBy(identityRef string) bool {
	return s.Occupied && s.OccupiedBy != nil && *s.OccupiedBy == identityRef
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.Number < 1 {
		return ErrInvalidSeatNumber
	}
	if s.Price < 0 {
		return ErrInvalidPrice
	}
	if s.Occupied != (s.OccupiedBy != nil) {
		return ErrInconsistentOccupancy
	}
	return nil
}
