// Package event は他サービスへ通知するドメインイベントを定義する。
package event

import (
	"context"
	"time"
)

// Name はイベント名（キュー名としても使う）
type Name string

const (
	SeatReserved     Name = "seat.reserved"
	SessionSignedIn  Name = "session.signed_in"
	SessionSignedOut Name = "session.signed_out"
)

// Names は発行しうる全イベント名
var Names = []Name{SeatReserved, SessionSignedIn, SessionSignedOut}

// SeatReservedEvent は座席の予約確定時に発行される
type SeatReservedEvent struct {
	SeatID         int64     `json:"seat_id"`
	SeatNumber     int       `json:"seat_number"`
	UserID         string    `json:"user_id"`
	PreviousUserID string    `json:"previous_user_id,omitempty"` // 上書きされた占有者
	ReservedAt     time.Time `json:"reserved_at"`
}

// SessionEvent はサインイン・サインアウト時に発行される
type SessionEvent struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}

// Publisher はドメインイベントの発行先
type Publisher interface {
	Publish(ctx context.Context, name Name, payload any) error
}

// NopPublisher は何もしない Publisher（ブローカー未設定時に使う）
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Name, any) error { return nil }
