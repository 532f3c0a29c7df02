package handler

import (
	"context"

	"github.com/alanmarcone/lugarnaviagem/internal/application"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
)

// AuthServiceInterface は認証サービスのインターフェース
type AuthServiceInterface interface {
	SignUp(ctx context.Context, input application.SignUpInput) (*application.Session, error)
	SignIn(ctx context.Context, email, password string) (*application.Session, error)
}

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	Layout() (*seat.Layout, error)
	CountAvailable(ctx context.Context) (int, error)
	SeatOf(ctx context.Context, identityRef string) (*seat.Seat, error)
}

// SeatControllerInterface は1セッション分の座席選択のインターフェース
type SeatControllerInterface interface {
	ListSeats(ctx context.Context) ([]*seat.Seat, error)
	Toggle(seatID int64) (application.ToggleOutcome, error)
	Confirm(ctx context.Context) (application.ConfirmResult, error)
	SignOut(ctx context.Context) (string, error)
	Snapshot() application.Snapshot
	SelectedSeat() *seat.Seat
}

// ControllerRegistryInterface はセッションごとのコントローラーを引く
type ControllerRegistryInterface interface {
	Get(sessionID string) SeatControllerInterface
	Remove(sessionID string)
}

// BoardingPassServiceInterface は搭乗券サービスのインターフェース
type BoardingPassServiceInterface interface {
	Render(ctx context.Context, id identity.Identity) (*application.BoardingPass, error)
	Verify(ctx context.Context, payload string) (*application.PassCheck, error)
}

type registryAdapter struct {
	registry *application.ControllerRegistry
}

// NewControllerRegistry は application.ControllerRegistry をハンドラー用に包む
func NewControllerRegistry(r *application.ControllerRegistry) ControllerRegistryInterface {
	return registryAdapter{registry: r}
}

func (a registryAdapter) Get(sessionID string) SeatControllerInterface {
	return a.registry.Get(sessionID)
}

func (a registryAdapter) Remove(sessionID string) {
	a.registry.Remove(sessionID)
}

var (
	_ AuthServiceInterface         = (*application.AuthService)(nil)
	_ SeatServiceInterface         = (*application.SeatService)(nil)
	_ SeatControllerInterface      = (*application.SeatController)(nil)
	_ BoardingPassServiceInterface = (*application.BoardingPassService)(nil)
)
