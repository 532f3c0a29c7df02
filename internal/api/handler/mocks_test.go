package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/alanmarcone/lugarnaviagem/internal/application"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
)

// MockAuthService はAuthServiceInterfaceのモック
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, input application.SignUpInput) (*application.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Session), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*application.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Session), args.Error(1)
}

// MockSeatService はSeatServiceInterfaceのモック
type MockSeatService struct {
	mock.Mock
}

func (m *MockSeatService) Layout() (*seat.Layout, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Layout), args.Error(1)
}

func (m *MockSeatService) CountAvailable(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatService) SeatOf(ctx context.Context, identityRef string) (*seat.Seat, error) {
	args := m.Called(ctx, identityRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

// MockSeatController はSeatControllerInterfaceのモック
type MockSeatController struct {
	mock.Mock
}

func (m *MockSeatController) ListSeats(ctx context.Context) ([]*seat.Seat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatController) Toggle(seatID int64) (application.ToggleOutcome, error) {
	args := m.Called(seatID)
	return args.Get(0).(application.ToggleOutcome), args.Error(1)
}

func (m *MockSeatController) Confirm(ctx context.Context) (application.ConfirmResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(application.ConfirmResult), args.Error(1)
}

func (m *MockSeatController) SignOut(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSeatController) Snapshot() application.Snapshot {
	return m.Called().Get(0).(application.Snapshot)
}

func (m *MockSeatController) SelectedSeat() *seat.Seat {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*seat.Seat)
}

// MockControllerRegistry はControllerRegistryInterfaceのモック
type MockControllerRegistry struct {
	mock.Mock
}

func (m *MockControllerRegistry) Get(sessionID string) SeatControllerInterface {
	return m.Called(sessionID).Get(0).(SeatControllerInterface)
}

func (m *MockControllerRegistry) Remove(sessionID string) {
	m.Called(sessionID)
}

// MockBoardingPassService はBoardingPassServiceInterfaceのモック
type MockBoardingPassService struct {
	mock.Mock
}

func (m *MockBoardingPassService) Render(ctx context.Context, id identity.Identity) (*application.BoardingPass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.BoardingPass), args.Error(1)
}

func (m *MockBoardingPassService) Verify(ctx context.Context, payload string) (*application.PassCheck, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.PassCheck), args.Error(1)
}

var testIdentity = identity.Identity{UserID: "user-1", Email: "maria@example.com", SessionID: "sess-1"}

// registryWith は testIdentity のセッションに ctrl を返すレジストリを作る
func registryWith(ctrl *MockSeatController) *MockControllerRegistry {
	r := new(MockControllerRegistry)
	r.On("Get", testIdentity.SessionID).Return(ctrl)
	return r
}

func testSeat(id int64, occupied bool) *seat.Seat {
	s := seat.NewSeat(int(id), 0)
	s.ID = id
	if occupied {
		_ = s.Occupy("someone")
	}
	return s
}
