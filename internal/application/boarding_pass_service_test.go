package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/user"
)

type MockSeatLocator struct {
	mock.Mock
}

func (m *MockSeatLocator) SeatOf(ctx context.Context, identityRef string) (*seat.Seat, error) {
	args := m.Called(ctx, identityRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatLocator) Seat(ctx context.Context, id int64) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func occupiedBy(id int64, ref string) *seat.Seat {
	return &seat.Seat{ID: id, Number: int(id), Occupied: true, OccupiedBy: &ref, Price: 12050}
}

func TestBoardingPassService_Render(t *testing.T) {
	id := identity.Identity{UserID: "user-1", Email: "maria@example.com", SessionID: "jti-1"}

	t.Run("座席番号入りのPDFを作る", func(t *testing.T) {
		locator := new(MockSeatLocator)
		users := new(MockUserRepository)
		name := "Maria"
		locator.On("SeatOf", mock.Anything, "user-1").Return(occupiedBy(7, "user-1"), nil)
		users.On("GetByID", mock.Anything, "user-1").Return(&user.User{ID: "user-1", Email: "maria@example.com", Name: &name}, nil)
		svc := NewBoardingPassService(locator, users, "secret")
		svc.now = func() time.Time { return time.Unix(1709294400, 0) }

		pass, err := svc.Render(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, "assento-07.pdf", pass.Filename)
		assert.True(t, bytes.HasPrefix(pass.PDF, []byte("%PDF-")))
		assert.True(t, strings.HasPrefix(pass.Payload, "7|7|user-1|1709294400|"))
		assert.True(t, svc.VerifyPayload(pass.Payload))
		users.AssertExpectations(t)
	})

	t.Run("プロフィールが取れなくても発行する", func(t *testing.T) {
		locator := new(MockSeatLocator)
		users := new(MockUserRepository)
		locator.On("SeatOf", mock.Anything, "user-1").Return(occupiedBy(7, "user-1"), nil)
		users.On("GetByID", mock.Anything, "user-1").Return(nil, errors.New("db down"))
		svc := NewBoardingPassService(locator, users, "secret")

		pass, err := svc.Render(context.Background(), id)

		require.NoError(t, err)
		assert.NotEmpty(t, pass.PDF)
	})

	t.Run("座席が無ければErrSeatNotFound", func(t *testing.T) {
		locator := new(MockSeatLocator)
		locator.On("SeatOf", mock.Anything, "user-1").Return(nil, seat.ErrSeatNotFound)
		svc := NewBoardingPassService(locator, nil, "secret")

		_, err := svc.Render(context.Background(), id)

		assert.ErrorIs(t, err, seat.ErrSeatNotFound)
	})
}

func TestBoardingPassService_passengerName(t *testing.T) {
	ctx := context.Background()
	id := identity.Identity{UserID: "user-1", Email: "maria@example.com"}

	t.Run("名前があれば名前", func(t *testing.T) {
		users := new(MockUserRepository)
		name := "Maria"
		users.On("GetByID", mock.Anything, "user-1").Return(&user.User{Email: "maria@example.com", Name: &name}, nil)

		assert.Equal(t, "Maria", NewBoardingPassService(nil, users, "s").passengerName(ctx, id))
	})

	t.Run("取得に失敗したらセッションのメールアドレス", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, "user-1").Return(nil, user.ErrUserNotFound)

		assert.Equal(t, "maria@example.com", NewBoardingPassService(nil, users, "s").passengerName(ctx, id))
	})
}

func TestBoardingPassService_VerifyPayload(t *testing.T) {
	svc := NewBoardingPassService(nil, nil, "secret")
	payload := svc.payload(7, 7, "user-1", time.Unix(1709294400, 0))

	assert.True(t, svc.VerifyPayload(payload))
	assert.False(t, svc.VerifyPayload(strings.Replace(payload, "7|7|", "8|8|", 1)))
	assert.False(t, NewBoardingPassService(nil, nil, "other").VerifyPayload(payload))
	assert.False(t, svc.VerifyPayload("no-separator"))
}

func TestBoardingPassService_Verify(t *testing.T) {
	ctx := context.Background()
	issued := time.Unix(1709294400, 0)

	t.Run("発行先が占有していれば有効", func(t *testing.T) {
		locator := new(MockSeatLocator)
		locator.On("Seat", mock.Anything, int64(7)).Return(occupiedBy(7, "user-1"), nil)
		svc := NewBoardingPassService(locator, nil, "secret")

		check, err := svc.Verify(ctx, svc.payload(7, 7, "user-1", issued))

		require.NoError(t, err)
		assert.True(t, check.Valid)
		assert.Equal(t, 7, check.SeatNumber)
		assert.Equal(t, "user-1", check.UserID)
		assert.Equal(t, issued.UTC(), check.IssuedAt)
	})

	t.Run("後から別の利用者に上書きされた座席は無効", func(t *testing.T) {
		locator := new(MockSeatLocator)
		locator.On("Seat", mock.Anything, int64(7)).Return(occupiedBy(7, "user-2"), nil)
		svc := NewBoardingPassService(locator, nil, "secret")

		check, err := svc.Verify(ctx, svc.payload(7, 7, "user-1", issued))

		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Equal(t, PassSeatReassigned, check.Reason)
	})

	t.Run("署名が合わなければ座席を引かない", func(t *testing.T) {
		locator := new(MockSeatLocator)
		svc := NewBoardingPassService(locator, nil, "secret")
		forged := NewBoardingPassService(nil, nil, "other").payload(7, 7, "user-1", issued)

		check, err := svc.Verify(ctx, forged)

		require.NoError(t, err)
		assert.Equal(t, PassBadSignature, check.Reason)
		locator.AssertNotCalled(t, "Seat", mock.Anything, mock.Anything)
	})

	t.Run("署名は正しいが形式が違う", func(t *testing.T) {
		svc := NewBoardingPassService(new(MockSeatLocator), nil, "secret")
		data := "x|7|user-1|1709294400"

		check, err := svc.Verify(ctx, data+"|"+svc.sign(data))

		require.NoError(t, err)
		assert.Equal(t, PassMalformed, check.Reason)
	})

	t.Run("座席が無ければseat_not_found", func(t *testing.T) {
		locator := new(MockSeatLocator)
		locator.On("Seat", mock.Anything, int64(7)).Return(nil, seat.ErrSeatNotFound)
		svc := NewBoardingPassService(locator, nil, "secret")

		check, err := svc.Verify(ctx, svc.payload(7, 7, "user-1", issued))

		require.NoError(t, err)
		assert.Equal(t, PassSeatNotFound, check.Reason)
	})

	t.Run("台帳の障害はエラー", func(t *testing.T) {
		locator := new(MockSeatLocator)
		locator.On("Seat", mock.Anything, int64(7)).Return(nil, seat.ErrDirectoryUnavailable)
		svc := NewBoardingPassService(locator, nil, "secret")

		_, err := svc.Verify(ctx, svc.payload(7, 7, "user-1", issued))

		assert.ErrorIs(t, err, seat.ErrDirectoryUnavailable)
	})
}
