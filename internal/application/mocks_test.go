package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/event"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/transaction"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/user"
	"github.com/alanmarcone/lugarnaviagem/internal/infrastructure/auth"
)

// === Mock implementations ===

// MockSeatRepository implements seat.Repository
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) List(ctx context.Context) ([]*seat.Seat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id int64) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByOccupant(ctx context.Context, identityRef string) (*seat.Seat, error) {
	args := m.Called(ctx, identityRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) Occupy(ctx context.Context, id int64, identityRef string) (*seat.Seat, error) {
	args := m.Called(ctx, id, identityRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) CountAvailable(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) Count(ctx context.Context, tx transaction.Tx) (int, error) {
	args := m.Called(ctx, tx)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	args := m.Called(ctx, tx, seats)
	return args.Error(0)
}

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockSeatCache implements SeatCache
type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeatCache) Bump(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSeatCache) GetSeats(ctx context.Context, gen int64) ([]*seat.Seat, error) {
	args := m.Called(ctx, gen)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatCache) SetSeats(ctx context.Context, gen int64, seats []*seat.Seat, ttl time.Duration) error {
	args := m.Called(ctx, gen, seats, ttl)
	return args.Error(0)
}

func (m *MockSeatCache) GetAvailableCount(ctx context.Context, gen int64) (int, error) {
	args := m.Called(ctx, gen)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatCache) SetAvailableCount(ctx context.Context, gen int64, count int, ttl time.Duration) error {
	args := m.Called(ctx, gen, count, ttl)
	return args.Error(0)
}

// MockLocker implements Locker（fn をそのまま実行する）
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// MockPublisher implements event.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, name event.Name, payload any) error {
	args := m.Called(ctx, name, payload)
	return args.Error(0)
}

// MockSeatDirectory implements SeatDirectory
type MockSeatDirectory struct {
	mock.Mock
}

func (m *MockSeatDirectory) ListSeats(ctx context.Context) ([]*seat.Seat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatDirectory) ReserveSeat(ctx context.Context, seatID int64, identityRef string) (*seat.Seat, error) {
	args := m.Called(ctx, seatID, identityRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

// MockIdentityProvider implements identity.Provider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CurrentIdentity(ctx context.Context) (identity.Identity, error) {
	args := m.Called(ctx)
	return args.Get(0).(identity.Identity), args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserRepository implements user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// MockPasswordHasher implements PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(hash, plain string) bool {
	args := m.Called(hash, plain)
	return args.Bool(0)
}

// MockTokenIssuer implements TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID, email string) (auth.Token, error) {
	args := m.Called(userID, email)
	return args.Get(0).(auth.Token), args.Error(1)
}

func (m *MockTokenIssuer) TTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockSessionRegistry implements SessionRegistry
type MockSessionRegistry struct {
	mock.Mock
}

func (m *MockSessionRegistry) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, userID, ttl)
	return args.Error(0)
}

// === Test helpers ===

// newSeats は 1..n の空席を作る（ID = 座席番号）
func newSeats(n int, occupied ...int) []*seat.Seat {
	taken := make(map[int]bool, len(occupied))
	for _, o := range occupied {
		taken[o] = true
	}
	seats := make([]*seat.Seat, n)
	for i := range seats {
		num := i + 1
		s := &seat.Seat{ID: int64(num), Number: num}
		if taken[num] {
			ref := "someone-else"
			s.Occupied = true
			s.OccupiedBy = &ref
		}
		seats[i] = s
	}
	return seats
}
