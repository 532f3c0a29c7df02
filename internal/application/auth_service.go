package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/event"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/user"
	"github.com/alanmarcone/lugarnaviagem/internal/infrastructure/auth"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
)

// AuthService は利用者登録とサインインを扱う
type AuthService struct {
	userRepo  user.Repository
	hasher    PasswordHasher
	tokens    TokenIssuer
	sessions  SessionRegistry
	publisher event.Publisher
}

func NewAuthService(ur user.Repository, h PasswordHasher, ti TokenIssuer, sr SessionRegistry, p event.Publisher) *AuthService {
	if p == nil {
		p = event.NopPublisher{}
	}
	return &AuthService{userRepo: ur, hasher: h, tokens: ti, sessions: sr, publisher: p}
}

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	WhatsApp string
}

// Session はサインイン結果
type Session struct {
	User  *user.User
	Token auth.Token
}

// SignUp は利用者を登録し、そのままサインインさせる
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	if err := user.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	u := user.NewUser(input.Email, hash, input.Name, input.WhatsApp)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.startSession(ctx, u)
}

// SignIn はメールアドレスとパスワードで認証する
// 利用者の有無は応答から区別できないようにする
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("利用者取得に失敗: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, user.ErrInvalidCredentials
	}
	return s.startSession(ctx, u)
}

func (s *AuthService) startSession(ctx context.Context, u *user.User) (*Session, error) {
	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, tok.SessionID, u.ID, s.tokens.TTL()); err != nil {
		return nil, err
	}

	ev := event.SessionEvent{UserID: u.ID, Email: u.Email, SessionID: tok.SessionID, At: time.Now()}
	if err := s.publisher.Publish(ctx, event.SessionSignedIn, ev); err != nil {
		logger.Warn("サインインイベントの送信に失敗",
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
	}
	return &Session{User: u, Token: tok}, nil
}
