package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/event"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
)

// SessionStore はセッションの有効性を管理するストア
type SessionStore interface {
	IsActive(ctx context.Context, sessionID, userID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionProvider はリクエストに紐づくセッションから利用者を解決する
// 有効性は呼び出しのたびにストアへ問い合わせる
type SessionProvider struct {
	sessions  SessionStore
	publisher event.Publisher
}

func NewSessionProvider(sessions SessionStore, publisher event.Publisher) *SessionProvider {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &SessionProvider{sessions: sessions, publisher: publisher}
}

func (p *SessionProvider) CurrentIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, identity.ErrNoActiveSession
	}
	active, err := p.sessions.IsActive(ctx, id.SessionID, id.UserID)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("セッション確認に失敗: %w", err)
	}
	if !active {
		return identity.Identity{}, identity.ErrNoActiveSession
	}
	return id, nil
}

func (p *SessionProvider) SignOut(ctx context.Context) error {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.ErrNoActiveSession
	}
	if err := p.sessions.Delete(ctx, id.SessionID); err != nil {
		return err
	}

	ev := event.SessionEvent{UserID: id.UserID, Email: id.Email, SessionID: id.SessionID, At: time.Now()}
	if err := p.publisher.Publish(ctx, event.SessionSignedOut, ev); err != nil {
		logger.Warn("サインアウトイベントの送信に失敗",
			zap.String("session_id", id.SessionID),
			zap.Error(err),
		)
	}
	return nil
}

var _ identity.Provider = (*SessionProvider)(nil)
