package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore はサインイン中のセッションを保持する
// キーが存在する間だけセッションは有効とみなす
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save はセッションを有効期限付きで登録する
func (s *SessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("セッション保存に失敗: %w", err)
	}
	return nil
}

// IsActive はセッションが有効で、指定ユーザーのものかを返す
func (s *SessionStore) IsActive(ctx context.Context, sessionID, userID string) (bool, error) {
	owner, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("セッション確認に失敗: %w", err)
	}
	return owner == userID, nil
}

// Delete はセッションを無効化する（存在しなくてもエラーにしない）
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("セッション削除に失敗: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
