package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
)

// TokenParser はアクセストークンを検証して利用者を取り出す
type TokenParser interface {
	Parse(raw string) (identity.Identity, error)
}

// SessionChecker はサーバー側のセッションが生きているかを確認する
type SessionChecker interface {
	IsActive(ctx context.Context, sessionID, userID string) (bool, error)
}

const bearerPrefix = "Bearer "

// SessionAuth は Bearer トークンを検証し、利用者をリクエストのコンテキストに載せる
// トークンが正しくてもサインアウト済みのセッションは拒否する
func SessionAuth(tokens TokenParser, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
			}
			id, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンが無効です")
			}

			ctx := c.Request().Context()
			active, err := sessions.IsActive(ctx, id.SessionID, id.UserID)
			if err != nil {
				logger.Error("セッションの確認に失敗", zap.String("session_id", id.SessionID), zap.Error(err))
				return echo.NewHTTPError(http.StatusServiceUnavailable, "セッションを確認できません").SetInternal(err)
			}
			if !active {
				return echo.NewHTTPError(http.StatusUnauthorized, identity.ErrNoActiveSession.Error())
			}

			c.SetRequest(c.Request().WithContext(identity.NewContext(ctx, id)))
			return next(c)
		}
	}
}
