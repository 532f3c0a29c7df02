package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/alanmarcone/lugarnaviagem/internal/api"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}

// WithTestIdentity はリクエストに認証済みの利用者を載せる（テスト用）
func WithTestIdentity(c echo.Context, id identity.Identity) {
	ctx := identity.NewContext(c.Request().Context(), id)
	c.SetRequest(c.Request().WithContext(ctx))
}

