// Package router はHTTPルーティングとミドルウェアの組み立てを行う。
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanmarcone/lugarnaviagem/internal/api"
	"github.com/alanmarcone/lugarnaviagem/internal/api/handler"
	"github.com/alanmarcone/lugarnaviagem/internal/api/middleware"
	"github.com/alanmarcone/lugarnaviagem/internal/config"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/metrics"
)

// Handlers はルートに割り当てるハンドラー一式
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Seat      *handler.SeatHandler
	Selection *handler.SelectionHandler
	Me        *handler.MeHandler
	Pass      *handler.BoardingPassHandler
}

// Options は認証やメトリクスの設定
type Options struct {
	Tokens        middleware.TokenParser
	Sessions      middleware.SessionChecker
	SignInLimiter *middleware.RateLimiter

	// Metrics が nil なら HTTP メトリクスと /metrics を無効にする
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsAuth config.MetricsConfig
}

// New はルーティング済みの Echo インスタンスを作る
func New(h Handlers, o Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e)
	if o.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(o.Metrics))
		gatherer := o.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
			middleware.MetricsBasicAuth(o.MetricsAuth))
	}

	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")
	v1.GET("/layout", h.Seat.Layout)
	v1.GET("/seats/available/count", h.Seat.CountAvailable)

	var limited echo.MiddlewareFunc = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if o.SignInLimiter != nil {
		limited = o.SignInLimiter.Limit()
	}
	v1.POST("/auth/sign-up", h.Auth.SignUp, limited)
	v1.POST("/auth/sign-in", h.Auth.SignIn, limited)
	v1.POST("/boarding-passes/verify", h.Pass.Verify, limited)

	session := middleware.SessionAuth(o.Tokens, o.Sessions)
	v1.POST("/auth/sign-out", h.Auth.SignOut, session)
	v1.GET("/auth/session", h.Auth.Session, session)
	v1.GET("/seats", h.Seat.List, session)
	v1.POST("/seats/:id/toggle", h.Seat.Toggle, session)
	v1.GET("/selection", h.Selection.Get, session)
	v1.POST("/selection/confirm", h.Selection.Confirm, session)
	v1.GET("/me/seat", h.Me.Seat, session)
	v1.GET("/me/seat/pass", h.Me.BoardingPass, session)

	return e
}
