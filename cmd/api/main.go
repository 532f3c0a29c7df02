package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/api/handler"
	"github.com/alanmarcone/lugarnaviagem/internal/api/middleware"
	"github.com/alanmarcone/lugarnaviagem/internal/api/router"
	"github.com/alanmarcone/lugarnaviagem/internal/application"
	"github.com/alanmarcone/lugarnaviagem/internal/config"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/event"
	"github.com/alanmarcone/lugarnaviagem/internal/infrastructure/auth"
	"github.com/alanmarcone/lugarnaviagem/internal/infrastructure/postgres"
	"github.com/alanmarcone/lugarnaviagem/internal/infrastructure/rabbitmq"
	redisinfra "github.com/alanmarcone/lugarnaviagem/internal/infrastructure/redis"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/metrics"
	"github.com/alanmarcone/lugarnaviagem/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.Env)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("設定エラー", zap.Error(err))
	}

	m := metrics.Init()

	// DB
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("DB接続エラー", zap.Error(err))
	}
	defer db.Close()

	version, err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath)
	if err != nil {
		log.Fatal("マイグレーションエラー", zap.Error(err))
	}
	log.Info("マイグレーション完了", zap.Uint("version", version))

	// Redis
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		cancelPing()
		log.Fatal("Redis接続エラー", zap.Error(err))
	}
	cancelPing()

	// イベント送信（ブローカー未設定なら送らない）
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.Broker.Enabled() {
		p, err := rabbitmq.NewPublisher(cfg.Broker.URL)
		if err != nil {
			log.Fatal("RabbitMQ接続エラー", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		log.Info("RabbitMQ に接続しました")
	}

	lockManager := redisinfra.NewLockManager(redisClient, m)
	seatCache := redisinfra.NewSeatCache(redisClient)
	sessionStore := redisinfra.NewSessionStore(redisClient)

	seatService := application.NewSeatService(
		postgres.NewSeatRepository(db),
		postgres.NewTxManager(db),
		cfg.Bus.SeatCount,
		application.WithSeatCache(seatCache),
		application.WithLocker(lockManager),
		application.WithEventPublisher(publisher),
	)

	if cfg.Bus.SeedSeats {
		created, err := seatService.SeedSeats(context.Background(), cfg.Bus.SeatCount, cfg.Bus.SeatPrice)
		if err != nil {
			log.Fatal("座席の初期投入に失敗", zap.Error(err))
		}
		if created > 0 {
			log.Info("座席を初期投入しました", zap.Int("count", created))
		}
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	identities := auth.NewSessionProvider(sessionStore, publisher)
	userRepo := postgres.NewUserRepository(db)
	authService := application.NewAuthService(
		userRepo,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		tokens,
		sessionStore,
		publisher,
	)
	passService := application.NewBoardingPassService(seatService, userRepo, cfg.Auth.BoardingPassSecret)

	registry := application.NewControllerRegistry(func() *application.SeatController {
		return application.NewSeatController(seatService, identities, cfg.Auth.SignedOutRedirect, m)
	}, m, application.WithSelectionTTL(cfg.Auth.AccessTokenTTL))
	controllers := handler.NewControllerRegistry(registry)

	signInLimiter := middleware.NewRateLimiter(cfg.Auth.SignInRatePerMin)

	e := router.New(router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
			"redis":    func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) },
		}),
		Auth:      handler.NewAuthHandler(authService, controllers),
		Seat:      handler.NewSeatHandler(seatService, controllers),
		Selection: handler.NewSelectionHandler(controllers),
		Me:        handler.NewMeHandler(seatService, passService),
		Pass:      handler.NewBoardingPassHandler(passService),
	}, router.Options{
		Tokens:        tokens,
		Sessions:      sessionStore,
		SignInLimiter: signInLimiter,
		Metrics:       m,
		MetricsAuth:   cfg.Metrics,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// 放置された選択セッションの破棄
	sweeper := worker.NewIdleSelectionSweeper(registry, cfg.Selection.SweepInterval, cfg.Selection.IdleTTL, signInLimiter)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	go sweeper.Start(workerCtx)

	go func() {
		log.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	log.Info("サーバーが正常にシャットダウンしました")
}
