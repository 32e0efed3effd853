package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/nightstudy-service/internal/api/http"
	"github.com/spec-kit/nightstudy-service/internal/api/http/handlers"
	"github.com/spec-kit/nightstudy-service/internal/auth"
	"github.com/spec-kit/nightstudy-service/internal/config"
	"github.com/spec-kit/nightstudy-service/internal/events"
	"github.com/spec-kit/nightstudy-service/internal/observability"
	"github.com/spec-kit/nightstudy-service/internal/persistence"
	"github.com/spec-kit/nightstudy-service/internal/repository"
	"github.com/spec-kit/nightstudy-service/internal/service"
	"github.com/spec-kit/nightstudy-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	loc, err := cfg.App.Location()
	if err != nil {
		logger.Fatal("invalid time zone", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	blacklist := repository.NewRevocationRepository(pool, logger)
	var revocations auth.RevocationStore = blacklist
	if redis.Available() {
		revocations = repository.NewCachedRevocationStore(blacklist, redis.Client, cfg.Auth.RefreshTokenTTL, logger)
	}
	// Serving without the blacklist table would accept revoked refresh tokens.
	if err := revocations.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to prepare revocation store", zap.Error(err))
	}

	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		Secret:     cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	sessions := auth.NewSessionManager(codec, revocations, auth.SessionOptions{
		EnforceAccessRevocation: cfg.Auth.EnforceAccessRevocation,
	})

	userRepo := repository.NewUserRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool, loc)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:    userRepo,
		StudentRepo: studentRepo,
		Sessions:    sessions,
		Dispatcher:  dispatcher,
		BcryptCost:  cfg.Auth.BcryptCost,
	})
	rosterService := service.NewRosterService(service.RosterDependencies{
		StudentRepo:  studentRepo,
		ScheduleRepo: scheduleRepo,
		Dispatcher:   dispatcher,
	})
	attendanceService := service.NewAttendanceService(service.AttendanceDependencies{
		AttendanceRepo: attendanceRepo,
		StudentRepo:    studentRepo,
		Dispatcher:     dispatcher,
	})

	if cfg.Compaction.Enabled {
		compactor := worker.NewRevocationCompactor(blacklist, cfg.Auth.RefreshTokenTTL, cfg.Compaction.Interval, logger)
		go compactor.Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.IsDevelopment())

	var redisPinger handlers.Pinger
	if redis.Available() {
		redisPinger = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisPinger, metrics),
		Users:          handlers.NewUsersHandler(authService, cfg.Auth),
		Roster:         handlers.NewRosterHandler(rosterService),
		Attendance:     handlers.NewAttendanceHandler(attendanceService, loc),
		AuthMiddleware: auth.NewAuthMiddleware(sessions, cfg.Auth.TokenSource),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
