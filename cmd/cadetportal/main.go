package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cadet-portal/cadet-portal/internal/achievements"
	"github.com/cadet-portal/cadet-portal/internal/app"
	"github.com/cadet-portal/cadet-portal/internal/attendance"
	"github.com/cadet-portal/cadet-portal/internal/audit"
	"github.com/cadet-portal/cadet-portal/internal/auth"
	"github.com/cadet-portal/cadet-portal/internal/events"
	"github.com/cadet-portal/cadet-portal/internal/fallin"
	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/observability"
	"github.com/cadet-portal/cadet-portal/internal/platform/cache"
	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/platform/upload"
	"github.com/cadet-portal/cadet-portal/internal/profile"
	"github.com/cadet-portal/cadet-portal/internal/reports"
	"github.com/cadet-portal/cadet-portal/internal/settings"
	"github.com/cadet-portal/cadet-portal/internal/support"
	"github.com/cadet-portal/cadet-portal/internal/users"
	"github.com/cadet-portal/cadet-portal/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.PGDSN, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		logger.Error("init uploads", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	auditService := audit.NewService(audit.NewRepository(dbpool), logger)
	notificationService := notifications.NewService(notifications.NewRepository(dbpool), metrics, logger)

	authService := auth.NewService(auth.ServiceConfig{
		Repo:        auth.NewRepository(dbpool),
		Tokens:      auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Revocations: auth.NewRedisRevocationStore(redisClient),
		Notifier:    notificationService,
		Audit:       auditService,
		Metrics:     metrics,
		Logger:      logger,
		BcryptCost:  cfg.BcryptCost,
	})
	authHandler := auth.NewHandler(logger, authService, auth.HandlerConfig{
		CookieName:      cfg.TokenCookie,
		Production:      cfg.IsProduction(),
		LoginRatePerMin: cfg.LoginRatePerMin,
	})

	usersService := users.NewService(users.NewRepository(dbpool), notificationService, logger)
	profileService := profile.NewService(profile.NewRepository(dbpool), logger)
	fallinService := fallin.NewService(fallin.NewRepository(dbpool), notificationService, logger)
	attendanceService := attendance.NewService(attendance.NewRepository(dbpool), logger)
	eventsService := events.NewService(events.NewRepository(dbpool), notificationService, logger)
	achievementsService := achievements.NewService(achievements.NewRepository(dbpool), uploads, notificationService, logger)
	supportService := support.NewService(support.NewRepository(dbpool), notificationService, logger)
	settingsService := settings.NewService(settings.NewRepository(dbpool), logger)
	reportsService := reports.NewService(reports.NewRepository(dbpool))

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		_ = inspector.Close()
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		Metrics:              metrics,
		Uploads:              uploads.Handler("/uploads/"),
		AuthHandler:          authHandler,
		UsersHandler:         users.NewHandler(logger, usersService),
		ProfileHandler:       profile.NewHandler(logger, profileService, uploads),
		FallinHandler:        fallin.NewHandler(logger, fallinService),
		AttendanceHandler:    attendance.NewHandler(logger, attendanceService),
		EventsHandler:        events.NewHandler(logger, eventsService),
		AchievementsHandler:  achievements.NewHandler(logger, achievementsService, uploads),
		NotificationsHandler: notifications.NewHandler(logger, notificationService),
		SupportHandler:       support.NewHandler(logger, supportService),
		SettingsHandler:      settings.NewHandler(logger, settingsService),
		ReportsHandler:       reports.NewHandler(logger, reportsService),
		AuditHandler:         audit.NewHandler(logger, auditService),
		JobHandler:           jobs.NewHandler(jobClient, inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server starting", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	logger.Info("http server stopped")
}
