// Package main runs the survey builder HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-survey/builder/config"
	"github.com/aura-survey/builder/internal/analytics"
	"github.com/aura-survey/builder/internal/auth"
	"github.com/aura-survey/builder/internal/draft"
	"github.com/aura-survey/builder/internal/editor"
	"github.com/aura-survey/builder/internal/guard"
	"github.com/aura-survey/builder/internal/middleware"
	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/persistence"
	"github.com/aura-survey/builder/internal/session"
	"github.com/aura-survey/builder/internal/surveys"
	"github.com/aura-survey/builder/pkg/redis"
	"github.com/aura-survey/builder/pkg/response"
	"github.com/aura-survey/builder/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	// Sessions and delete guards live in Redis when configured, so several
	// instances share them; otherwise in process memory.
	var (
		sessionStore session.Store = session.NewMemoryStore()
		deleteGuard  guard.Guard   = guard.NewInMemory()
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		sessionStore = session.NewRedisStore(rdb.Client)
		deleteGuard = guard.NewRedis(rdb.Client, logger)
	} else {
		logger.Info("redis not configured, using in-memory sessions")
	}

	var exporter *analytics.Exporter
	if cfg.AWS.ReportsBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ReportsBucket:        cfg.AWS.ReportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			exporter = analytics.NewExporter(s3Client, logger)
		}
	}

	api := persistence.NewClient(persistence.Config{
		BaseURL:    cfg.Persistence.BaseURL,
		Timeout:    cfg.Persistence.Timeout(),
		VerifyPath: cfg.Persistence.VerifyPath,
	}, logger)

	// Auth
	sessions := auth.NewSessions(auth.NewVerifier(api, logger), sessionStore, cfg.Editor.SessionTTL(), logger)

	// Editor
	registry := editor.NewRegistry(cfg.Editor.DraftIdle(), logger)
	editorHandler := editor.NewHandler(registry, api, logger,
		draft.WithGuard(deleteGuard),
		draft.WithGuardTTL(cfg.Editor.DeleteGuardTTL()),
	)
	authHandler := auth.NewHandler(sessions, registry, logger)

	surveyHandler := surveys.NewHandler(api, logger)
	analyticsHandler := analytics.NewHandler(api, exporter, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/question-types", func(c *gin.Context) { response.OK(c, models.QuestionTypes) })

	// Respondent side: anonymous unless the survey requires login
	public := router.Group("")
	public.Use(middleware.OptionalAuth(sessions))
	{
		public.GET("/surveys/:id", surveyHandler.Get)
		public.POST("/surveys/:id/responses", surveyHandler.Submit)
	}

	// Protected
	protected := router.Group("")
	protected.Use(middleware.Auth(sessions))
	{
		protected.GET("/auth/session", authHandler.Current)
		protected.DELETE("/auth/session", authHandler.Logout)

		protected.GET("/surveys", surveyHandler.List)
		protected.GET("/surveys/:id/analytics", analyticsHandler.Get)
		protected.POST("/surveys/:id/analytics/export", analyticsHandler.Export)

		editorHandler.Routes(protected)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("persistence_api", cfg.Persistence.BaseURL),
			zap.Bool("redis", cfg.Redis.Enabled()),
			zap.Bool("export", exporter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if n := registry.Len(); n > 0 {
		logger.Info("discarding open drafts", zap.Int("drafts", n))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
