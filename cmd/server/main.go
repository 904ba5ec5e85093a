// Package main runs the study-time HTTP API with graceful shutdown.
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

	"github.com/aura-webinar/studytime/config"
	"github.com/aura-webinar/studytime/internal/app"
	"github.com/aura-webinar/studytime/pkg/queue"
	"github.com/aura-webinar/studytime/pkg/redis"
	"github.com/aura-webinar/studytime/pkg/storage"
)

func main() {
	logger := app.NewLogger(os.Getenv("LOG_LEVEL") == "debug")
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	rules, err := cfg.Rules.Engine()
	if err != nil {
		logger.Fatal("rules", zap.Error(err))
	}

	ctx := context.Background()
	renderer := app.NewRodRenderer(cfg.Renderer, logger)
	defer renderer.Close()
	certificates, err := app.NewCertificateService(cfg, renderer, logger)
	if err != nil {
		logger.Fatal("certificates", zap.Error(err))
	}

	deps := app.RouterDeps{
		Loader:       app.NewLoader(cfg.Ingest, rules, logger),
		Rules:        rules,
		Certificates: certificates,
		CORSOrigins:  cfg.Server.CORSAllowedOrigins,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
		Logger:       logger,
	}

	// Async certificates need both the queue and the bucket the worker writes to.
	rdb, err := redis.NewClient(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Info("job queue disabled (REDIS_ADDR not set)")
	case err != nil:
		logger.Warn("job queue disabled", zap.Error(err))
	default:
		defer rdb.Close()
		if cfg.AWS.Enabled() {
			s3Client, err := storage.NewS3(ctx, storage.S3Config{
				Region:               cfg.AWS.Region,
				AccessKeyID:          cfg.AWS.AccessKeyID,
				SecretAccessKey:      cfg.AWS.SecretAccessKey,
				CertificatesBucket:   cfg.AWS.CertificatesBucket,
				PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
			}, logger)
			if err != nil {
				logger.Warn("s3 disabled", zap.Error(err))
			} else {
				deps.Jobs = queue.NewQueue(rdb.Client, logger)
				deps.Presigner = s3Client
				deps.Bucket = s3Client.CertificatesBucket()
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.NewRouter(deps),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
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
	logger.Info("server stopped")
}
