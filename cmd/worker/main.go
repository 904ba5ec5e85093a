// Package main runs the background certificate renderer (Redis queue to S3).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/config"
	"github.com/aura-webinar/studytime/internal/app"
	"github.com/aura-webinar/studytime/internal/export"
	"github.com/aura-webinar/studytime/internal/worker"
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

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		CertificatesBucket:   cfg.AWS.CertificatesBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	renderer := app.NewRodRenderer(cfg.Renderer, logger)
	defer renderer.Close()
	certificates, err := app.NewCertificateService(cfg, renderer, logger)
	if err != nil {
		logger.Fatal("certificates", zap.Error(err))
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	sink := export.NewSink(s3Client, nil, logger)
	processor := worker.NewCertificateProcessor(jobQueue, certificates, sink, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("queue", queue.QueueCertificates))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		logger.Warn("worker did not stop in time")
	}
	logger.Info("worker stopped")
}
