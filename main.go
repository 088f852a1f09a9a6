package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"foodgram/internal/app"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/logger"
	"foodgram/internal/services"
	"foodgram/internal/storage"
	"foodgram/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, flush, err := logger.Install(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	server, cleanup, err := buildServer(context.Background(), cfg)
	if err != nil {
		log.Fatal("failed to build server", zap.Error(err))
	}
	defer cleanup()

	log.Info("starting server", zap.String("port", cfg.AppPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")
	if err := server.Shutdown(); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

// buildServer opens the database, connects the optional broker and image
// store, and assembles the application. cleanup releases what was opened.
func buildServer(ctx context.Context, cfg config.Config) (*fiber.App, func(), error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := database.Migrate(db); err != nil {
		closeDB()
		return nil, nil, err
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		publisher = mqClient
	} else {
		zap.L().Info("RABBITMQ_URL is empty, domain events are disabled")
	}

	server, _ := app.New(app.Options{
		DB:           db,
		JWTSecret:    cfg.JWTSecret,
		Images:       images,
		Publisher:    publisher,
		RateLimitMax: cfg.RateLimitMax,
		AccessLog:    true,
		MediaRoot:    mediaRoot(cfg),
		MediaURL:     cfg.MediaURL,
	})

	cleanup := func() {
		if mqClient != nil {
			if err := mqClient.Close(); err != nil {
				zap.L().Warn("failed to close RabbitMQ client", zap.Error(err))
			}
		}
		closeDB()
	}
	return server, cleanup, nil
}

func newImageStore(ctx context.Context, cfg config.Config) (storage.ImageStore, error) {
	switch cfg.MediaBackend {
	case "s3":
		return storage.NewS3StoreFromCredentials(ctx, cfg.AWSS3Bucket, cfg.AWSS3Region, cfg.AWSAccessKey, cfg.AWSSecretKey)
	case "local", "":
		return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
	return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
}

// mediaRoot returns the directory to serve uploaded images from, if any.
func mediaRoot(cfg config.Config) string {
	if cfg.MediaBackend == "s3" {
		return ""
	}
	return cfg.MediaRoot
}
