package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/infrastructure/traininglog"
	"github.com/mansoorceksport/liftlog/internal/server"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting Liftlog Session Engine...")

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenTelemetry: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelProvider.Shutdown(shutdownCtx)
		}()
	}

	// Connect to Redis (session snapshot + identity storage)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected")

	// Training-log service client
	logClient := traininglog.NewHTTPClient(traininglog.Config{
		BaseURL: cfg.TrainingLog.BaseURL,
		Timeout: cfg.TrainingLog.Timeout,
	})

	app, sessionService := server.NewApp(server.AppDependencies{
		Config:      cfg,
		RedisClient: redisClient,
		LogClient:   logClient,
	})

	// Pick up a previous session if the app was reloaded mid-workout
	if err := sessionService.Restore(ctx); err != nil {
		log.Printf("Warning: Failed to restore session snapshot: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		_ = app.Shutdown()
	}()

	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Failed to close Redis client: %v", err)
	}
}
