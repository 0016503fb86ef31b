package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jobdeck/jobdeck-be/internal/config"
	"github.com/jobdeck/jobdeck-be/internal/interviewsvc"
	"github.com/jobdeck/jobdeck-be/internal/notify"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
	"github.com/jobdeck/jobdeck-be/internal/store"
	"github.com/jobdeck/jobdeck-be/shared/logger"
	"github.com/jobdeck/jobdeck-be/shared/postgresql"
	"github.com/jobdeck/jobdeck-be/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("INTERVIEW_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/interview-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateService(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting interview service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("queue", cfg.Service.Queue),
	)

	dbClient, err := postgresql.NewClient(cfg.PostgresConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	st := store.NewStore(dbClient.GetDB(), appLogger.Logger)
	publisher := notify.NewPublisher(rabbitClient, appLogger.Logger)

	srv := rpc.NewServer(rabbitClient, &rpc.ServerConfig{
		Queue:         cfg.Service.Queue,
		Concurrency:   cfg.Service.Concurrency,
		PrefetchCount: cfg.Service.PrefetchCount,
	}, appLogger.Logger)

	interviewsvc.NewService(st, publisher, appLogger.Logger).Register(srv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	appLogger.Info("Interview service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Server stopped unexpectedly",
			slog.Any("error", err),
		)
		return err
	}

	cancel()

	// Start returns once in-flight handlers have drained
	select {
	case <-errChan:
	case <-time.After(30 * time.Second):
		appLogger.Warn("Shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Interview service shutdown complete")
	return nil
}
