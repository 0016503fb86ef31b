package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jobdeck/jobdeck-be/internal/cache"
	"github.com/jobdeck/jobdeck-be/internal/config"
	"github.com/jobdeck/jobdeck-be/internal/gateway/auth"
	"github.com/jobdeck/jobdeck-be/internal/gateway/handler"
	"github.com/jobdeck/jobdeck-be/internal/gateway/router"
	"github.com/jobdeck/jobdeck-be/internal/notify"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
	"github.com/jobdeck/jobdeck-be/shared/logger"
	"github.com/jobdeck/jobdeck-be/shared/rabbitmq"
	"github.com/jobdeck/jobdeck-be/shared/redis"
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

	defaultConfigPath := os.Getenv("GATEWAY_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/gateway/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateGateway(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting gateway",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	redisClient, err := redis.NewClient(cfg.RedisClientConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	routes := rpc.NewRoutingTable(rpc.QueueNames{
		Job:         cfg.RPC.Queues.Job,
		Application: cfg.RPC.Queues.Application,
		Interview:   cfg.RPC.Queues.Interview,
	})
	for op, timeout := range cfg.RPC.OpTimeouts {
		if err := routes.SetTimeout(op, timeout); err != nil {
			return fmt.Errorf("invalid rpc op timeout: %w", err)
		}
	}

	rpcClient, err := rpc.NewClient(ctx, rabbitClient, &rpc.ClientConfig{
		Routes:         routes,
		DefaultTimeout: cfg.RPC.DefaultTimeout,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RPC client: %w", err)
	}

	hub := notify.NewHub(appLogger.Logger)
	subscriber := notify.NewSubscriber(rabbitClient, hub, appLogger.Logger)
	go func() {
		if err := subscriber.Start(ctx); err != nil {
			appLogger.Error("Notification subscriber stopped",
				slog.Any("error", err),
			)
		}
	}()

	deps := &handler.Dependencies{
		Logger: appLogger.Logger,
		Caller: rpcClient,
		Cache: cache.New(redisClient, &cache.Config{
			DefaultTTL:     cfg.Cache.DefaultTTL,
			StaleThreshold: cfg.Cache.StaleThreshold,
			RefreshTimeout: cfg.Cache.RefreshTimeout,
		}, appLogger.Logger),
		Limiter: cache.NewLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, appLogger.Logger),
		Hub:     hub,
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(deps, auth.NewVerifier(cfg.Auth.JWTSecret))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("Gateway is running",
		slog.String("address", addr),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gateway...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Gateway shutdown complete")
	return nil
}
