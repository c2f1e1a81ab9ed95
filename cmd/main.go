// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/database"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/handler"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/notify"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ConnectAttempts: cfg.DBConnectAttempts,
	}, zl)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	zl.Info("connected to PostgreSQL")

	if cfg.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		zl.Info("schema applied")
	}

	// ── 2. Notification sinks ─────────────────────────────────────────────
	store := repository.NewPostgresStore(pool)
	m := metrics.New()
	sinks := []notify.Sink{notify.NewStoreSink(store)}
	if cfg.RedisAddr != "" {
		redisClient, err := notify.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		sinks = append(sinks, notify.NewStreamSink(redisClient, cfg.NotifyStream))
		zl.Info("publishing notices to redis stream", zap.String("stream", cfg.NotifyStream))
	}
	dispatcher := notify.NewDispatcher(zl, m, sinks...)

	// ── 3. Wire up layers ────────────────────────────────────────────────
	wallet := service.NewWalletService(store, zl, m)
	h := handler.New(handler.Services{
		Users:         service.NewUserService(store, zl),
		Events:        service.NewEventService(store, zl),
		Registrations: service.NewRegistrationService(store, wallet, dispatcher, zl, m),
		Payments:      service.NewPaymentService(store, wallet, dispatcher, zl, m),
		Wallet:        wallet,
		Notifications: service.NewNotificationService(store),
		Reports:       service.NewReportService(store, zl),
	}, zl)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.NewRouter(h, zl, m),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	serverErr := make(chan error, 1)
	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		zl.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	zl.Info("server stopped")
	return nil
}
