package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ldbrian/toughlove-ai-sub000/internal/catalog"
	"github.com/ldbrian/toughlove-ai-sub000/internal/config"
	"github.com/ldbrian/toughlove-ai-sub000/internal/db"
	"github.com/ldbrian/toughlove-ai-sub000/internal/logger"
	"github.com/ldbrian/toughlove-ai-sub000/internal/receipt"
	"github.com/ldbrian/toughlove-ai-sub000/internal/server"
)

// @title ToughLove Rin Ledger API
// @version 1.0
// @description Wallet ledger, payment settlement and item-effect service for the ToughLove companion app.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("starting rin ledger service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.WebhookSecret == "" {
		logger.Error("WEBHOOK_SECRET is empty; all payment webhooks will be rejected")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}
	logger.Info("migrations completed")

	items, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatalf("failed to load catalog: %v", err)
	}
	logger.Infof("catalog loaded: %d items", items.Len())

	receipts := receipt.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer receipts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go receipts.Start(ctx)

	srv := server.New(database, cfg, items, receipts)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("server error: %v", err)
	}

	logger.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("error during server shutdown: %v", err)
	}

	logger.Info("server stopped")
}
