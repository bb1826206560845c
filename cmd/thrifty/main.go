package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"thrifty/internal/auth"
	"thrifty/internal/backend"
	"thrifty/internal/cache"
	"thrifty/internal/cli"
	apphttp "thrifty/internal/http"
	"thrifty/internal/ledger"
	"thrifty/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	store, err := ledger.Open(ctx, result.Store)
	if err != nil {
		logger.Error("Failed to open ledger", "error", err)
		os.Exit(1)
	}

	svc := services.NewLedgerService(store, result.Publisher)
	defer svc.Close()

	var authService *auth.Service
	if cfg.AuthEnabled() {
		authService = auth.NewService(result.Users, cfg.JWTSecret, cfg.JWTExpiry)
		logger.Info("Authentication enabled", "token_ttl", cfg.JWTExpiry.String())
	} else {
		logger.Info("Authentication disabled - no JWT_SECRET provided")
	}

	cacheManager := cache.NewManager()
	cacheManager.Register(svc.ReplyCache())
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, svc, authService)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting thrifty server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"remote", cfg.RemoteBackend,
		"sync_mode", cfg.SyncMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
