package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"productapi/internal/app"
	"productapi/internal/config"
	"productapi/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	// --- Initialize Fiber App ---
	server, cleanup, err := app.Build(cfg, zlog, os.Stdout)
	if err != nil {
		zlog.Fatal("failed to build app", zap.Error(err))
	}
	defer cleanup()

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zlog.Info("server is running", zap.String("addr", cfg.ListenAddr()))
		if err := server.Listen(cfg.ListenAddr()); err != nil {
			zlog.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	zlog.Info("shutting down server")

	if err := server.Shutdown(); err != nil {
		zlog.Error("error during fiber shutdown", zap.Error(err))
	}
	zlog.Info("server gracefully stopped")
}
