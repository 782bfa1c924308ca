package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/internal/app"
	"bookstore/internal/client"
	"bookstore/internal/config"
	"bookstore/internal/logger"
	"bookstore/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("init app", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := client.Migrate(a.DB); err != nil {
		log.Error("migrate database", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.Reconcile.Enabled {
		go a.Reconciler.Start(ctx, cfg.Reconcile.Interval)
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	srv := server.NewServer(a.Services, log)

	log.Info("starting HTTP server", "addr", serverAddr, "env", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "err", err)
	}
}
