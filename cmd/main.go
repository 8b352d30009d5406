/*
Package main is the entry point for the presence hub.

It loads configuration, initializes the global logging system, starts the
hub and the HTTP server carrying the WebSocket and control-plane routes, and
handles operating system interrupt signals for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"presencehub/internal/app/hub"
	"presencehub/internal/configs"
	"presencehub/internal/handler"
	"presencehub/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("ping_interval", cfg.PingInterval).
		Dur("ping_timeout", cfg.PingTimeout).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.New(hub.Options{
		PingInterval: cfg.PingInterval,
		PingTimeout:  cfg.PingTimeout,
	})

	router := handler.Router(&handler.AppDeps{
		Hub:    h,
		Config: cfg,
	})

	serverAddr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Presence hub listening on %s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	h.Shutdown()

	logx.Info("Server gracefully stopped.")
}
