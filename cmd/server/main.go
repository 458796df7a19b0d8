package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billminder/internal/app"
	"github.com/mmynk/billminder/internal/config"
	"github.com/mmynk/billminder/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default $BILLMINDER_CONFIG or the XDG config dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	handler, err := a.Handler()
	if err != nil {
		slog.Error("Failed to build handler", "error", err)
		os.Exit(1)
	}

	loop, err := a.Reminders()
	if err != nil {
		slog.Error("Failed to configure reminders", "error", err)
		os.Exit(1)
	}
	go loop.Run(ctx)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Server.Addr, "mcp", cfg.Server.MCPPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		a.Close()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
