package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kanban/internal/server"
	"kanban/internal/service"
)

var (
	servePort   string
	serveDriver string
	serveStatic string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveDriver, "store", "", "store driver: mongo, sqlite or memory (overrides STORE_DRIVER)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "directory with the built frontend (overrides STATIC_DIR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != "" {
		cfg.Port = servePort
	}
	if serveDriver != "" {
		cfg.StoreDriver = serveDriver
	}
	if serveStatic != "" {
		cfg.StaticDir = serveStatic
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting kanban API", slog.String("version", version), slog.String("store", cfg.StoreDriver))

	store, err := openStore(ctx)
	if err != nil {
		logger.Error("unable to open store", slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	srv := server.New(service.New(store, logger), store, logger, server.Options{
		Version:        version,
		StoreDriver:    cfg.StoreDriver,
		StaticDir:      cfg.StaticDir,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit: server.RateLimitConfig{
			RatePerSecond: cfg.RateLimitRPS,
			Burst:         cfg.RateLimitBurst,
		},
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
