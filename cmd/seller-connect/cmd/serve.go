package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-seller-connect/internal/config"
	"github.com/donaldgifford/ebay-seller-connect/internal/telemetry"
	"github.com/donaldgifford/ebay-seller-connect/pkg/logger"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and token sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return errors.Join(err, shutdownTelemetry(context.Background()))
	}
	defer a.close()

	if a.sweeper != nil {
		a.sweeper.Start()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "environment", cfg.Ebay.Environment, "store", cfg.Database.Backend)

	errCh := make(chan error, 1)
	go func() {
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var errs []error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", "error", err)
		errs = append(errs, fmt.Errorf("serving: %w", err))
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.sweeper != nil {
		select {
		case <-a.sweeper.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn("token sweep still running at shutdown")
		}
	}

	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down server: %w", err))
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("flushing telemetry: %w", err))
	}

	log.Info("server stopped")
	return errors.Join(errs...)
}
