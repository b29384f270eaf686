// Package server runs the HTTP and gRPC listeners until the process is
// signalled, then drains them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/internal/bootstrap"
	"github.com/shashiranjanraj/catalog/pkg/grpc"
	"github.com/shashiranjanraj/catalog/pkg/logger"
	"github.com/shashiranjanraj/catalog/pkg/migration"
)

const shutdownTimeout = 15 * time.Second

// Start boots the catalog, brings a SQL store's schema up to date and serves
// until SIGINT or SIGTERM.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Boot(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close connections", "error", err)
		}
	}()

	if app.DB != nil {
		if err := migration.New(app.DB).Run(ctx); err != nil {
			return err
		}
	}

	return Run(ctx, app, config.AppPort(), config.GRPCPort())
}

// Run serves app over HTTP on httpPort and the gRPC health service on
// grpcPort until ctx is done.
func Run(ctx context.Context, app *bootstrap.App, httpPort, grpcPort string) error {
	k, err := app.Kernel()
	if err != nil {
		return err
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go app.Hub.Run(hubCtx)

	grpcSrv, err := grpc.Start(ctx, grpcPort, app.Service.Ping)
	if err != nil {
		return err
	}
	defer grpcSrv.Stop()
	logger.Info("grpc listening", "addr", grpcSrv.Addr().String())

	srv := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: http: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	app.Events.Flush()
	return nil
}
