package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go-order-hub/internal/application/facade"
	"go-order-hub/internal/config"
	"go-order-hub/internal/infrastructure/hub"
	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/infrastructure/server"
	"go-order-hub/internal/infrastructure/store"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the update hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(rootOpts)
			if err != nil {
				return err
			}
			return runServe(WithSignal(cmd.Context()), cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	repo, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer repo.Close()

	hubInstance := hub.New(log, hub.WithCleanupInterval(cfg.Hub.CleanupInterval))

	// The hub must be running before the first subscriber arrives.
	if err := hubInstance.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start hub: %w", err)
	}

	orders := facade.NewOrderApplicationService(repo, hubInstance, log)
	router := InitRouter(cfg, hubInstance, orders, log)
	httpSrv := server.NewHTTPServer(router, cfg.Server, log)

	app := newApplication(log, httpSrv, hubInstance, cfg.Server.ShutdownTimeout)
	return app.Run(ctx)
}

type Application struct {
	logger          logger.Logger
	httpSrv         server.Server
	hub             *hub.Hub
	shutdownTimeout time.Duration
}

func newApplication(
	logger logger.Logger,
	httpSrv server.Server,
	hubInstance *hub.Hub,
	shutdownTimeout time.Duration,
) *Application {
	return &Application{
		logger:          logger.WithField("app", "orderhub"),
		httpSrv:         httpSrv,
		hub:             hubInstance,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run serves until ctx is cancelled or the listener fails, then stops the
// hub before draining the HTTP server.
func (app *Application) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return app.httpSrv.Start(egCtx)
	})

	eg.Go(func() error {
		<-egCtx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			app.shutdownTimeout,
		)
		defer cancel()

		// Stop hub first so open streams end and the server can drain.
		if err := app.hub.Stop(gracefulshutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}

		return app.httpSrv.Stop(gracefulshutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	app.logger.Info("shutdown complete")
	return nil
}
