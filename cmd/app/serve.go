package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/internal/scheduler"
	"github.com/AbdulWasayUl/go-country-currency/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the HTTP API and, when REFRESH_INTERVAL is set, the periodic refresh.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.close(context.Background())

	sch, err := scheduler.New()
	if err != nil {
		return err
	}
	services := []scheduler.SchedulableService{app.service}

	if app.cfg.Refresh.Interval > 0 {
		if err := sch.StartJob(ctx, app.cfg.Refresh.Interval, services); err != nil {
			return err
		}
	}
	if app.cfg.Refresh.OnStart {
		logger.Info("Executing immediate startup refresh.")
		go sch.RunImmediateJob(ctx, services)
	}

	srv := server.New(app.service, app.artifacts)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server is running on port %s", app.cfg.Server.Port)
		errCh <- srv.Listen(":" + app.cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Received interrupt signal. Shutting down gracefully...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server stopped: %v", err)
			cancel()
			sch.Stop()
			return err
		}
	}

	if err := srv.Shutdown(); err != nil {
		logger.Error("Error shutting down HTTP server: %v", err)
	}
	cancel()
	sch.Stop()
	logger.Info("Shutdown complete.")
	return nil
}
