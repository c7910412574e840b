package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/streamupload/component"
	"github.com/kbukum/streamupload/httpupload"
	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/observability"
	"github.com/kbukum/streamupload/server"
	"github.com/kbukum/streamupload/upload"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Accept uploads over HTTP (POST /uploads)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

// serve runs the uploader and HTTP server until ctx is done.
func (c *cli) serve(ctx context.Context) error {
	cfg := c.cfg

	shutdownTelemetry, err := observability.Init(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			c.log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	registry := component.NewRegistry(c.log)
	uploader := upload.NewComponent(cfg.Upload, cfg.Storage, c.log)

	srv := server.New(cfg.Server, c.log)
	srv.ApplyDefaults(cfg.Name, registry.HealthAll)
	httpupload.NewHandler(uploader).Register(srv.GinEngine())

	for _, comp := range []component.Component{uploader, server.NewComponent(srv)} {
		if err := registry.Register(comp); err != nil {
			return err
		}
	}

	if err := registry.StartAll(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = registry.StopAll(stopCtx)
		return err
	}
	c.log.Info("serving uploads", logger.Fields("addr", srv.Addr()))

	<-ctx.Done()
	c.log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return registry.StopAll(stopCtx)
}
