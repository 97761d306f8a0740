// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/masadchattha/QRCodeHelper/internal/api"
	"github.com/masadchattha/QRCodeHelper/internal/config"
	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/health"
	xglog "github.com/masadchattha/QRCodeHelper/internal/log"
	"github.com/masadchattha/QRCodeHelper/internal/permission"
	"github.com/masadchattha/QRCodeHelper/internal/telemetry"
)

const serviceName = "qrhelper"

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve QR generation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loader, err := root.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.API.ListenAddr = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, loader)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides api.listenAddr)")
	return cmd
}

func runServe(ctx context.Context, cfg config.AppConfig, loader *config.Loader) error {
	logger := xglog.WithComponent("cli")
	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	gen, err := generator.New(config.GeneratorOptions(cfg))
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	tracing := ""
	if cfg.Tracing.Enabled {
		tracing = serviceName
	}
	srv := api.New(api.Config{
		ListenAddr:     cfg.API.ListenAddr,
		MaxConns:       cfg.API.MaxConns,
		RateLimit:      cfg.API.RateLimit,
		Version:        version,
		TracingService: tracing,
	}, gen)
	srv.RegisterChecker(health.PermissionStoreCheck{Store: permission.NewFileStore(cfg.Permission.File)})

	holder := config.NewConfigHolder(cfg, loader)
	updates := make(chan config.AppConfig, 1)
	holder.RegisterListener(updates)

	g, gctx := errgroup.WithContext(ctx)
	if err := holder.StartWatcher(gctx); err != nil {
		logger.Warn().Err(err).Msg("config watcher unavailable; reload disabled")
	}
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case next := <-updates:
				applyReload(srv, next)
			}
		}
	})

	err = g.Wait()
	holder.Wait()
	return err
}

// applyReload pushes reloadable settings into the running server. Listen
// address, connection cap and rate limit need a restart.
func applyReload(srv *api.Server, cfg config.AppConfig) {
	xglog.Reconfigure(xglog.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
		Version: version,
	})
	gen, err := generator.New(config.GeneratorOptions(cfg))
	if err != nil {
		logger := xglog.WithComponent("cli")
		logger.Error().Err(err).Msg("reloaded generator options rejected")
		return
	}
	srv.SetGenerator(gen)
}
