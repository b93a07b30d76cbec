package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hydroguard/hydroguard/internal/config"
	"github.com/hydroguard/hydroguard/internal/service"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the monitoring service",
		Long: `Start the monitoring service: scrape every configured gateway, evaluate
its asset, raise alerts and serve the REST API and Prometheus metrics.
The config file is watched and alert rules and profile overrides are
reloaded on change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "hydroguard.yaml", "path to config file")
	return cmd
}

func runService(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	slog.Info("hydroguard starting", "version", Version, "config", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"http_port", cfg.Service.HTTPPort,
		"auth_mode", cfg.Service.Auth.Mode,
		"snapshot_ttl", cfg.Service.SnapshotTTL,
		"assets", len(cfg.Assets),
		"sources", len(cfg.Sources),
	)

	svc, err := service.New(cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	if err := svc.Bootstrap(); err != nil {
		slog.Warn("some assets could not be loaded", "err", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error {
		if err := config.Watch(ctx, configPath, svc.Reload); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
		return nil
	})

	err = g.Wait()
	slog.Info("hydroguard shutting down")
	svc.Alerts.Wait()
	return err
}
