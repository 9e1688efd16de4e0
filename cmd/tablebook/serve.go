package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/tablebook/internal/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var httpAddr, grpcAddr, metricsAddr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, gRPC health and metrics servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("grpc-addr") {
				cfg.GRPCAddr = grpcAddr
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithFields(log.Fields{
				"http_addr":      cfg.HTTPAddr,
				"grpc_addr":      cfg.GRPCAddr,
				"metrics_addr":   cfg.MetricsAddr,
				"storage":        cfg.StorageDriver,
				"limit_per_hour": cfg.LimitPerHour,
			}).Info("запускаем tablebook")

			if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("tablebook остановлен")
			return nil
		},
	}

	defaults := app.DefaultConfig()
	c.Flags().StringVar(&httpAddr, "http-addr", defaults.HTTPAddr, "HTTP API listen address")
	c.Flags().StringVar(&grpcAddr, "grpc-addr", defaults.GRPCAddr, "gRPC listen address")
	c.Flags().StringVar(&metricsAddr, "metrics-addr", defaults.MetricsAddr, "metrics and health listen address")
	return c
}
