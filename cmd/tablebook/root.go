package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/tablebook/internal/app"
	"github.com/vladislavdragonenkov/tablebook/internal/booking"
)

const envLogLevel = "TABLEBOOK_LOG_LEVEL"

// rootOptions хранит общие флаги, которые перекрывают переменные окружения.
type rootOptions struct {
	cfg      app.Config
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	flagCfg := app.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "tablebook",
		Short:         "Reservas de mesa por franja horaria",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, warnings := app.FromEnv()
			applyFlagOverrides(cmd, &cfg, flagCfg)
			opts.cfg = cfg

			if err := setupLogger(opts.logLevel, cmd); err != nil {
				return err
			}
			for _, w := range warnings {
				log.WithError(w).Warn("invalid environment value ignored")
			}
			return opts.cfg.Validate()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&flagCfg.StorageDriver, "storage", flagCfg.StorageDriver, "storage driver: memory|file|badger|postgres")
	flags.StringVar(&flagCfg.FilePath, "file", flagCfg.FilePath, "snapshot file for the file driver")
	flags.StringVar(&flagCfg.BadgerDir, "badger-dir", flagCfg.BadgerDir, "badger directory (empty = in-memory)")
	flags.StringVar(&flagCfg.PostgresDSN, "postgres-dsn", "", "PostgreSQL DSN for the postgres driver")
	flags.IntVar(&flagCfg.LimitPerHour, "limit-per-hour", flagCfg.LimitPerHour, "maximum reservations per time slot")
	flags.StringVar(&flagCfg.MenuPath, "menu", flagCfg.MenuPath, "menu catalog JSON file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (fallback: "+envLogLevel+")")

	cmd.AddCommand(
		newReserveCmd(opts),
		newListCmd(opts),
		newMenuCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// applyFlagOverrides переносит в cfg только явно заданные флаги.
func applyFlagOverrides(cmd *cobra.Command, cfg *app.Config, flagCfg app.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(flagCfg.StorageDriver))
	}
	if flags.Changed("file") {
		cfg.FilePath = flagCfg.FilePath
	}
	if flags.Changed("badger-dir") {
		cfg.BadgerDir = flagCfg.BadgerDir
	}
	if flags.Changed("postgres-dsn") {
		cfg.PostgresDSN = flagCfg.PostgresDSN
	}
	if flags.Changed("limit-per-hour") {
		cfg.LimitPerHour = flagCfg.LimitPerHour
	}
	if flags.Changed("menu") {
		cfg.MenuPath = flagCfg.MenuPath
	}
}

// setupLogger настраивает формат и уровень логирования.
func setupLogger(level string, cmd *cobra.Command) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(cmd.ErrOrStderr())

	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	if level == "" {
		level = "warn"
		if cmd.Name() == "serve" {
			level = "info"
		}
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)
	return nil
}

// openStore открывает хранилище броней для команд CLI.
func (o *rootOptions) openStore(ctx context.Context) (*booking.ReservationStore, error) {
	return app.OpenStore(ctx, o.cfg, log.WithField("component", "cli"))
}
