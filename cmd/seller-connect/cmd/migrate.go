package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-seller-connect/internal/config"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	"github.com/donaldgifford/ebay-seller-connect/pkg/logger"
)

const migrateTimeout = 60 * time.Second

func migrateCommand() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply account store migrations",
		Long:  "Applies pending PostgreSQL migrations for the seller account store. With --status, only lists them.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), statusOnly)
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "list pending migrations without applying them")
	return cmd
}

func runMigrate(parent context.Context, statusOnly bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.Backend != config.BackendPostgres {
		return fmt.Errorf("migrate requires the postgres backend (got %q)", cfg.Database.Backend)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(parent, migrateTimeout)
	defer cancel()

	pg, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pg.Close()

	pending, err := pg.PendingMigrations(ctx)
	if err != nil {
		return err
	}
	if statusOnly || len(pending) == 0 {
		log.Info("migration status", "host", cfg.Database.Host, "pending", pending)
		return nil
	}

	log.Info("applying migrations", "host", cfg.Database.Host, "count", len(pending))
	if err := pg.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations complete")
	return nil
}
