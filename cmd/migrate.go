package cmd

import (
	"context"
	"fmt"

	"github.com/legalnest/backend/internal/app"
	"github.com/legalnest/backend/internal/db"
	"github.com/legalnest/backend/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create submission tables (MySQL) or indexes (MongoDB); safe to re-run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := app.Bootstrap(cfgPath)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.Database.URI == "" {
			return fmt.Errorf("migrate: database.uri is not set (file and memory storage need no migration)")
		}
		ctx := context.Background()

		if db.IsMongoURI(cfg.Database.URI) {
			repo, err := app.OpenMongo(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := repo.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			log.Info("migration complete", zap.String("mode", repo.Mode().String()))
			return nil
		}

		stmts, err := migrations.Statements()
		if err != nil {
			return fmt.Errorf("read migrations: %w", err)
		}
		repo, err := app.OpenMySQL(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.Migrate(ctx, stmts); err != nil {
			return err
		}
		log.Info("migration complete", zap.String("mode", repo.Mode().String()), zap.Int("statements", len(stmts)))
		return nil
	},
}
