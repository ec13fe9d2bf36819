package commands

import (
	"errors"

	"capacity/cmd"
	"capacity/migrations"

	"github.com/spf13/cobra"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if cfg.Storage != cmd.StoragePostgres {
				return errors.New("migrate needs STORAGE=postgres")
			}

			db, err := gorm.Open(gorm_postgres.Open(cfg.DSN()), &gorm.Config{})
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			ctx := command.Context()
			if err = migrations.Up(ctx, sqlDB); err != nil {
				return err
			}
			version, err := migrations.Version(ctx, sqlDB)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "database migrated", "version", version)
			return nil
		},
	}
}
