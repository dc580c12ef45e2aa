package cmd

import (
	"swipe-match-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema for the configured driver",
		Long: `Apply pending SQL migrations.

Only the postgres and sqlite drivers have a schema. The dynamo driver
expects its table to exist already and memory needs nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			switch cfg.Database.Driver {
			case config.DriverPostgres, config.DriverSQLite:
			default:
				log.Info().Str("driver", cfg.Database.Driver).Msg("Nothing to migrate")
				return nil
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			log.Info().Str("driver", cfg.Database.Driver).Msg("Schema is up to date")
			return nil
		},
	}
}
