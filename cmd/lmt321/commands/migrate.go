package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmt321/lmt321/internal/config"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.Store != config.StorePostgres {
				return fmt.Errorf("migrate requires store %q, config has %q", config.StorePostgres, app.Cfg.Store)
			}

			database, err := connectPostgres(app)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := database.RunMigrations(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			if applied == 0 {
				fmt.Println("Database is up to date - no migrations applied.")
				return nil
			}

			fmt.Printf("\n✓ Applied %d migration(s)\n\n", applied)
			return nil
		},
	}
}
