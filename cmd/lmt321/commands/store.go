package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lmt321/lmt321/internal/config"
	"github.com/lmt321/lmt321/pkg/db"
	"github.com/lmt321/lmt321/pkg/postgres"
)

// connectPostgres opens the configured postgres database
func connectPostgres(app *AppContext) (*postgres.DB, error) {
	pg := app.Cfg.Postgres

	app.Logger.Info("Connecting to database", zap.Uint("attempts", pg.ConnectAttempts))
	database, err := postgres.NewDB(app.Ctx, pg.URL, postgres.ConnectOptions{
		Attempts: pg.ConnectAttempts,
		Delay:    pg.ConnectDelay,
	}, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return database, nil
}

// openJobStore builds the job store selected in config. The returned func
// releases any resources held by the store.
func openJobStore(app *AppContext, migrate bool) (db.JobStore, func(), error) {
	switch app.Cfg.Store {
	case config.StoreMemory:
		app.Logger.Info("Using in-memory job store; jobs are lost on restart")
		return db.NewMemoryJobStore(), func() {}, nil

	case config.StorePostgres:
		database, err := connectPostgres(app)
		if err != nil {
			return nil, nil, err
		}

		if migrate {
			applied, err := database.RunMigrations(app.Ctx)
			if err != nil {
				database.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			app.Logger.Info("Database migrations complete", zap.Int("applied", applied))
		}

		return database, database.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", app.Cfg.Store)
	}
}
