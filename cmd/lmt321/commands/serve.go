package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lmt321/lmt321/pkg/api"
	"github.com/lmt321/lmt321/pkg/core/services"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the job intake API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				app.Cfg.ListenAddr = addr
			}

			store, closeStore, err := openJobStore(app, !skipMigrations)
			if err != nil {
				return err
			}
			defer closeStore()

			router := api.NewRouter(services.NewJobs(store, app.Logger), api.Options{
				ServiceName:    app.Cfg.ServiceName,
				Version:        app.Cfg.APIVersion,
				RequestTimeout: app.Cfg.RequestTimeout,
			}, app.Logger)

			srv := &http.Server{
				Addr:              app.Cfg.ListenAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       app.Cfg.RequestTimeout,
				WriteTimeout:      app.Cfg.RequestTimeout + 5*time.Second,
				IdleTimeout:       2 * time.Minute,
			}

			return runServer(app, srv)
		},
	}

	cmd.Flags().String("addr", "", "Listen address, overriding listenAddr from config")
	cmd.Flags().Bool("skip-migrations", false, "Don't apply database migrations on startup (postgres store only)")

	return cmd
}

// runServer serves until the app context is cancelled, then drains in-flight requests
func runServer(app *AppContext, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("Listening",
			zap.String("addr", srv.Addr),
			zap.String("service", app.Cfg.ServiceName),
			zap.String("store", app.Cfg.Store))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-app.Ctx.Done():
	}

	app.Logger.Info("Shutting down", zap.Duration("timeout", app.Cfg.ShutdownTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	app.Logger.Info("Server stopped")
	return nil
}
