package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lmt321/lmt321/cmd/lmt321/commands"
	"github.com/lmt321/lmt321/internal/config"
	"github.com/lmt321/lmt321/pkg/utils/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &commands.AppContext{Ctx: ctx}
	var closeLogger func() error

	rootCmd := &cobra.Command{
		Use:   "lmt321",
		Short: "LMT321 - Technician job intake service",
		Long:  `Accepts job requests from clients, availability from technicians and assignment confirmations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			closeLogger, err = initApp(app)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeLogger != nil {
				if err := closeLogger(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&app.Env, "env", "e", "", "Environment (required: dev, test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))

	if err := rootCmd.Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}

// initApp loads configuration and sets up the logger. The returned func
// flushes and closes the log file.
func initApp(app *commands.AppContext) (func() error, error) {
	var err error

	app.Cfg, err = config.LoadWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zapcore.ParseLevel(app.Cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var closeLogger func() error
	app.Logger, closeLogger, err = logging.InitLogger(logging.Options{
		Env:          app.Env,
		Dir:          app.Cfg.LogsDir,
		ConsoleLevel: level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application",
		zap.String("environment", app.Env),
		zap.String("store", app.Cfg.Store),
		zap.String("log_level", level.String()))

	return closeLogger, nil
}
