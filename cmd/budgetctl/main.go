package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"

	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *log.Logger

	rootCmd = &cobra.Command{
		Use:               "budgetctl",
		Short:             "Administer the budget database",
		Long:              `Run migrations, load sample data and print budget reports from the command line.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().String("env", "", "override APP_ENV (development, test, production)")
	rootCmd.PersistentFlags().String("db-driver", "", "override DB_DRIVER (sqlite, postgres)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(overviewCmd())
	rootCmd.AddCommand(categoriesCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	logger = cli.SetupLogger(log.ComponentApp)

	if env, _ := cmd.Flags().GetString("env"); env != "" {
		os.Setenv("APP_ENV", env)
	}
	if driver, _ := cmd.Flags().GetString("db-driver"); driver != "" {
		os.Setenv("DB_DRIVER", driver)
	}

	cfg = config.Load()
	return cfg.Validate()
}

// openStore connects to the configured database, applying migrations.
func openStore(ctx context.Context) (*storage.Store, error) {
	dsn, err := cfg.DatabaseDSN()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, storage.Options{
		Driver: cfg.DBDriver,
		DSN:    dsn,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func newService(store *storage.Store) *services.BudgetService {
	return services.NewBudgetService(store, services.Options{
		Logger:    logger,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	})
}
