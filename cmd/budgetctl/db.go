package main

import (
	"fmt"

	"budget/internal/core"
	"budget/internal/storage"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := cfg.DatabaseDSN()
			if err != nil {
				return err
			}
			if err := storage.RunMigrations(cfg.DBDriver, dsn); err != nil {
				return err
			}
			return printVersion(cmd, dsn)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := cfg.DatabaseDSN()
			if err != nil {
				return err
			}
			return printVersion(cmd, dsn)
		},
	})
	return cmd
}

func printVersion(cmd *cobra.Command, dsn string) error {
	v, dirty, err := storage.MigrationVersion(cfg.DBDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d (%s)\n", cfg.DBDriver, v, state)
	return nil
}

// sampleCategories and sampleEntries are the demo data loaded by seed.
var (
	sampleCategories = []core.CategoryInput{
		{Name: "Food", Amount: "100"},
		{Name: "Utilities", Amount: "80"},
		{Name: "Personal", Amount: "100"},
		{Name: "Housing", Amount: "1750"},
	}
	sampleEntries = []core.EntryInput{
		{Description: "Lunch", Amount: "12.02", Category: "Food", Date: "2023-01-11"},
		{Description: "Paint", Amount: "15.00", Category: "Personal", Date: "2023-01-11"},
		{Description: "Xcel", Amount: "36.25", Category: "Utilities", Date: "2023-01-11"},
		{Description: "Video Game", Amount: "60.56", Category: "Personal", Date: "2023-01-11"},
		{Description: "Rent", Amount: "1723.24", Category: "Housing", Date: "2023-01-11"},
		{Description: "Dinner", Amount: "13.56", Category: "Food", Date: "2023-01-10"},
	}
)

func seedCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample categories and entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if reset {
				if err := store.Reset(ctx); err != nil {
					return fmt.Errorf("failed to reset database: %w", err)
				}
			}

			svc := newService(store)
			for _, c := range sampleCategories {
				taken, err := svc.CategoryNameTaken(ctx, c.Name, 0)
				if err != nil {
					return err
				}
				if taken {
					continue
				}
				if _, err := svc.CreateCategory(ctx, c); err != nil {
					return fmt.Errorf("failed to create category %s: %w", c.Name, err)
				}
			}
			for _, e := range sampleEntries {
				if _, err := svc.CreateEntry(ctx, e); err != nil {
					return fmt.Errorf("failed to create entry %s: %w", e.Description, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d entries\n",
				len(sampleCategories), len(sampleEntries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing data first")
	return cmd
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all entries and categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset %s without --yes", cfg.DBDriver)
			}
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Reset(ctx); err != nil {
				return fmt.Errorf("failed to reset database: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
