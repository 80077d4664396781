package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/adapters/procstore"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/database"
)

// NewMigrateCommand creates the schema migration command
func NewMigrateCommand() *cobra.Command {
	var skipSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		Long: `Creates every table, seeds worker types and default settings, and, with the
procedures backend, installs the PostgreSQL stored functions.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			if err := database.AutoMigrate(rt.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(out, "Schema migrated")

			if !skipSeed {
				if err := database.Seed(ctx, rt.db); err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				fmt.Fprintln(out, "Worker types and default settings seeded")
			}

			if rt.pgPool != nil {
				if err := procstore.NewStore(rt.pgPool, nil).Install(ctx); err != nil {
					return fmt.Errorf("failed to install stored functions: %w", err)
				}
				fmt.Fprintln(out, "Stored functions installed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Only migrate tables")
	return cmd
}

// NewSeedCommand creates the command inserting missing worker types and settings
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert missing worker types and default settings",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := database.Seed(ctx, rt.db); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Worker types and default settings seeded")
			return nil
		},
	}
}
