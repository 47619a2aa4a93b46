package main

import (
	"context"
	"fmt"
	"os"

	"dadjoke/internal/config"
	"dadjoke/internal/database"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "migrator",
	Short: "Manage the dadjoke database schema",
	Long: `Runs the embedded goose migrations against the database.

Connection settings come from DATABASE_URL or
DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME.`,
	SilenceUsage: true,
}

func init() {
	for _, c := range []struct {
		use   string
		short string
	}{
		{"up", "Migrate the database to the most recent version available"},
		{"up-by-one", "Migrate the database up by 1"},
		{"down", "Roll back the version by 1"},
		{"redo", "Re-run the latest migration"},
		{"reset", "Roll back all migrations"},
		{"status", "Dump the migration status"},
		{"version", "Print the current version"},
	} {
		rootCmd.AddCommand(gooseCommand(c.use, c.short))
	}
}

func gooseCommand(command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), command)
		},
	}
}

func run(ctx context.Context, command string) error {
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(ctx, dbCfg.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, command); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
