package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	infradb "github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/pkg/db"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "site-moderation",
	Short: "Site moderation gate for the publishing network",
	Long: `site-moderation serves the sites directory and holds sites created by
regular users in a pending queue until a super admin approves or declines them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level (%s): %w", logLevel, err)
		}
		slog.SetLogLoggerLevel(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		Init()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the outbox poller",
	RunE: func(cmd *cobra.Command, args []string) error {
		Init()
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := db.NewPool(ctx, db.NewConfig())
		if err != nil {
			return err
		}
		defer pool.Close()
		if err = infradb.Migrate(ctx, pool); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}

// Execute runs the command line, serving by default.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
