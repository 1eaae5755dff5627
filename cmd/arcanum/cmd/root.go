package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanum/arcanum/internal/config"
	"github.com/arcanum/arcanum/internal/query"
	"github.com/arcanum/arcanum/internal/store"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "arcanum",
	Short: "Message archive query tool",
	Long: `arcanum stores chat message archives and answers filtered queries
over them: free-text search, tag search, and date-range filters, scoped
globally or to a single chat.

The archive lives in SQLite by default; point database_url at a
postgres:// URL to use PostgreSQL instead.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openEngine opens the configured database, applies the schema, and
// returns a query engine over it. The caller owns the store.
func openEngine(ctx context.Context) (*store.Store, *query.Engine, error) {
	s, err := store.Open(cfg.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := s.InitSchema(ctx); err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}
	return s, query.New(s.DB(), s.Dialect(), logger), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.arcanum/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
