package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanum/arcanum/internal/store"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Initialize the archive database schema",
	Long: `Create the archive tables and indexes if they do not already exist.
Safe to run repeatedly; existing data is never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := cfg.DatabaseURL()
		s, err := store.Open(dsn)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.InitSchema(cmd.Context()); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}

		fmt.Printf("Database initialized (%s dialect).\n", s.Dialect().Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}
