package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcanum/arcanum/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the archive HTTP API in the foreground.

Endpoints under /api/v1:
  GET /messages                      filtered query, grouped by chat
  GET /messages/{id}                 single message
  GET /chats                         chat listing with counts
  GET /chats/{slug}/messages         one chat's messages
  GET /chats/{slug}/adjacent         neighbor lookup by timestamp
  GET /stats                         archive statistics

Set [server] api_key in config.toml to require authentication.
Use Ctrl+C to stop the server gracefully.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	apiServer := api.NewServer(cfg, engine, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	fmt.Printf("arcanum API server started\n")
	fmt.Printf("  Listening: http://%s\n", net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Server.APIPort)))
	fmt.Printf("  Database:  %s (%s)\n", cfg.DatabaseURL(), s.Dialect().Name())
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")

	select {
	case <-cmd.Context().Done():
		fmt.Println("\nShutting down...")
	case err := <-serverErr:
		return fmt.Errorf("API server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown error", "error", err)
	}
	return nil
}
