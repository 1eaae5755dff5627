package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcanum/arcanum/internal/query"
)

var (
	adjacentTS        string
	adjacentDirection string
)

// adjacentTimeLayouts are accepted encodings for the --ts flag.
var adjacentTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var adjacentCmd = &cobra.Command{
	Use:   "adjacent <chat-slug>",
	Short: "Find the message before or after a timestamp in one chat",
	Long: `Find the single nearest message strictly before or after a reference
timestamp within one chat. The comparison is strict, so a message is
never its own neighbor even when timestamps collide.

Examples:
  arcanum adjacent ops-room --ts "2024-03-05 10:00:00" --direction previous
  arcanum adjacent ops-room --ts 2024-03-05T10:00:00Z --direction next`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, ok := query.ParseDirection(adjacentDirection)
		if !ok {
			return fmt.Errorf("direction must be 'previous' or 'next', got %q", adjacentDirection)
		}

		var ref time.Time
		var err error
		for _, layout := range adjacentTimeLayouts {
			if ref, err = time.ParseInLocation(layout, adjacentTS, time.UTC); err == nil {
				break
			}
		}
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: use RFC 3339 or 'YYYY-MM-DD HH:MM:SS'", adjacentTS)
		}

		s, engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		msg, err := engine.FindAdjacent(cmd.Context(), args[0], ref, dir)
		if err != nil {
			return err
		}
		if msg == nil {
			fmt.Printf("No %s message.\n", dir)
			return nil
		}

		fmt.Printf("ID:        %d\n", msg.ID)
		fmt.Printf("Timestamp: %s\n", msg.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("Chat:      %s (%s)\n", msg.ChatName, msg.ChatSlug)
		fmt.Printf("Text:      %s\n", msg.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adjacentCmd)
	adjacentCmd.Flags().StringVar(&adjacentTS, "ts", "", "Reference timestamp (required)")
	adjacentCmd.Flags().StringVar(&adjacentDirection, "direction", "", "Direction: previous or next (required)")
	_ = adjacentCmd.MarkFlagRequired("ts")
	_ = adjacentCmd.MarkFlagRequired("direction")
}
