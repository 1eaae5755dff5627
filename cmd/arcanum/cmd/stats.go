package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	Long: `Show aggregate statistics for the whole archive: chat and message
counts, how many messages carry media, the most active chat, and the
most recent message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := engine.ComputeStats(cmd.Context())
		if err != nil {
			return err
		}

		if statsJSON {
			output := map[string]interface{}{
				"total_chats":    stats.TotalChats,
				"total_messages": stats.TotalMessages,
				"media_messages": stats.MediaMessages,
			}
			if stats.MostActive != nil {
				output["most_active_chat"] = map[string]interface{}{
					"id":            stats.MostActive.ID,
					"name":          stats.MostActive.Name,
					"message_count": stats.MostActive.MessageCount,
				}
			}
			if stats.LastMessage != nil {
				output["last_message"] = map[string]interface{}{
					"id":        stats.LastMessage.ID,
					"timestamp": stats.LastMessage.Timestamp.Format(time.RFC3339),
				}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(output)
		}

		fmt.Printf("Chats:          %d\n", stats.TotalChats)
		fmt.Printf("Messages:       %d\n", stats.TotalMessages)
		fmt.Printf("With media:     %d\n", stats.MediaMessages)
		if stats.MostActive != nil {
			fmt.Printf("Most active:    %s (%d messages)\n",
				stats.MostActive.Name, stats.MostActive.MessageCount)
		}
		if stats.LastMessage != nil {
			fmt.Printf("Last message:   %s (id %d)\n",
				stats.LastMessage.Timestamp.Format("2006-01-02 15:04:05"),
				stats.LastMessage.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
}
