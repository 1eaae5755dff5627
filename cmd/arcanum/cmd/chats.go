package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcanum/arcanum/internal/query"
)

var (
	chatsSort      string
	chatsDirection string
	chatsJSON      bool
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List chats with message counts",
	Long: `List every chat in the archive with its message count and the
timestamp of its most recent message.

Sortable by name, message_count, or last_message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := query.DefaultChatSort()
		if chatsSort != "" {
			field, ok := query.ParseSortField(chatsSort)
			if !ok {
				return fmt.Errorf("unknown sort field %q", chatsSort)
			}
			spec.Field = field
		}
		spec.Direction = query.ParseSortDirection(chatsDirection)

		s, engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		chats, err := engine.ListChats(cmd.Context(), spec)
		if err != nil {
			return err
		}

		if len(chats) == 0 {
			fmt.Println("No chats in archive.")
			return nil
		}

		if chatsJSON {
			return outputChatsJSON(chats)
		}
		outputChatsTable(chats)
		return nil
	},
}

func outputChatsTable(chats []query.ChatSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tMESSAGES\tLAST MESSAGE")
	fmt.Fprintln(w, "────\t────\t────────\t────────────")

	for _, c := range chats {
		last := "-"
		if !c.LastMessageAt.IsZero() {
			last = c.LastMessageAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.Slug, truncate(c.Name, 40), c.MessageCount, last)
	}

	w.Flush()
	fmt.Printf("\nShowing %d chats\n", len(chats))
}

func outputChatsJSON(chats []query.ChatSummary) error {
	output := make([]map[string]interface{}, len(chats))
	for i, c := range chats {
		entry := map[string]interface{}{
			"id":            c.ID,
			"slug":          c.Slug,
			"name":          c.Name,
			"message_count": c.MessageCount,
		}
		if !c.LastMessageAt.IsZero() {
			entry["last_message_at"] = c.LastMessageAt.Format(time.RFC3339)
		}
		output[i] = entry
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func init() {
	rootCmd.AddCommand(chatsCmd)
	chatsCmd.Flags().StringVar(&chatsSort, "sort", "", "Sort field: name, message_count, last_message")
	chatsCmd.Flags().StringVar(&chatsDirection, "direction", "", "Sort direction: asc, desc")
	chatsCmd.Flags().BoolVar(&chatsJSON, "json", false, "Output as JSON")
}
