package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcanum/arcanum/internal/filter"
	"github.com/arcanum/arcanum/internal/query"
)

var (
	searchTag       string
	searchDateMode  string
	searchStartDate string
	searchEndDate   string
	searchChat      string
	searchSort      string
	searchDirection string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search and filter archived messages",
	Long: `Search the message archive by free text, tag, or date range.

A bare query performs a case-insensitive substring search. Prefixing the
query with '#' searches tags instead (exact, case-sensitive). Date
filters use --date-mode with --start (and --end for 'between'):

  on       messages on one calendar day
  before   messages strictly before a day's midnight
  after    messages after a day's last second
  between  messages from the start day through the end day

Examples:
  arcanum search "deploy window"
  arcanum search '#urgent'
  arcanum search --tag urgent --chat ops-room
  arcanum search --date-mode between --start 2024-03-01 --end 2024-03-07
  arcanum search hello --sort timestamp --direction desc`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var queryStr string
		if len(args) > 0 {
			queryStr = args[0]
		}

		desc, err := filter.Parse(filter.Params{
			Query:     queryStr,
			Tag:       searchTag,
			DateMode:  searchDateMode,
			StartDate: searchStartDate,
			EndDate:   searchEndDate,
			ChatSlug:  searchChat,
		})
		if err != nil {
			return err
		}

		spec, err := messageSortSpec(searchSort, searchDirection)
		if err != nil {
			return err
		}

		s, engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		rows, err := engine.RunFilteredQuery(cmd.Context(), desc, spec)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("No messages found.")
			return nil
		}

		if searchJSON {
			return outputMessagesJSON(rows)
		}
		if desc.IsGlobal() {
			outputGroupedTable(query.GroupByChatSlug(rows))
			return nil
		}
		outputMessagesTable(rows)
		return nil
	},
}

// messageSortSpec resolves --sort/--direction flags for message listings.
func messageSortSpec(sortName, direction string) (query.SortSpec, error) {
	spec := query.DefaultMessageSort()
	if sortName != "" {
		field, ok := query.ParseSortField(sortName)
		if !ok {
			return spec, fmt.Errorf("unknown sort field %q", sortName)
		}
		spec.Field = field
	}
	spec.Direction = query.ParseSortDirection(direction)
	return spec, nil
}

func outputMessagesTable(rows []query.MessageRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tTEXT\tTAGS")
	fmt.Fprintln(w, "──\t─────────\t────\t────")

	for _, m := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			m.ID,
			m.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(strings.ReplaceAll(m.Text, "\n", " "), 60),
			strings.Join(m.Tags, ","),
		)
	}

	w.Flush()
	fmt.Printf("\nShowing %d messages\n", len(rows))
}

func outputGroupedTable(grouped query.GroupedResult) {
	for _, g := range grouped.Groups {
		fmt.Printf("%s (%s) — %d messages\n", g.Name, g.Slug, len(g.Messages))
		outputMessagesTable(g.Messages)
		fmt.Println()
	}
	fmt.Printf("Total: %d messages in %d chats\n", grouped.Total, len(grouped.Groups))
}

func outputMessagesJSON(rows []query.MessageRow) error {
	output := make([]map[string]interface{}, len(rows))
	for i, m := range rows {
		output[i] = map[string]interface{}{
			"id":        m.ID,
			"msg_id":    m.MsgID,
			"timestamp": m.Timestamp.Format(time.RFC3339),
			"text":      m.Text,
			"tags":      m.Tags,
			"media":     m.Media,
			"chat_slug": m.ChatSlug,
			"chat_name": m.ChatName,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "Search by tag (exact, case-sensitive)")
	searchCmd.Flags().StringVar(&searchDateMode, "date-mode", "", "Date filter mode: on, before, after, between")
	searchCmd.Flags().StringVar(&searchStartDate, "start", "", "Start date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchEndDate, "end", "", "End date (YYYY-MM-DD, 'between' only)")
	searchCmd.Flags().StringVar(&searchChat, "chat", "", "Limit to one chat by slug")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "Sort field: timestamp, msg_id")
	searchCmd.Flags().StringVar(&searchDirection, "direction", "", "Sort direction: asc, desc")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}
