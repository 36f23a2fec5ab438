package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goldenbearlabs/showinsights/internal/insights"
	"github.com/goldenbearlabs/showinsights/internal/report"
)

// history command flags.
var (
	historyLimit   int
	historyRefresh bool
)

// historyCmd fetches and prints the user's game history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Fetch and show the game history",
	Long: `Fetches every page of the user's game history from the companion-app
API, normalizes the rows and stores them locally.

Examples:
  showinsights history -u jsmith99
  showinsights history -u jsmith99 --refresh --limit 50`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show at most N games (0 = all)")
	historyCmd.Flags().BoolVar(&historyRefresh, "refresh", false, "refetch from the API even when cached")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	client := newAPIClient(cfg)
	rows, err := historyRows(cmd.Context(), db, client, historyRefresh)
	if err != nil {
		return err
	}

	// Recount from the stored rows so cached and fresh runs print the same.
	report.PrintHistorySummary(os.Stdout, username, insights.Summarize(rows))

	shown := rows
	if historyLimit > 0 && len(shown) > historyLimit {
		shown = shown[:historyLimit]
	}
	report.PrintHistoryTable(os.Stdout, shown)
	return nil
}
