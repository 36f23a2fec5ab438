package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goldenbearlabs/showinsights/internal/insights"
	"github.com/goldenbearlabs/showinsights/internal/report"
)

// stats command flags.
var (
	statsFilter      string
	statsLimit       int
	statsConcurrency int
	statsRefresh     bool
	statsTop         int
)

// statsCmd aggregates parsed logs into team, player and insight tables.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics across recent games",
	Long: `Selects games from the stored history, loads their parsed logs
(cache first) and folds them into team lines, per-player leaderboards,
vs-pitcher lines and situational insights.

Examples:
  showinsights stats -u jsmith99
  showinsights stats -u jsmith99 --filter vscpu --limit 50 --top 5`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFilter, "filter", "all", "game filter: all, online, vscpu, arena, exhibition")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 25, "aggregate at most N games (0 = all)")
	statsCmd.Flags().IntVar(&statsConcurrency, "concurrency", 0, "log fetch concurrency (0 = default)")
	statsCmd.Flags().BoolVar(&statsRefresh, "refresh", false, "refetch logs even when cached")
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "leaderboard rows per table (0 = all)")
}

func runStats(cmd *cobra.Command, args []string) error {
	filter, err := insights.ParseFilter(statsFilter)
	if err != nil {
		return err
	}
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

	rows, err := historyRows(cmd.Context(), db, client, false)
	if err != nil {
		return err
	}

	concurrency := statsConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Fetch.LogConcurrency
	}
	resp, err := insights.Aggregate(cmd.Context(), rows, insights.AggregateOptions{
		Filter:      filter,
		Limit:       statsLimit,
		Concurrency: concurrency,
	}, gameLoader(db, client, statsRefresh))
	if err != nil {
		return err
	}

	report.PrintTeamStats(os.Stdout, resp)
	report.PrintInsights(os.Stdout, resp.YourInsights)

	fmt.Fprintln(os.Stdout, "\nYour hitters")
	report.PrintHitters(os.Stdout, resp.Hitters, statsTop)
	fmt.Fprintln(os.Stdout, "\nYour pitchers")
	report.PrintPitchers(os.Stdout, resp.Pitchers, statsTop)
	fmt.Fprintln(os.Stdout, "\nVs opposing pitchers")
	report.PrintVsPitcher(os.Stdout, resp.VsPitcher, statsTop)
	return nil
}
