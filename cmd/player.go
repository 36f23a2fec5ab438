package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/goldenbearlabs/showinsights/internal/insights"
	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/report"
)

// player command flags.
var (
	playerFilter  string
	playerLimit   int
	playerRefresh bool
)

// playerCmd shows one player's aggregated lines, matched fuzzily by name.
var playerCmd = &cobra.Command{
	Use:   "player <name>",
	Short: "Show one player's aggregated lines",
	Long: `Aggregates recent games and prints the batting, pitching and
vs-pitcher lines for the player whose name best matches the query.

Examples:
  showinsights player -u jsmith99 "Soto"
  showinsights player -u jsmith99 degrom --filter online`,
	Args: cobra.ExactArgs(1),
	RunE: runPlayer,
}

func init() {
	playerCmd.Flags().StringVar(&playerFilter, "filter", "all", "game filter: all, online, vscpu, arena, exhibition")
	playerCmd.Flags().IntVar(&playerLimit, "limit", 25, "aggregate at most N games (0 = all)")
	playerCmd.Flags().BoolVar(&playerRefresh, "refresh", false, "refetch logs even when cached")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	query := args[0]

	filter, err := insights.ParseFilter(playerFilter)
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
	resp, err := insights.Aggregate(cmd.Context(), rows, insights.AggregateOptions{
		Filter:      filter,
		Limit:       playerLimit,
		Concurrency: cfg.Fetch.LogConcurrency,
	}, gameLoader(db, client, playerRefresh))
	if err != nil {
		return err
	}

	found := false
	if name := bestMatch(query, hitterNames(resp.Hitters)); name != "" {
		fmt.Fprintf(os.Stdout, "\nBatting: %s\n", name)
		report.PrintHitters(os.Stdout, map[string]*model.HitterAgg{name: resp.Hitters[name]}, 0)
		found = true
	}
	if name := bestMatch(query, pitcherNames(resp.Pitchers)); name != "" {
		fmt.Fprintf(os.Stdout, "\nPitching: %s\n", name)
		report.PrintPitchers(os.Stdout, map[string]*model.PitcherAgg{name: resp.Pitchers[name]}, 0)
		found = true
	}
	if name := bestMatch(query, vsPitcherNames(resp.VsPitcher)); name != "" {
		fmt.Fprintf(os.Stdout, "\nYour batting vs: %s\n", name)
		report.PrintVsPitcher(os.Stdout, map[string]*model.VsPitcherAgg{name: resp.VsPitcher[name]}, 0)
		found = true
	}
	if !found {
		return fmt.Errorf("no player matching %q in the aggregated games", query)
	}
	return nil
}

// bestMatch picks the closest name by normalized Levenshtein similarity,
// requiring at least 0.5 or a substring hit.
func bestMatch(query string, names []string) string {
	q := strings.ToLower(query)
	best := ""
	bestScore := -1.0
	for _, name := range names {
		n := strings.ToLower(name)
		score := 0.0
		if strings.Contains(n, q) {
			score = 1.0
		} else {
			distance := fuzzy.LevenshteinDistance(q, n)
			maxLen := len(q)
			if len(n) > maxLen {
				maxLen = len(n)
			}
			if maxLen == 0 {
				continue
			}
			score = 1 - float64(distance)/float64(maxLen)
			if score < 0.5 {
				continue
			}
		}
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	return best
}

func hitterNames(m map[string]*model.HitterAgg) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	return names
}

func pitcherNames(m map[string]*model.PitcherAgg) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	return names
}

func vsPitcherNames(m map[string]*model.VsPitcherAgg) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	return names
}
