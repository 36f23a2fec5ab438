package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldenbearlabs/showinsights/internal/insights"
	"github.com/goldenbearlabs/showinsights/internal/items"
	"github.com/goldenbearlabs/showinsights/internal/report"
)

// splits command flags.
var (
	splitsFilter       string
	splitsLimit        int
	splitsRefresh      bool
	splitsRefreshItems bool

	splitVsHand     string
	splitBatterSide string
	splitInningMin  int
	splitInningMax  int
	splitOuts       int
	splitDifficulty string
	splitOutlier    bool
	splitMinVelo    float64
	splitMinHeight  int
	splitMaxHeight  int
)

// splitsCmd recomputes batting splits over annotated plate appearances.
var splitsCmd = &cobra.Command{
	Use:   "splits",
	Short: "Batting splits by pitcher hand, inning, outs and more",
	Long: `Aggregates recent games with per-plate-appearance annotations from
the player items catalog, then recomputes a batting line for the
requested split. Switch hitters are resolved against each specific
opposing pitcher's throwing hand.

Examples:
  showinsights splits -u jsmith99 --vs-hand L
  showinsights splits -u jsmith99 --outs 2 --inning-min 7
  showinsights splits -u jsmith99 --outlier --min-velo 98`,
	Args: cobra.NoArgs,
	RunE: runSplits,
}

func init() {
	splitsCmd.Flags().StringVar(&splitsFilter, "filter", "all", "game filter: all, online, vscpu, arena, exhibition")
	splitsCmd.Flags().IntVar(&splitsLimit, "limit", 25, "aggregate at most N games (0 = all)")
	splitsCmd.Flags().BoolVar(&splitsRefresh, "refresh", false, "refetch logs even when cached")
	splitsCmd.Flags().BoolVar(&splitsRefreshItems, "refresh-items", false, "refetch the items catalog even when fresh")

	splitsCmd.Flags().StringVar(&splitVsHand, "vs-hand", "", "opposing pitcher throws R or L")
	splitsCmd.Flags().StringVar(&splitBatterSide, "batter-side", "", "resolved batter side R or L")
	splitsCmd.Flags().IntVar(&splitInningMin, "inning-min", 0, "earliest inning (0 = any)")
	splitsCmd.Flags().IntVar(&splitInningMax, "inning-max", 0, "latest inning (0 = any)")
	splitsCmd.Flags().IntVar(&splitOuts, "outs", -1, "outs before the plate appearance (-1 = any)")
	splitsCmd.Flags().StringVar(&splitDifficulty, "difficulty", "", "hitting difficulty label")
	splitsCmd.Flags().BoolVar(&splitOutlier, "outlier", false, "only vs pitchers with the outlier quirk")
	splitsCmd.Flags().Float64Var(&splitMinVelo, "min-velo", 0, "only vs pitchers with at least this max velocity")
	splitsCmd.Flags().IntVar(&splitMinHeight, "min-height", 0, "batter height at least N inches")
	splitsCmd.Flags().IntVar(&splitMaxHeight, "max-height", 0, "batter height at most N inches")
}

func runSplits(cmd *cobra.Command, args []string) error {
	filter, err := insights.ParseFilter(splitsFilter)
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

	cache := items.NewCache(client, db, time.Duration(cfg.Fetch.ItemsTTLMinutes)*time.Minute)
	attrs, err := cache.Index(cmd.Context(), splitsRefreshItems)
	if err != nil {
		return fmt.Errorf("items catalog: %w", err)
	}

	rows, err := historyRows(cmd.Context(), db, client, false)
	if err != nil {
		return err
	}
	resp, err := insights.Aggregate(cmd.Context(), rows, insights.AggregateOptions{
		Filter:        filter,
		Limit:         splitsLimit,
		Concurrency:   cfg.Fetch.LogConcurrency,
		IncludeSplits: true,
		Attributes:    attrs,
	}, gameLoader(db, client, splitsRefresh))
	if err != nil {
		return err
	}

	sf := insights.SplitFilter{
		PitcherHand: strings.ToUpper(splitVsHand),
		BatterSide:  strings.ToUpper(splitBatterSide),
		InningMin:   splitInningMin,
		InningMax:   splitInningMax,
		Outs:        splitOuts,
		Difficulty:  splitDifficulty,
		OutlierOnly: splitOutlier,
		MinVelocity: splitMinVelo,
		MinHeightIn: splitMinHeight,
		MaxHeightIn: splitMaxHeight,
	}
	line := insights.FilterSplits(resp.SplitBundle, sf)

	fmt.Fprintf(os.Stdout, "\nSplit over %d games\n\n", resp.GamesAggregated)
	report.PrintSplitLine(os.Stdout, splitLabel(sf), line)
	return nil
}

// splitLabel names the active constraints, "overall" when there are none.
func splitLabel(f insights.SplitFilter) string {
	var parts []string
	if f.PitcherHand != "" {
		parts = append(parts, "vs "+f.PitcherHand+"HP")
	}
	if f.BatterSide != "" {
		parts = append(parts, "batting "+f.BatterSide)
	}
	if f.InningMin > 0 || f.InningMax > 0 {
		parts = append(parts, fmt.Sprintf("innings %d-%d", f.InningMin, f.InningMax))
	}
	if f.Outs >= 0 {
		parts = append(parts, fmt.Sprintf("%d out", f.Outs))
	}
	if f.Difficulty != "" {
		parts = append(parts, f.Difficulty)
	}
	if f.OutlierOnly {
		parts = append(parts, "outliers")
	}
	if f.MinVelocity > 0 {
		parts = append(parts, fmt.Sprintf(">=%.0f mph", f.MinVelocity))
	}
	if f.MinHeightIn > 0 || f.MaxHeightIn > 0 {
		parts = append(parts, fmt.Sprintf("height %d-%d in", f.MinHeightIn, f.MaxHeightIn))
	}
	if len(parts) == 0 {
		return "overall"
	}
	return strings.Join(parts, ", ")
}
