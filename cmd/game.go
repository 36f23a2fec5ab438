package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/report"
)

var gameRefresh bool

// gameCmd shows one game's parsed log and box score.
var gameCmd = &cobra.Command{
	Use:   "game <id>",
	Short: "Show one game's box score and parsed log",
	Long: `Looks up a game from the stored history, fetches and parses its
play-by-play log (cache first) and prints the box score plus the
strikeout taxonomy for both sides.`,
	Args: cobra.ExactArgs(1),
	RunE: runGame,
}

func init() {
	gameCmd.Flags().BoolVar(&gameRefresh, "refresh", false, "refetch the log even when cached")
}

func runGame(cmd *cobra.Command, args []string) error {
	id := args[0]

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
	var row *model.GameRow
	for i := range rows {
		if rows[i].ID == id {
			row = &rows[i]
			break
		}
	}
	if row == nil {
		return fmt.Errorf("game %s not found in history for %s", id, username)
	}

	lg, err := gameLoader(db, client, gameRefresh)(cmd.Context(), *row)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nGame %s  |  %s", lg.Log.ID, row.Mode)
	if row.DateISO != "" {
		fmt.Fprintf(os.Stdout, "  |  %s", row.DateISO[:10])
	}
	if lg.Log.Ballpark != "" {
		fmt.Fprintf(os.Stdout, "  |  %s", lg.Log.Ballpark)
	}
	fmt.Fprintln(os.Stdout)
	if lg.Log.HittingDifficulty != "" || lg.Log.PitchingDifficulty != "" {
		fmt.Fprintf(os.Stdout, "Hitting difficulty: %s  |  Pitching difficulty: %s\n",
			orDash(lg.Log.HittingDifficulty), orDash(lg.Log.PitchingDifficulty))
	}

	report.PrintBoxScore(os.Stdout, lg.YouBox, lg.OppBox)
	report.PrintStrikeoutBreakdown(os.Stdout, "YOUR HITTERS STRUCK OUT", lg.Log.Batting.Strikeouts)
	report.PrintStrikeoutBreakdown(os.Stdout, "YOUR PITCHERS' STRIKEOUTS", lg.Log.Pitching.Strikeouts)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
