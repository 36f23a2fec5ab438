package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Persistent flags shared by every subcommand.
var (
	dbPath   string
	username string
	platform string
	mode     string
)

var rootCmd = &cobra.Command{
	Use:   "showinsights",
	Short: "MLB The Show game-log insights tool",
	Long:  "Fetch your game history from the companion-app API, parse the play-by-play logs and compute aggregate statistics, splits and insights.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".showinsights", "insights.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "companion-app username (required)")
	rootCmd.PersistentFlags().StringVar(&platform, "platform", "psn", "platform (psn, xbl, steam)")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "history mode filter passed to the API")
	_ = rootCmd.MarkPersistentFlagRequired("username")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(splitsCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(dropCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
