package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce bool
	dropUser  bool
)

// dropCmd deletes cached data.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the local cache database",
	Long:  "Permanently delete the SQLite cache. With --user, only the current user's history and parsed logs are removed and the items snapshot is kept.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().BoolVar(&dropUser, "user", false, "only drop the current user's rows")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		if dropUser {
			fmt.Fprintf(os.Stderr, "This will delete all cached data for %q in: %s\n", username, dbPath)
		} else {
			fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		}
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	if dropUser {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.DropUser(username); err != nil {
			return fmt.Errorf("drop user rows: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Dropped cached data for %q\n", username)
		return nil
	}

	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
