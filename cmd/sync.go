package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"vincit.fi/photo-frame/backend"
)

var syncCmd = &cobra.Command{
	Use:   "sync [dir]",
	Short: "Copy JSON categories into the database",
	Long: `Sync replays the JSON category files into the SQL backend. It uses
storage.legacy_categories_dir unless a directory is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		result, err := backend.SyncLegacyCategories(cfg, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d, failed %d\n", result.Saved, result.Failed)
		return nil
	},
}
