package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"vincit.fi/photo-frame/backend"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the latest photos of the feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := backend.DownloadFeed(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d, skipped %d, failed %d\n",
			result.Downloaded, result.Skipped, result.Failed)
		return nil
	},
}
