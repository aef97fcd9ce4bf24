package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"strings"
	"vincit.fi/photo-frame/backend"
)

var labelsCmd = &cobra.Command{
	Use:   "labels <file>...",
	Short: "Detect labels and save them as tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := backend.TagWithLabels(cmd.Context(), cfg, args)
		for _, path := range args {
			if tags, ok := result[path]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, strings.Join(tags, ", "))
			}
		}
		return err
	},
}
