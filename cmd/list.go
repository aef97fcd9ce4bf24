package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"strings"
	"vincit.fi/photo-frame/backend"
)

var showCategories bool

var listCmd = &cobra.Command{
	Use:   "list [categories]...",
	Short: "List the photos in categories",
	Long:  `List prints the photos in the given categories, or every photo when none are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		photos, tags, err := backend.ListPhotos(cfg, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if showCategories {
			fmt.Fprintf(out, "Categories: %s\n", strings.Join(tags, ", "))
		}
		for _, photo := range photos {
			fmt.Fprintf(out, "%s\t%s\n", photo.Title(), photo.Path())
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&showCategories, "categories", false, "also print every known category")
}
