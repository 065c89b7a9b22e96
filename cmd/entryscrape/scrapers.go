package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/entryscrape/internal/scrapers"
)

func init() {
	rootCmd.AddCommand(scrapersCmd)
}

var scrapersCmd = &cobra.Command{
	Use:   "scrapers",
	Short: "List scrapers in registration order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := scraperInfos(cfg.DisabledScrapers)
		if humanOutput {
			for _, info := range infos {
				state := "enabled"
				if !info.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-26s %s\n", info.Name, state)
			}
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), infos)
	},
}

func scraperInfos(disabled []string) []ScraperInfo {
	off := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		off[name] = true
	}
	names := scrapers.Names()
	infos := make([]ScraperInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, ScraperInfo{Name: name, Enabled: !off[name]})
	}
	return infos
}
