package cmd

import (
	"fmt"
	"os"

	"github.com/brogergvhs/srcforge/internal/config"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and manage the settings profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			DBPath:       flagDBPath,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded settings from:\n  %s\n\n", used)
		s.Print(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}
