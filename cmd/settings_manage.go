package cmd

import (
	"fmt"

	"github.com/brogergvhs/srcforge/internal/config"

	"github.com/spf13/cobra"
)

var settingsNewCmd = &cobra.Command{
	Use:   "new <label>",
	Short: "Create a profile with default values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateEmptyConfig(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created new profile: %s\n", path)
		return nil
	},
}

var settingsAddCmd = &cobra.Command{
	Use:   "add <label> <file>",
	Short: "Import an existing YAML file as a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.AddConfig(args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Added profile %q\n", args[0])
		return nil
	},
}

var settingsRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RenameConfig(args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Renamed profile %q to %q\n", args[0], args[1])
		return nil
	},
}

var forceRemove bool

var settingsRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]

		active, _ := config.CurrentLabel()
		if label == active && !forceRemove {
			if !confirm(fmt.Sprintf("Profile %q is currently active. Remove it anyway?", label)) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		switched, err := config.RemoveConfig(label)
		if err != nil {
			return err
		}

		fmt.Printf("Removed profile %q\n", label)
		if switched {
			fmt.Println("Switched back to:", config.DefaultLabel)
		}
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active profile to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		activePath, err := config.ActiveConfigPath()
		if err != nil {
			return err
		}

		if err := config.SaveYAML(config.DefaultSettings(), activePath); err != nil {
			return err
		}

		fmt.Printf("Reset active profile: %s\n", activePath)
		return nil
	},
}

func init() {
	settingsRemoveCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "remove the active profile without asking")

	settingsCmd.AddCommand(settingsNewCmd, settingsAddCmd, settingsRenameCmd, settingsRemoveCmd, settingsResetCmd)
}
