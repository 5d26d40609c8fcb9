package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/srcforge/internal/config"

	"github.com/spf13/cobra"
)

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default settings profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Default settings:")
		config.DefaultSettings().Print(os.Stdout)
		fmt.Println()

		if !confirm(fmt.Sprintf("Create the Default profile in %s?", config.ConfigsDir())) {
			fmt.Println("Aborted.")
			return nil
		}

		path, err := config.InitDefaultConfig()
		if errors.Is(err, os.ErrExist) {
			fmt.Println("Profile already exists at:")
			fmt.Println("  ", path)
			fmt.Println("Use `srcforge settings reset` to recreate it.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		fmt.Println("Profile created at:", path)
		fmt.Println("This profile is now active (label: Default).")
		return nil
	},
}

// confirm asks a yes/no question on stdin, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	reader := bufio.NewReader(os.Stdin)
	resp, _ := reader.ReadString('\n')
	resp = strings.TrimSpace(strings.ToLower(resp))

	return resp == "y" || resp == "yes"
}

func init() {
	settingsCmd.AddCommand(settingsInitCmd)
}
