package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/brogergvhs/srcforge/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings profiles with their store and API address",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := config.ListConfigs()
		if err != nil {
			return fmt.Errorf("cannot read profiles directory: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "LABEL\tDB\tLISTEN\tACTIVE")

		for _, p := range list {
			active := ""
			if p.Active {
				active = "yes"
			}

			if p.Err != nil {
				_, _ = fmt.Fprintf(w, "%s\t(invalid: %v)\t\t%s\n", p.Label, p.Err, active)
				continue
			}

			db, listen := p.Settings.DBPath, p.Settings.Listen
			if db == "" {
				db = config.DefaultDBPath() + " (default)"
			}
			if listen == "" {
				listen = "(default)"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Label, db, listen, active)
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

var settingsSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different settings profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			picked, err := pickProfile()
			if err != nil {
				return err
			}
			label = picked
		}

		if err := config.SwitchConfig(label); err != nil {
			return err
		}

		fmt.Println("Switched to:", label)
		return nil
	},
}

var settingsEditCmd = &cobra.Command{
	Use:   "edit [label]",
	Short: "Open the current or the given profile in $EDITOR and check the result",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			current, err := config.CurrentLabel()
			if err != nil {
				return fmt.Errorf("failed to get current profile label: %w", err)
			}
			label = current
		}

		path, err := config.ConfigPathByLabel(label)
		if err != nil {
			return err
		}

		for {
			if err := runEditor(path); err != nil {
				return err
			}

			err := config.ValidateProfile(label)
			if err == nil {
				fmt.Printf("Profile %q is valid.\n", label)
				return nil
			}

			fmt.Println("The profile does not load:", err)
			if !confirm("Edit it again?") {
				return fmt.Errorf("profile %q left invalid", label)
			}
		}
	},
}

func runEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	c := exec.Command(editor, path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// pickProfile offers the loadable profiles for selection.
func pickProfile() (string, error) {
	list, err := config.ListConfigs()
	if err != nil {
		return "", err
	}

	var labels, items []string
	for _, p := range list {
		if p.Err != nil {
			continue
		}

		item := fmt.Sprintf("%s  (%s)", p.Label, p.Settings.DBPath)
		if p.Active {
			item += "  active"
		}
		labels = append(labels, p.Label)
		items = append(items, item)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no usable profiles, run `srcforge settings init`")
	}

	prompt := promptui.Select{
		Label: "Select profile",
		Items: items,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled")
	}

	return labels[idx], nil
}

func init() {
	settingsCmd.AddCommand(settingsListCmd, settingsSwitchCmd, settingsEditCmd)
}
