package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/brogergvhs/srcforge/internal/config"
	"github.com/brogergvhs/srcforge/internal/providers/custom"

	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage stored source configs",
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		records, err := a.store.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tNAME\tLANG\tTYPE\tBASE URL\tUPDATED")

		for _, r := range records {
			kind := "images"
			if r.Config.IsNovelContent {
				kind = "novel"
			}
			if r.Config.Delegated() {
				kind += fmt.Sprintf(" (based on %d)", *r.Config.BasedOnExternalSourceID)
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				r.Config.ID, r.Config.Name, r.Config.Language, kind, r.Config.BaseURL,
				r.UpdatedAt.Format("2006-01-02 15:04"))
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <file|->",
	Short: "Import a source config from a JSON file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		cfg, err := a.store.Import(cmd.Context(), data)
		if err != nil {
			return err
		}

		fmt.Printf("Added %q with id %d\n", cfg.Name, cfg.ID)
		return nil
	},
}

var sourceUpdateCmd = &cobra.Command{
	Use:   "update <id> <file|->",
	Short: "Replace a stored source config",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source id %q", args[0])
		}

		data, err := readInput(args[1])
		if err != nil {
			return err
		}

		cfg, err := custom.Import(data)
		if err != nil {
			return err
		}
		if cfg.ID == 0 {
			cfg.ID = id
		}
		if cfg.ID != id {
			return fmt.Errorf("config id %d does not match %d", cfg.ID, id)
		}

		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.Update(cmd.Context(), cfg); err != nil {
			return err
		}

		fmt.Printf("Updated %q\n", cfg.Name)
		return nil
	},
}

var flagExportOut string

var sourceExportCmd = &cobra.Command{
	Use:     "export <id>",
	Aliases: []string{"show"},
	Short:   "Print a stored source config as JSON",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source id %q", args[0])
		}

		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		data, err := a.store.Export(cmd.Context(), id)
		if err != nil {
			return err
		}

		return writeOutput(flagExportOut, data)
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a stored source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source id %q", args[0])
		}

		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.Delete(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Printf("Removed source %d\n", id)
		return nil
	},
}

// readInput reads a file, or stdin for "-".
func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(name)
}

// writeOutput writes data to a file, or stdout when name is empty.
func writeOutput(name string, data []byte) error {
	if name == "" {
		_, err := fmt.Println(string(data))
		return err
	}

	if err := os.WriteFile(name, append(data, '\n'), 0o644); err != nil {
		return err
	}

	fmt.Println("Written to:", name)
	return nil
}

func init() {
	sourceExportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "write to a file instead of stdout")

	sourceCmd.AddCommand(sourceListCmd, sourceAddCmd, sourceUpdateCmd, sourceExportCmd, sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}
