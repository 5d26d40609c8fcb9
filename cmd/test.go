package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/brogergvhs/srcforge/internal/config"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/brogergvhs/srcforge/internal/ui"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var errTestFailed = errors.New("self-test failed")

var testCmd = &cobra.Command{
	Use:   "test [source-id]",
	Short: "Run the self-test of a source: popular, details, chapters and content",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		id := ""
		if len(args) == 1 {
			id = args[0]
		} else if id, err = pickSource(a); err != nil {
			return err
		}

		src, err := a.source(id)
		if err != nil {
			return err
		}

		pm := ui.NewProgressManager()
		ph := pm.Register(src.Name(), "steps", false)
		ph.SetTotal(4)

		done := 0
		report := custom.RunTest(cmd.Context(), src, custom.WithStepHook(func(s custom.TestStep) {
			done++
			ph.Note(s.Name)
			ph.Update(done, 4, 0)
		}))
		ph.MarkDone()
		pm.Close()

		if flagJSON {
			if err := printJSON(report); err != nil {
				return err
			}
		} else {
			printReport(report)
		}

		if !report.OverallSuccess {
			return errTestFailed
		}
		return nil
	},
}

func printReport(r custom.TestReport) {
	fmt.Printf("\nSelf-test of %s (run %s)\n\n", r.SourceName, r.RunID)

	for _, s := range r.Steps {
		mark := "ok  "
		switch {
		case s.Skipped:
			mark = "skip"
		case !s.Success:
			mark = "FAIL"
		}

		fmt.Printf("[%s] %-9s %s\n", mark, s.Name, s.Message)
		for k, v := range s.Data {
			fmt.Printf("         %s: %s\n", k, v)
		}
	}

	result := "passed"
	if !r.OverallSuccess {
		result = fmt.Sprintf("failed (%d steps)", len(r.Failed()))
	}
	fmt.Printf("\nResult: %s in %s\n", result, r.Duration.Round(time.Millisecond))
}

// pickSource asks for a source when none was given on the command line.
func pickSource(a *app) (string, error) {
	list := a.registry.List()
	if len(list) == 0 {
		return "", fmt.Errorf("no sources stored, add one with `srcforge source add`")
	}

	items := make([]string, len(list))
	for i, s := range list {
		items[i] = fmt.Sprintf("%s (%d)", s.Name(), s.ID())
	}

	prompt := promptui.Select{
		Label: "Select source",
		Items: items,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled")
	}

	return strconv.FormatInt(list[idx].ID(), 10), nil
}

func init() {
	testCmd.Flags().BoolVar(&flagJSON, "json", false, "print the report as JSON")

	rootCmd.AddCommand(testCmd)
}
