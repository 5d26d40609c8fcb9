package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/brogergvhs/srcforge/internal/config"
	"github.com/brogergvhs/srcforge/internal/detect"
	"github.com/brogergvhs/srcforge/internal/providers/custom"

	"github.com/spf13/cobra"
)

var (
	flagFramework string
	flagNewOut    string
	flagNewSave   bool
	flagNewImages bool
)

var sourceDetectCmd = &cobra.Command{
	Use:   "detect <url>",
	Short: "Guess the site theme of a page and whether it is a search page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		fw, err := detectPage(cmd, a, args[0])
		if err != nil {
			return err
		}
		fmt.Println("Framework:", fw.DisplayName())

		if tmpl, kw, ok := detect.DetectSearchURL(args[0], siteRoot(args[0])); ok {
			fmt.Printf("Search URL: %s (keyword %q)\n", tmpl, kw)
		}

		return nil
	},
}

var sourceNewCmd = &cobra.Command{
	Use:   "new <name> <base-url>",
	Short: "Generate a starting config for a site",
	Long: "Generate a starting config for a site. Without --framework the base URL\n" +
		"is fetched and its theme detected. Run `srcforge test` on the result\n" +
		"before relying on the suggested selectors.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, baseURL := args[0], strings.TrimRight(args[1], "/")

		a, err := openApp(cmd.Context(), config.Options{})
		if err != nil {
			return err
		}
		defer a.close()

		fw := detect.Framework(strings.ToLower(flagFramework))
		if flagFramework == "" {
			if fw, err = detectPage(cmd, a, baseURL); err != nil {
				return err
			}
			a.log.Infof("Detected %s\n", fw.DisplayName())
		}

		cfg := detect.BlankConfig(name, baseURL, fw)
		if flagNewImages {
			cfg.IsNovelContent = false
		}

		if flagNewSave {
			saved, err := a.store.Create(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %q with id %d\n", saved.Name, saved.ID)
			return nil
		}

		data, err := custom.Export(cfg)
		if err != nil {
			return err
		}

		return writeOutput(flagNewOut, data)
	},
}

func detectPage(cmd *cobra.Command, a *app, pageURL string) (detect.Framework, error) {
	doc, err := a.fetcher.Fetch(cmd.Context(), custom.Request{URL: pageURL})
	if err != nil {
		return detect.Custom, err
	}

	html, err := doc.Html()
	if err != nil {
		return detect.Custom, err
	}

	return detect.Detect(html), nil
}

func siteRoot(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

func init() {
	sourceNewCmd.Flags().StringVar(&flagFramework, "framework", "", "skip detection: madara, lightnovelwp, readnovelfull, readwn or custom")
	sourceNewCmd.Flags().StringVarP(&flagNewOut, "output", "o", "", "write the config to a file instead of stdout")
	sourceNewCmd.Flags().BoolVar(&flagNewSave, "save", false, "store the config directly (it must validate)")
	sourceNewCmd.Flags().BoolVar(&flagNewImages, "images", false, "chapters are image pages, not novel text")

	sourceCmd.AddCommand(sourceDetectCmd, sourceNewCmd)
}
