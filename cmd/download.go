package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/srcforge/internal/chapters"
	"github.com/brogergvhs/srcforge/internal/config"
	"github.com/brogergvhs/srcforge/internal/downloader"
	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/ui"
	"github.com/brogergvhs/srcforge/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagChapter string
	flagRange   string
	flagList    string

	// runtime
	flagOutput         string
	flagImageWorkers   int
	flagChapterWorkers int
	flagKeepFolders    bool
	flagDryRun         bool
	flagSkipBroken     bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download <source-id> <url>",
		Short: "Download chapters of an entry: novels as .zip, image chapters as .cbz. Uses the defaults from the active profile, overwritten by CLI flags",
		Args:  cobra.ExactArgs(2),
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagChapter, "chapter", "", "download single chapter by number or index (e.g. 5 or 28.5)")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "download range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "download specific chapter indices (e.g. 1,3,5)")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for archives")
	downloadCmd.Flags().IntVar(&flagImageWorkers, "image-workers", 0, "parallel image downloads per chapter")
	downloadCmd.Flags().IntVar(&flagChapterWorkers, "chapter-workers", 0, "parallel chapter downloads")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep temporary folders")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed images and chapters instead of stopping")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), config.Options{
		Output:         flagOutput,
		ImageWorkers:   flagImageWorkers,
		ChapterWorkers: flagChapterWorkers,
		KeepFolders:    flagKeepFolders,
		SkipBroken:     flagSkipBroken,
		Cookie:         flagCookie,
		CookieFile:     flagCookieFile,
		UserAgent:      flagUserAgent,
	})
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.settings

	src, err := a.source(args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	ctx, cancel := util.InterruptContext(cmd.Context(), cfg.Output)
	defer cancel()

	all, err := src.GetChapterList(ctx, providers.Manga{URL: args[1]})
	if err != nil {
		return err
	}
	if flagChapter == "" && flagRange == "" && flagList == "" {
		fmt.Printf("Found %s on the site.\n\n", util.Count(len(all), "chapter"))
	}

	picked := providers.Select(all, flagChapter, flagRange, flagList)
	if len(picked) == 0 {
		if flagChapter != "" {
			return fmt.Errorf("chapter '%s' not found", flagChapter)
		}
		return fmt.Errorf("no chapters selected")
	}
	selected := chapters.Wrap(all, picked)

	if flagDryRun {
		fmt.Printf("Dry-run: %s selected.\n\n", util.Count(len(selected), "chapter"))
		for i, ch := range selected {
			fmt.Printf("%3d) %s  [%s]\n    %s\n", i+1, ch.Name, ch.Label(), ch.OutputName(src.IsNovel()))
		}
		return nil
	}

	client, err := a.fetcher.Client(src.Config().UseCloudflareBypass)
	if err != nil {
		return err
	}

	dl := downloader.New(client, a.log, downloader.Options{
		OutputDir:      cfg.Output,
		ChapterWorkers: cfg.ChapterWorkers,
		ImageWorkers:   cfg.ImageWorkers,
		SkipBroken:     cfg.SkipBroken,
		KeepFolders:    cfg.KeepFolders,
		Attempts:       cfg.Retries + 1,
		Limiter:        a.fetcher,
	})

	pm := ui.NewProgressManager()
	stats := &ui.Stats{}
	start := time.Now()

	err = dl.DownloadChapters(ctx, src, selected, pm, stats)
	pm.Close()

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Println(stats.Summary(time.Since(start)))
	if err != nil {
		return err
	}

	fmt.Println("\nAll done.")
	return nil
}
