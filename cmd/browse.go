package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/brogergvhs/srcforge/internal/config"
	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/providers/custom"

	"github.com/spf13/cobra"
)

var (
	flagPage int
	flagJSON bool
)

// browseCommand builds a command that resolves its first argument to a
// source and hands the rest to run.
func browseCommand(use, short string, args cobra.PositionalArgs, run func(ctx context.Context, src *custom.Source, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), config.Options{})
			if err != nil {
				return err
			}
			defer a.close()

			src, err := a.source(args[0])
			if err != nil {
				return err
			}

			return run(cmd.Context(), src, args[1:])
		},
	}
}

var popularCmd = browseCommand("popular <source-id>", "List popular entries of a source", cobra.ExactArgs(1),
	func(ctx context.Context, src *custom.Source, _ []string) error {
		page, err := src.GetPopular(ctx, flagPage)
		if err != nil {
			return err
		}
		return printMangas(page)
	})

var latestCmd = browseCommand("latest <source-id>", "List latest updates of a source", cobra.ExactArgs(1),
	func(ctx context.Context, src *custom.Source, _ []string) error {
		page, err := src.GetLatest(ctx, flagPage)
		if err != nil {
			return err
		}
		return printMangas(page)
	})

var searchCmd = browseCommand("search <source-id> <query>", "Search a source", cobra.ExactArgs(2),
	func(ctx context.Context, src *custom.Source, args []string) error {
		page, err := src.Search(ctx, flagPage, args[0], src.GetFilters())
		if err != nil {
			return err
		}
		return printMangas(page)
	})

var detailsCmd = browseCommand("details <source-id> <url>", "Show the details of an entry", cobra.ExactArgs(2),
	func(ctx context.Context, src *custom.Source, args []string) error {
		m, err := src.GetDetails(ctx, providers.Manga{URL: args[0]})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(m)
		}

		fmt.Println("Title:  ", m.Title)
		fmt.Println("Author: ", m.Author)
		if m.Artist != "" {
			fmt.Println("Artist: ", m.Artist)
		}
		fmt.Println("Genre:  ", m.Genre)
		fmt.Println("Status: ", m.Status)
		fmt.Println("Cover:  ", m.ThumbnailURL)
		fmt.Println()
		fmt.Println(m.Description)
		return nil
	})

var chaptersCmd = browseCommand("chapters <source-id> <url>", "List the chapters of an entry", cobra.ExactArgs(2),
	func(ctx context.Context, src *custom.Source, args []string) error {
		list, err := src.GetChapterList(ctx, providers.Manga{URL: args[0]})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "#\tNUMBER\tNAME\tDATE\tURL")
		for i, c := range list {
			date := ""
			if c.DateUpload > 0 {
				date = time.UnixMilli(c.DateUpload).Format("2006-01-02")
			}
			_, _ = fmt.Fprintf(w, "%d\t%g\t%s\t%s\t%s\n", i+1, c.Number, c.Name, date, c.URL)
		}
		return w.Flush()
	})

var contentCmd = browseCommand("content <source-id> <chapter-url>", "Print the text of a novel chapter", cobra.ExactArgs(2),
	func(ctx context.Context, src *custom.Source, args []string) error {
		body, err := src.FetchContent(ctx, providers.Chapter{URL: args[0]})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]string{"url": args[0], "content": body})
		}

		fmt.Println(body)
		return nil
	})

var pagesCmd = browseCommand("pages <source-id> <chapter-url>", "List the image pages of a chapter", cobra.ExactArgs(2),
	func(ctx context.Context, src *custom.Source, args []string) error {
		pages, err := src.GetPageList(ctx, providers.Chapter{URL: args[0]})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(pages)
		}

		for _, p := range pages {
			u := p.ImageURL
			if u == "" {
				u = p.URL
			}
			fmt.Printf("%3d  %s\n", p.Index+1, src.URL(u))
		}
		return nil
	})

var filtersCmd = browseCommand("filters <source-id>", "Show the search filters of a source", cobra.ExactArgs(1),
	func(_ context.Context, src *custom.Source, _ []string) error {
		return printJSON(src.GetFilters())
	})

func printMangas(page providers.MangasPage) error {
	if flagJSON {
		return printJSON(page)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tTITLE\tURL")
	for i, m := range page.Mangas {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, m.Title, m.URL)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if page.HasNextPage {
		fmt.Printf("\nMore results: --page %d\n", flagPage+1)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{popularCmd, latestCmd, searchCmd} {
		c.Flags().IntVar(&flagPage, "page", 1, "result page, starting at 1")
	}
	for _, c := range []*cobra.Command{popularCmd, latestCmd, searchCmd, detailsCmd, chaptersCmd, contentCmd, pagesCmd} {
		c.Flags().BoolVar(&flagJSON, "json", false, "print JSON")
	}

	rootCmd.AddCommand(popularCmd, latestCmd, searchCmd, detailsCmd, chaptersCmd, contentCmd, pagesCmd, filtersCmd)
}
