package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/brogergvhs/srcforge/internal/config"
	"github.com/brogergvhs/srcforge/internal/fetch"
	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/brogergvhs/srcforge/internal/store"
	"github.com/brogergvhs/srcforge/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagDBPath       string
)

var rootCmd = &cobra.Command{
	Use:           "srcforge",
	Short:         "Build, test and run HTML-scraped manga and novel sources",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore the settings profile and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the sources database")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// app is everything a command needs to reach the stored sources.
type app struct {
	settings *config.Settings
	log      *ui.Logger
	fetcher  *fetch.HTTPFetcher
	store    *store.Store
	registry *providers.Registry
}

// openApp loads the settings, opens the store and registers every stored
// source. opts carries command specific flag values.
func openApp(ctx context.Context, opts config.Options) (*app, error) {
	opts.IgnoreConfig = flagIgnoreConfig
	opts.Debug = opts.Debug || flagDebug
	if opts.DBPath == "" {
		opts.DBPath = flagDBPath
	}

	settings, from, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(settings.Debug)
	log.Debugf("settings: %s\n", from)

	f, err := fetch.New(fetch.Options{
		UserAgent:  settings.UserAgent,
		Cookie:     settings.Cookie,
		CookieFile: settings.CookieFile,
		Timeout:    settings.Timeout,
		Retries:    settings.Retries,
		RateLimit:  settings.RateLimit,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(settings.DBPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: settings,
		log:      log,
		fetcher:  f,
		store:    st,
		registry: providers.NewRegistry(),
	}

	n, err := st.LoadInto(ctx, a.registry, a.build)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	log.Debugf("loaded %d sources from %s\n", n, settings.DBPath)

	return a, nil
}

func (a *app) build(cfg custom.ScrapingConfig) providers.Source {
	return custom.New(cfg, a.fetcher, custom.WithResolver(a.registry), custom.WithLogger(a.log))
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Errorf("closing store: %v", err)
	}
}

// source resolves a source id argument to a registered custom source.
func (a *app) source(arg string) (*custom.Source, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid source id %q", arg)
	}

	src, ok := a.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("source %d: %w", id, store.ErrNotFound)
	}

	cs, ok := src.(*custom.Source)
	if !ok {
		return nil, fmt.Errorf("source %d is not a custom source", id)
	}

	return cs, nil
}
