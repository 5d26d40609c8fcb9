package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/brogergvhs/srcforge/internal/api"
	"github.com/brogergvhs/srcforge/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored sources over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx, config.Options{Listen: flagListen})
		if err != nil {
			return err
		}
		defer a.close()

		if !a.settings.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		h := api.NewHandler(a.registry, a.store, a.build)
		router := api.NewRouter(h, a.log)

		a.log.Infof("%d sources loaded\n", len(a.registry.List()))
		return api.Serve(ctx, a.settings.Listen, router, a.log)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "address to listen on (default 127.0.0.1:8080)")

	rootCmd.AddCommand(serveCmd)
}
