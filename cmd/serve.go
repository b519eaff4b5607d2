package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reelfetch/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stream lookups over HTTP",
	Long: `Serve GET /streams?id=<id>&type=movie|tv[&season=N&episode=N].
Responds with a JSON array of streams, or 404 when none are found.`,
	Args: cobra.NoArgs,
	RunE: serveRun,
}

func init() {
	serveCmd.Flags().StringVarP(&flagListen, "listen", "l", "", "Listen address (default from config, :8080)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	addr := cfg.Listen
	if flagListen != "" {
		addr = flagListen
	}

	p, err := newPipeline()
	if err != nil {
		return err
	}

	opts := p.Options()
	logger.WithFields(logrus.Fields{
		"workers":       opts.Workers,
		"deadline":      opts.Deadline,
		"embed_timeout": opts.EmbedTimeout,
	}).Info("pipeline ready")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(p, logrus.NewEntry(logger)).Run(ctx, addr)
}
