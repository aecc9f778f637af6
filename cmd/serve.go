package cmd

import (
	"context"
	"time"

	"github.com/shandysiswandi/registra/internal/app"
	"github.com/spf13/cobra"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and block until SIGINT or SIGTERM.

This is also what runs when registra is started without a subcommand.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second,
		"how long to wait for in-flight work on shutdown")
}

func runServe(*cobra.Command, []string) error {
	application := app.New()
	wait := application.Start()
	<-wait

	timeout := shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	application.Stop(ctx)

	return nil
}
