package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ait-tooling/ait/internal/dependency"
	"github.com/ait-tooling/ait/internal/server"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server for the browser UI",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides gateway.port)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides gateway.host)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Gateway.Port = servePort
	}
	if serveHost != "" {
		cfg.Gateway.Host = serveHost
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	srv := server.New(container, cfg.Gateway)
	fmt.Printf("%s Starting ait server on %s...\n", logo, srv.Addr())

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })

	fmt.Printf("%s Server running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
