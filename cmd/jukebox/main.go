// cmd/jukebox/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keshon/jukebox/internal/config"
	"github.com/keshon/jukebox/internal/discord"
	"github.com/keshon/jukebox/internal/logging"
)

const appName = "jukebox"

type options struct {
	envFiles []string
	prefix   string
	debug    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Discord voice bot that plays audio from video URLs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv file to load (repeatable, default .env)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "command prefix, overrides COMMAND_PREFIX")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging, overrides DEBUG")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		log.Println("[ERR] Failed to load config:", err)
		return err
	}
	if cmd.Flags().Changed("prefix") && opts.prefix != "" {
		cfg.CommandPrefix = opts.prefix
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = opts.debug
	}

	logging.Setup(cfg.Debug)
	log.Printf("[INFO] Starting %v bot...", appName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
		if err, ok := <-errCh; ok && err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Println("[ERR] Discord bot error:", err)
			cancel()
			return err
		}
		cancel()
	}

	log.Println("[INFO] Discord bot exited cleanly")
	return nil
}
