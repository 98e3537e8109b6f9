package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hnreport/internal/config"
	"hnreport/internal/loader"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	envFile    string
	dryRun     bool
	limit      int
	noFetch    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "hnreport",
	Short:         "Daily Hacker News digest in Japanese",
	Long:          "hnreport fetches the top Hacker News stories, summarizes each one with a language model and delivers the digest to Discord or an Atom feed.",
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		go func() {
			select {
			case sig := <-sigChan:
				slog.Info("Received signal, shutting down", "signal", sig.String())
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "Path to configuration file")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before the config")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the digest to stdout instead of delivering it")
	rootCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of stories to summarize (overrides source.max_items)")
	rootCmd.Flags().BoolVar(&noFetch, "no-fetch", false, "Summarize from titles and comments only")
}

func run(ctx context.Context) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := loader.NewLogger(cfg.Bot, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if cfg.Path != "" {
		logger.Info("Loaded configuration", "path", cfg.Path)
	}

	app, err := loader.NewLoader(cfg, loader.Options{
		DryRun:  dryRun,
		NoFetch: noFetch,
		Limit:   limit,
		Output:  os.Stdout,
	}, logger).Initialize(ctx)
	if err != nil {
		return err
	}

	logger.Info("Starting bot", "bot", app.Bot.Name(), "dry_run", dryRun)
	runErr := app.Bot.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Close(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	logger.Info("Bot stopped successfully")
	return nil
}
