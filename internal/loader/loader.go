package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"hnreport/internal/components"
	"hnreport/internal/config"
	"hnreport/internal/core"
	"hnreport/internal/extract"
	"hnreport/internal/processors"
	"hnreport/internal/sources"
	"hnreport/internal/state"
	"hnreport/internal/targets"
)

// Options are the command-line overrides applied on top of the config.
type Options struct {
	DryRun  bool
	NoFetch bool
	Limit   int
	// Output receives the digest on a dry run. Defaults to stdout.
	Output io.Writer
}

type Loader struct {
	config  *config.Config
	options Options
	logger  *slog.Logger
}

func NewLoader(cfg *config.Config, options Options, logger *slog.Logger) *Loader {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		config:  cfg,
		options: options,
		logger:  logger,
	}
}

// NewLogger builds the process logger from the bot section.
func NewLogger(cfg config.BotConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (l *Loader) Initialize(ctx context.Context) (*state.State, error) {
	if !l.options.DryRun {
		if err := l.config.ValidateTargets(); err != nil {
			return nil, fmt.Errorf("invalid targets: %w", err)
		}
	}

	registry := components.NewRegistry(l.logger)
	l.logger.Info("Initializing all components")

	platformComp := components.NewPlatformComponent(l.config.LLM, l.config.Discord, !l.options.DryRun)
	if err := registry.Register(platformComp); err != nil {
		return nil, fmt.Errorf("failed to register platform component: %w", err)
	}

	if err := registry.Register(components.NewPromptsComponent(l.config.Prompts.Dir)); err != nil {
		return nil, fmt.Errorf("failed to register prompts component: %w", err)
	}

	summarizerComp := components.NewSummarizerComponent(registry, l.logger)
	if err := registry.Register(summarizerComp); err != nil {
		return nil, fmt.Errorf("failed to register summarizer component: %w", err)
	}

	if err := registry.InitializeAll(ctx); err != nil {
		return nil, fmt.Errorf("component initialization failed: %w", err)
	}

	l.logger.Info("All components initialized successfully", "model", platformComp.Generator().Name())

	routeTargets, err := l.buildTargets(platformComp)
	if err != nil {
		registry.CloseAll(ctx)
		return nil, fmt.Errorf("failed to build targets: %w", err)
	}

	pipeline := core.NewPipeline(core.PipelineConfig{
		Source:     l.buildSource(),
		Fetcher:    l.buildFetcher(),
		Summarizer: summarizerComp.Summarizer(),
		Gate:       processors.NewSummaryGate(l.config.LLM.MinSummaryLength),
		Targets:    routeTargets,
		MaxItems:   l.maxItems(),
		Logger:     l.logger,
	})

	bot := core.NewBot(core.BotConfig{
		Name:     l.config.Bot.Name,
		Pipeline: pipeline,
		Interval: l.config.Bot.Interval,
		RunOnce:  l.config.Bot.RunOnce || l.options.DryRun,
		Logger:   l.logger,
		ShutdownFn: func() error {
			return registry.CloseAll(context.Background())
		},
	})

	return state.NewState(l.config, registry, pipeline, bot), nil
}

func (l *Loader) maxItems() int {
	if l.options.Limit > 0 {
		return l.options.Limit
	}
	return l.config.Source.MaxItems
}

func (l *Loader) buildSource() core.StorySource {
	return sources.NewHackerNewsSource("hackernews", sources.HackerNewsConfig{
		APIURL:       l.config.Source.APIURL,
		StoryType:    l.config.Source.StoryType,
		MaxItems:     l.maxItems(),
		CommentCount: l.config.Source.CommentCount,
		Timeout:      l.config.Source.Timeout,
		Logger:       l.logger,
	})
}

// buildFetcher returns a nil interface when fetching is off so the pipeline
// never consults it.
func (l *Loader) buildFetcher() core.ArticleFetcher {
	if !l.config.Fetch.Enabled || l.options.NoFetch {
		l.logger.Info("Article fetching disabled")
		return nil
	}

	cascade := extract.NewCascade(l.logger, extract.DefaultStrategies()...)
	return processors.NewArticleFetcher(processors.FetcherConfig{
		Enabled:          true,
		Timeout:          l.config.Fetch.Timeout,
		UserAgent:        l.config.Fetch.UserAgent,
		MaxContentLength: l.config.Fetch.MaxContentLength,
		MaxBodyBytes:     l.config.Fetch.MaxBodyBytes,
		CacheTTL:         l.config.Fetch.CacheTTL,
	}, cascade, l.logger)
}

func (l *Loader) buildTargets(platformComp *components.PlatformComponent) ([]core.Target, error) {
	if l.options.DryRun {
		return []core.Target{
			targets.NewConsoleTarget("console", l.options.Output, l.config.Discord.MessageLimit),
		}, nil
	}

	var routeTargets []core.Target

	if l.config.Discord.Enabled {
		discord := platformComp.Discord()
		if discord == nil {
			return nil, fmt.Errorf("discord platform not initialized")
		}
		routeTargets = append(routeTargets, targets.NewDiscordTarget("discord", targets.DiscordConfig{
			Sender: discord,
			Limit:  l.config.Discord.MessageLimit,
			Sleep:  l.config.Discord.Sleep,
			Logger: l.logger,
		}))
	}

	if l.config.Feed.Enabled {
		routeTargets = append(routeTargets, targets.NewFeedTarget("feed", targets.FeedConfig{
			Path:   l.config.Feed.Path,
			Title:  l.config.Feed.Title,
			Link:   l.config.Feed.Link,
			Logger: l.logger,
		}))
	}

	if len(routeTargets) == 0 {
		return nil, fmt.Errorf("no enabled targets")
	}

	return routeTargets, nil
}
