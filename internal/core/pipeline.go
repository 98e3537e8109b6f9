package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hnreport/internal/processors"
	"hnreport/internal/types"
)

type PipelineConfig struct {
	Source     StorySource
	Fetcher    ArticleFetcher
	Summarizer Summarizer
	Gate       *processors.SummaryGate
	Targets    []Target
	MaxItems   int
	Logger     *slog.Logger
}

// Pipeline runs one digest: fetch stories, summarize each in order, deliver
// the accepted ones, then summarize the accepted set three ways. Everything
// happens on the calling goroutine.
type Pipeline struct {
	source     StorySource
	fetcher    ArticleFetcher
	summarizer Summarizer
	gate       *processors.SummaryGate
	targets    Targets
	maxItems   int
	logger     *slog.Logger

	mu          sync.Mutex
	running     bool
	initialized bool
}

func NewPipeline(config PipelineConfig) *Pipeline {
	if config.Gate == nil {
		config.Gate = processors.NewSummaryGate(processors.DefaultMinSummaryLength)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Pipeline{
		source:     config.Source,
		fetcher:    config.Fetcher,
		summarizer: config.Summarizer,
		gate:       config.Gate,
		targets:    Targets(config.Targets),
		maxItems:   config.MaxItems,
		logger:     config.Logger,
	}
}

func (p *Pipeline) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if p.source == nil || p.summarizer == nil {
		return fmt.Errorf("pipeline requires a story source and a summarizer")
	}
	if len(p.targets) == 0 {
		return fmt.Errorf("pipeline requires at least one target")
	}

	p.logger.Info("Initializing pipeline", "source", p.source.Name(), "targets", len(p.targets), "fetch", p.fetchEnabled(), "min_summary_length", p.gate.MinLength())
	if err := p.targets.Initialize(ctx, p.logger); err != nil {
		return err
	}

	p.initialized = true
	return nil
}

func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	report := &RunReport{Started: time.Now()}
	defer func() {
		report.Duration = time.Since(report.Started)
	}()

	if resetter, ok := p.fetcher.(Resetter); ok && p.fetchEnabled() {
		resetter.Reset()
	}

	p.logger.Info("Fetching stories", "source", p.source.Name(), "limit", p.maxItems)
	stories, err := p.source.TopStories(ctx, p.maxItems)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrNoStories, err)
	}
	if len(stories) == 0 {
		return report, ErrNoStories
	}
	report.Stories = len(stories)
	p.logger.Info("Fetched stories", "count", len(stories))

	summaries := make([]types.Summary, 0, len(stories))
	for i, story := range stories {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		summary, err := p.processStory(ctx, i+1, story, report)
		if err != nil {
			if filtered, ok := types.AsFiltered(err); ok {
				p.logger.Warn("Story summary skipped", "index", i+1, "item_id", story.ID, "reason", filtered.Reason, "details", filtered.Details)
				report.Filtered++
			} else {
				return report, err
			}
		}
		summaries = append(summaries, summary)
	}

	accepted := p.gate.Accepted(summaries)
	report.Accepted = len(accepted)
	if len(accepted) == 0 {
		return report, ErrNoSummaries
	}

	if err := p.publishAggregates(ctx, accepted, report); err != nil {
		return report, err
	}

	if err := p.targets.Flush(ctx, p.logger); err != nil {
		return report, err
	}

	p.logger.Info("Digest delivered", "stories", report.Stories, "accepted", report.Accepted, "filtered", report.Filtered, "published", report.Published)
	return report, nil
}

// processStory returns a *types.FilteredError for a summary below the gate.
func (p *Pipeline) processStory(ctx context.Context, index int, story *types.Story, report *RunReport) (types.Summary, error) {
	p.logger.Info("Generating summary", "index", index, "item_id", story.ID, "title", story.Title)

	var fetch *types.FetchResult
	if p.fetchEnabled() {
		result := p.fetcher.Fetch(ctx, story.URL)
		if result.OK() {
			report.Fetched++
		}
		fetch = &result
	}

	summary := types.Summary{
		Stage: types.StageStory,
		Index: index,
		Story: story,
		Text:  p.summarizer.SummarizeStory(ctx, index, story, fetch),
	}

	if err := p.gate.Check(summary); err != nil {
		return summary, err
	}

	if err := p.targets.Publish(ctx, summary, p.logger); err != nil {
		return summary, fmt.Errorf("story %d: %w", index, err)
	}
	report.Published++

	return summary, nil
}

func (p *Pipeline) publishAggregates(ctx context.Context, accepted []types.Summary, report *RunReport) error {
	stages := []struct {
		stage    types.Stage
		generate func(context.Context, []types.Summary) string
	}{
		{types.StageOverall, p.summarizer.SummarizeOverall},
		{types.StageThemes, p.summarizer.ExtractThemes},
		{types.StageInsights, p.summarizer.SummarizeInsights},
	}

	for _, s := range stages {
		p.logger.Info("Generating aggregate", "stage", s.stage, "summaries", len(accepted))

		summary := types.Summary{Stage: s.stage, Text: s.generate(ctx, accepted)}
		if err := p.gate.Check(summary); err != nil {
			p.logger.Warn("Aggregate too short; using notice", "stage", s.stage, "reason", err.Error())
			summary = p.gate.Guard(summary)
		}

		if err := p.targets.Publish(ctx, summary, p.logger); err != nil {
			return fmt.Errorf("%s: %w", s.stage, err)
		}
		report.Published++
	}

	return nil
}

func (p *Pipeline) fetchEnabled() bool {
	return p.fetcher != nil && p.fetcher.Enabled()
}

func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.logger.Info("Shutting down pipeline")
	return p.targets.Shutdown(ctx, p.logger)
}
