package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Bot struct {
	name       string
	pipeline   *Pipeline
	interval   time.Duration
	runOnce    bool
	logger     *slog.Logger
	mu         sync.RWMutex
	running    bool
	stopCh     chan struct{}
	stopOnce   sync.Once
	errorCh    chan error
	shutdownFn func() error
}

type BotConfig struct {
	Name       string
	Pipeline   *Pipeline
	Interval   time.Duration
	RunOnce    bool
	Logger     *slog.Logger
	ShutdownFn func() error
}

func NewBot(config BotConfig) *Bot {
	if config.Interval == 0 {
		config.Interval = 24 * time.Hour
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Bot{
		name:       config.Name,
		pipeline:   config.Pipeline,
		interval:   config.Interval,
		runOnce:    config.RunOnce,
		logger:     config.Logger,
		stopCh:     make(chan struct{}),
		errorCh:    make(chan error, 10),
		shutdownFn: config.ShutdownFn,
	}
}

// Start runs the pipeline once, or on every interval until ctx is done or
// Stop is called. In run-once mode the run's error is returned. In scheduled
// mode failed runs are logged and reported on Errors.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("bot already running")
	}
	b.running = true
	b.mu.Unlock()

	if err := b.pipeline.Initialize(ctx); err != nil {
		b.markStopped()
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	if b.runOnce {
		return b.runOnceMode(ctx)
	}

	return b.runContinuousMode(ctx)
}

func (b *Bot) runOnceMode(ctx context.Context) error {
	defer b.markStopped()

	if _, err := b.pipeline.Run(ctx); err != nil {
		return fmt.Errorf("pipeline execution failed: %w", err)
	}

	return nil
}

func (b *Bot) runContinuousMode(ctx context.Context) error {
	defer b.markStopped()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Info("Bot scheduled", "bot", b.name, "interval", b.interval)
	b.executeRun(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.stopCh:
			return nil
		case <-ticker.C:
			b.executeRun(ctx)
		}
	}
}

func (b *Bot) executeRun(ctx context.Context) {
	runCtx := ctx
	if b.interval > 10*time.Second {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, b.interval-10*time.Second)
		defer cancel()
	}

	report, err := b.pipeline.Run(runCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Pipeline run failed", "bot", b.name, "error", err)
		select {
		case b.errorCh <- fmt.Errorf("pipeline run failed: %w", err):
		default:
		}
		return
	}
	if report != nil {
		b.logger.Info("Pipeline run finished", "bot", b.name, "published", report.Published, "duration", report.Duration)
	}
}

func (b *Bot) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() { close(b.stopCh) })

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := b.pipeline.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("pipeline shutdown failed: %w", err)
	}

	if b.shutdownFn != nil {
		if err := b.shutdownFn(); err != nil {
			return fmt.Errorf("custom shutdown failed: %w", err)
		}
	}

	return nil
}

func (b *Bot) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

func (b *Bot) Name() string {
	return b.name
}

func (b *Bot) Errors() <-chan error {
	return b.errorCh
}

func (b *Bot) markStopped() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}
