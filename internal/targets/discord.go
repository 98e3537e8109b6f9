package targets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hnreport/internal/types"
)

// MessageSender posts a single message. platforms.DiscordPlatform is the
// production implementation.
type MessageSender interface {
	Send(ctx context.Context, content string) error
}

type DiscordConfig struct {
	Sender MessageSender
	Limit  int
	Sleep  time.Duration
	Logger *slog.Logger
}

// DiscordTarget delivers each summary as one or more messages no longer than
// Limit characters, waiting Sleep between consecutive messages. Any failed
// send aborts the publish.
type DiscordTarget struct {
	name      string
	sender    MessageSender
	limit     int
	sleep     time.Duration
	logger    *slog.Logger
	delivered int
}

func NewDiscordTarget(name string, config DiscordConfig) *DiscordTarget {
	if config.Limit <= 0 {
		config.Limit = DiscordMessageLimit
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &DiscordTarget{
		name:   name,
		sender: config.Sender,
		limit:  config.Limit,
		sleep:  config.Sleep,
		logger: config.Logger,
	}
}

func (d *DiscordTarget) Name() string {
	return d.name
}

func (d *DiscordTarget) Initialize(ctx context.Context) error {
	if d.sender == nil {
		return fmt.Errorf("discord target %s: sender is required", d.name)
	}
	return nil
}

func (d *DiscordTarget) Sleep(ctx context.Context) error {
	if d.sleep <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.sleep):
		return nil
	}
}

func (d *DiscordTarget) Publish(ctx context.Context, summary types.Summary) error {
	chunks := Chunk(summary.Message(), d.limit)
	d.logger.Info("Posting to Discord", "target", d.name, "item_id", summary.ID(), "messages", len(chunks))

	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		if d.delivered > 0 {
			if err := d.Sleep(ctx); err != nil {
				return err
			}
		}

		d.logger.Debug("Sending chunk", "target", d.name, "chunk", i+1, "total", len(chunks), "length", len([]rune(chunk)))
		if err := d.sender.Send(ctx, chunk); err != nil {
			return fmt.Errorf("discord target %s: chunk %d/%d of %s: %w", d.name, i+1, len(chunks), summary.ID(), err)
		}
		d.delivered++
	}

	return nil
}

func (d *DiscordTarget) Shutdown(ctx context.Context) error {
	if closer, ok := d.sender.(interface{ Close(context.Context) error }); ok {
		return closer.Close(ctx)
	}
	return nil
}
