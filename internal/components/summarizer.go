package components

import (
	"context"
	"log/slog"

	"hnreport/internal/processors"
)

type SummarizerComponent struct {
	registry   *Registry
	logger     *slog.Logger
	summarizer *processors.Summarizer
}

func NewSummarizerComponent(registry *Registry, logger *slog.Logger) *SummarizerComponent {
	return &SummarizerComponent{
		registry: registry,
		logger:   logger,
	}
}

func (c *SummarizerComponent) Name() string {
	return SummarizerComponentName
}

func (c *SummarizerComponent) Dependencies() []string {
	return []string{PlatformComponentName, PromptsComponentName}
}

func (c *SummarizerComponent) Validate() error {
	return nil
}

func (c *SummarizerComponent) Initialize(ctx context.Context) error {
	generator := c.registry.Get(PlatformComponentName).(*PlatformComponent).Generator()
	prompts := c.registry.Get(PromptsComponentName).(*PromptsComponent).Prompts()
	c.summarizer = processors.NewSummarizer(generator, prompts, c.logger)
	return nil
}

func (c *SummarizerComponent) Close(ctx context.Context) error {
	return nil
}

func (c *SummarizerComponent) Summarizer() *processors.Summarizer {
	return c.summarizer
}
