package components

import (
	"context"
	"fmt"

	"hnreport/internal/config"
	"hnreport/internal/platforms"
)

// PlatformComponent owns the network clients: the text generator and, unless
// delivery is disabled, the Discord platform.
type PlatformComponent struct {
	llm     config.LLMConfig
	discord config.DiscordConfig
	deliver bool

	generator       platforms.Generator
	discordPlatform *platforms.DiscordPlatform
}

func NewPlatformComponent(llm config.LLMConfig, discord config.DiscordConfig, deliver bool) *PlatformComponent {
	return &PlatformComponent{
		llm:     llm,
		discord: discord,
		deliver: deliver,
	}
}

func (c *PlatformComponent) Name() string {
	return PlatformComponentName
}

func (c *PlatformComponent) Dependencies() []string {
	return []string{}
}

func (c *PlatformComponent) Validate() error {
	switch c.llm.Provider {
	case config.ProviderOpenAI, config.ProviderOllama:
	default:
		return fmt.Errorf("platforms: unknown llm provider %q", c.llm.Provider)
	}
	return nil
}

func (c *PlatformComponent) Initialize(ctx context.Context) error {
	generator, err := c.newGenerator()
	if err != nil {
		return err
	}
	c.generator = generator

	if c.deliver && c.discord.Enabled {
		discord, err := platforms.NewDiscordPlatform(platforms.DiscordSettings{
			WebhookURL: c.discord.WebhookURL,
			BotToken:   c.discord.BotToken,
			ChannelID:  c.discord.ChannelID,
			Timeout:    c.discord.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create discord platform: %w", err)
		}
		c.discordPlatform = discord
	}

	return nil
}

func (c *PlatformComponent) newGenerator() (platforms.Generator, error) {
	if c.llm.Provider == config.ProviderOllama {
		ollama, err := platforms.NewOllamaPlatform(c.llm.BaseURL, c.llm.Model, c.llm.Timeout)
		if err != nil {
			return nil, err
		}
		return ollama, nil
	}

	openai, err := platforms.NewOpenAIPlatform(platforms.OpenAIConfig{
		APIKey:  c.llm.APIKey,
		BaseURL: c.llm.BaseURL,
		Model:   c.llm.Model,
		Timeout: c.llm.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return openai, nil
}

func (c *PlatformComponent) Close(ctx context.Context) error {
	if c.discordPlatform != nil {
		return c.discordPlatform.Close(ctx)
	}
	return nil
}

func (c *PlatformComponent) Generator() platforms.Generator {
	return c.generator
}

// Discord is nil when delivery to Discord is disabled.
func (c *PlatformComponent) Discord() *platforms.DiscordPlatform {
	return c.discordPlatform
}
