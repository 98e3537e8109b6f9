package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	GitHubModelsURL    = "https://models.inference.ai.azure.com"
	GitHubModelsModel  = "gpt-4o-mini"
	DefaultOpenAIModel = "gpt-3.5-turbo"
)

type Config struct {
	Bot     BotConfig     `toml:"bot"`
	Source  SourceConfig  `toml:"source"`
	Fetch   FetchConfig   `toml:"fetch"`
	LLM     LLMConfig     `toml:"llm"`
	Prompts PromptsConfig `toml:"prompts"`
	Discord DiscordConfig `toml:"discord"`
	Feed    FeedConfig    `toml:"feed"`

	// Path is the file the configuration was read from, empty when only
	// defaults and the environment were used.
	Path string `toml:"-"`
}

type BotConfig struct {
	Name      string        `toml:"name"`
	RunOnce   bool          `toml:"run_once"`
	Interval  time.Duration `toml:"interval"`
	LogLevel  string        `toml:"log_level"`
	LogFormat string        `toml:"log_format"`
}

type SourceConfig struct {
	APIURL       string        `toml:"api_url"`
	StoryType    string        `toml:"story_type"`
	MaxItems     int           `toml:"max_items"`
	CommentCount int           `toml:"comment_count"`
	Timeout      time.Duration `toml:"timeout"`
}

type FetchConfig struct {
	Enabled          bool          `toml:"enabled"`
	Timeout          time.Duration `toml:"timeout"`
	MaxContentLength int           `toml:"max_content_length"`
	MaxBodyBytes     int64         `toml:"max_body_bytes"`
	UserAgent        string        `toml:"user_agent"`
	CacheTTL         time.Duration `toml:"cache_ttl"`
}

type LLMConfig struct {
	Provider         string        `toml:"provider"`
	Model            string        `toml:"model"`
	BaseURL          string        `toml:"base_url"`
	APIKey           string        `toml:"api_key"`
	Timeout          time.Duration `toml:"timeout"`
	MinSummaryLength int           `toml:"min_summary_length"`
}

type PromptsConfig struct {
	Dir string `toml:"dir"`
}

type DiscordConfig struct {
	Enabled      bool          `toml:"enabled"`
	WebhookURL   string        `toml:"webhook_url"`
	BotToken     string        `toml:"bot_token"`
	ChannelID    string        `toml:"channel_id"`
	Timeout      time.Duration `toml:"timeout"`
	Sleep        time.Duration `toml:"sleep"`
	MessageLimit int           `toml:"message_limit"`
}

type FeedConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Title   string `toml:"title"`
	Link    string `toml:"link"`
}

func Default() *Config {
	return &Config{
		Bot: BotConfig{
			Name:      "hnreport",
			RunOnce:   true,
			Interval:  24 * time.Hour,
			LogLevel:  "info",
			LogFormat: "text",
		},
		Source: SourceConfig{
			APIURL:       "https://hacker-news.firebaseio.com/v0",
			StoryType:    "topstories",
			MaxItems:     5,
			CommentCount: 3,
			Timeout:      10 * time.Second,
		},
		Fetch: FetchConfig{
			Enabled:          true,
			Timeout:          10 * time.Second,
			MaxContentLength: 4000,
			MaxBodyBytes:     5 << 20,
			CacheTTL:         30 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:         ProviderOpenAI,
			Timeout:          60 * time.Second,
			MinSummaryLength: 50,
		},
		Discord: DiscordConfig{
			Enabled:      true,
			Timeout:      10 * time.Second,
			Sleep:        time.Second,
			MessageLimit: 2000,
		},
		Feed: FeedConfig{
			Path:  "digest.atom",
			Title: "Hacker News Daily Digest",
			Link:  "https://news.ycombinator.com/",
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. A missing file is tolerated: defaults and the
// environment are enough to run.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, config); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		} else {
			config.Path = path
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func applyEnv(config *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("OPENAI_API_KEY", &config.LLM.APIKey)
	setString("OPENAI_BASE_URL", &config.LLM.BaseURL)
	setString("OPENAI_MODEL", &config.LLM.Model)
	setString("DISCORD_WEBHOOK_URL", &config.Discord.WebhookURL)
	setString("DISCORD_BOT_TOKEN", &config.Discord.BotToken)
	setString("DISCORD_CHANNEL_ID", &config.Discord.ChannelID)

	if v, ok := os.LookupEnv("ENABLE_ARTICLE_FETCH"); ok && v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ENABLE_ARTICLE_FETCH: %w", err)
		}
		config.Fetch.Enabled = enabled
	}

	if config.LLM.Provider == ProviderOpenAI && config.LLM.APIKey == "" {
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			config.LLM.APIKey = token
			if config.LLM.BaseURL == "" {
				config.LLM.BaseURL = GitHubModelsURL
			}
			if config.LLM.Model == "" {
				config.LLM.Model = GitHubModelsModel
			}
		}
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.Bot.Name == "" {
		config.Bot.Name = "hnreport"
	}

	if !config.Bot.RunOnce && config.Bot.Interval <= 0 {
		return fmt.Errorf("bot.interval must be positive when run_once is false")
	}

	if _, err := config.Bot.SlogLevel(); err != nil {
		return err
	}

	switch config.Bot.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown bot.log_format %q", config.Bot.LogFormat)
	}

	if config.Source.MaxItems <= 0 {
		return fmt.Errorf("source.max_items must be positive")
	}
	if config.Source.CommentCount < 0 {
		return fmt.Errorf("source.comment_count cannot be negative")
	}

	if config.Fetch.MaxContentLength <= 0 {
		return fmt.Errorf("fetch.max_content_length must be positive")
	}

	switch config.LLM.Provider {
	case ProviderOpenAI:
		if config.LLM.APIKey == "" {
			return fmt.Errorf("no API configuration found: set OPENAI_API_KEY or GITHUB_TOKEN")
		}
		if config.LLM.Model == "" {
			config.LLM.Model = DefaultOpenAIModel
		}
	case ProviderOllama:
		if config.LLM.Model == "" {
			return fmt.Errorf("llm.model is required for the ollama provider")
		}
	default:
		return fmt.Errorf("unknown llm.provider %q", config.LLM.Provider)
	}

	if config.LLM.MinSummaryLength <= 0 {
		return fmt.Errorf("llm.min_summary_length must be positive")
	}

	if config.Discord.MessageLimit <= 0 || config.Discord.MessageLimit > 2000 {
		return fmt.Errorf("discord.message_limit must be between 1 and 2000")
	}

	return nil
}

// ValidateTargets checks that something will receive the digest. Dry runs
// skip it because they print instead.
func (c *Config) ValidateTargets() error {
	if !c.Discord.Enabled && !c.Feed.Enabled {
		return fmt.Errorf("at least one target must be enabled")
	}

	if c.Discord.Enabled {
		if c.Discord.WebhookURL == "" && c.Discord.BotToken == "" {
			return fmt.Errorf("DISCORD_WEBHOOK_URL environment variable is required")
		}
		if c.Discord.WebhookURL == "" && c.Discord.ChannelID == "" {
			return fmt.Errorf("discord.channel_id is required with a bot token")
		}
	}

	if c.Feed.Enabled && c.Feed.Path == "" {
		return fmt.Errorf("feed.path is required")
	}

	return nil
}

func (b BotConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if b.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(b.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid bot.log_level: %w", err)
	}
	return level, nil
}
