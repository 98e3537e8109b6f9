package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

type DiscordSettings struct {
	WebhookURL string
	BotToken   string
	ChannelID  string
	Timeout    time.Duration
}

// DiscordPlatform posts plain text either through a webhook or as a bot to a
// channel. Mentions are never expanded and failed requests are not retried.
type DiscordPlatform struct {
	session      *discordgo.Session
	webhookID    string
	webhookToken string
	channelID    string
}

func NewDiscordPlatform(settings DiscordSettings) (*DiscordPlatform, error) {
	if settings.WebhookURL == "" && settings.BotToken == "" {
		return nil, fmt.Errorf("discord platform: webhook_url or bot_token is required")
	}
	if settings.WebhookURL == "" && settings.ChannelID == "" {
		return nil, fmt.Errorf("discord platform: channel_id is required with bot_token")
	}

	if settings.Timeout == 0 {
		settings.Timeout = 10 * time.Second
	}

	token := ""
	if settings.BotToken != "" {
		token = "Bot " + settings.BotToken
	}

	session, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Client = &http.Client{Timeout: settings.Timeout}
	session.MaxRestRetries = 0
	session.ShouldRetryOnRateLimit = false

	p := &DiscordPlatform{
		session:   session,
		channelID: settings.ChannelID,
	}

	if settings.WebhookURL != "" {
		id, webhookToken, err := ParseWebhookURL(settings.WebhookURL)
		if err != nil {
			return nil, err
		}
		p.webhookID = id
		p.webhookToken = webhookToken
	}

	return p, nil
}

// ParseWebhookURL splits https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid discord webhook url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "webhooks" && i+2 < len(parts) {
			id, token := parts[i+1], parts[i+2]
			if id != "" && token != "" {
				return id, token, nil
			}
		}
	}

	return "", "", fmt.Errorf("invalid discord webhook url: expected /api/webhooks/{id}/{token}")
}

func (p *DiscordPlatform) Session() *discordgo.Session {
	return p.session
}

func (p *DiscordPlatform) usesWebhook() bool {
	return p.webhookID != ""
}

// Send posts one message. content must already fit Discord's size limit.
func (p *DiscordPlatform) Send(ctx context.Context, content string) error {
	mentions := &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{},
	}

	if p.usesWebhook() {
		_, err := p.session.WebhookExecute(p.webhookID, p.webhookToken, true, &discordgo.WebhookParams{
			Content:         content,
			AllowedMentions: mentions,
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to execute webhook: %w", err)
		}
		return nil
	}

	_, err := p.session.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: mentions,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (p *DiscordPlatform) Close(ctx context.Context) error {
	p.session.Client.CloseIdleConnections()
	return nil
}
