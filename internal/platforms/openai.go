package platforms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIPlatform drives any OpenAI-compatible chat completions endpoint.
type OpenAIPlatform struct {
	llm   *openai.LLM
	model string
}

func NewOpenAIPlatform(cfg OpenAIConfig) (*OpenAIPlatform, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai platform: api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai platform: model is required")
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return &OpenAIPlatform{
		llm:   llm,
		model: cfg.Model,
	}, nil
}

func (o *OpenAIPlatform) Name() string { return "openai:" + o.model }

func (o *OpenAIPlatform) Chat(ctx context.Context, req ChatRequest) (*Response, error) {
	messages := make([]llms.MessageContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleSystem {
			role = llms.ChatMessageTypeSystem
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}

	resp, err := o.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("openai chat failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	return &Response{
		Content:   choice.Content,
		Reasoning: choice.ReasoningContent,
	}, nil
}
