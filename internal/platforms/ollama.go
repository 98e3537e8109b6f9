package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

type OllamaPlatform struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// NewOllamaPlatform talks to host, or to OLLAMA_HOST when host is empty.
func NewOllamaPlatform(host, model string, timeout time.Duration) (*OllamaPlatform, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama platform: model cannot be empty")
	}

	var client *api.Client
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		client = c
	} else {
		base, err := url.Parse(strings.TrimRight(host, "/"))
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		client = api.NewClient(base, &http.Client{Timeout: timeout})
	}

	return &OllamaPlatform{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

func (o *OllamaPlatform) Name() string { return "ollama:" + o.model }

func (o *OllamaPlatform) Chat(ctx context.Context, req ChatRequest) (*Response, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	messages := make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}

	chatReq := &api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   new(bool),
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	var content, thinking strings.Builder
	respFunc := func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		thinking.WriteString(resp.Message.Thinking)
		return nil
	}

	if err := o.client.Chat(ctx, chatReq, respFunc); err != nil {
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	return &Response{
		Content:   content.String(),
		Reasoning: thinking.String(),
	}, nil
}
