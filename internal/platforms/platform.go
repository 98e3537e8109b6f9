package platforms

import (
	"context"
	"errors"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var ErrNoChoices = errors.New("model returned no choices")

type Message struct {
	Role    string
	Content string
}

type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response keeps both text channels a backend may answer on. Either may be
// empty.
type Response struct {
	Content   string
	Reasoning string
}

type Generator interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*Response, error)
}
