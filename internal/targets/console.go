package targets

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"hnreport/internal/types"
)

// ConsoleTarget prints each message to a writer, chunked the same way
// Discord would receive it. Used for dry runs.
type ConsoleTarget struct {
	name  string
	out   io.Writer
	limit int
}

func NewConsoleTarget(name string, out io.Writer, limit int) *ConsoleTarget {
	if out == nil {
		out = os.Stdout
	}
	if limit <= 0 {
		limit = DiscordMessageLimit
	}
	return &ConsoleTarget{name: name, out: out, limit: limit}
}

func (c *ConsoleTarget) Name() string {
	return c.name
}

func (c *ConsoleTarget) Initialize(ctx context.Context) error {
	return nil
}

func (c *ConsoleTarget) Publish(ctx context.Context, summary types.Summary) error {
	chunks := Chunk(summary.Message(), c.limit)
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if _, err := fmt.Fprintf(c.out, "----- %s [%d/%d] -----\n%s\n", summary.ID(), i+1, len(chunks), chunk); err != nil {
			return fmt.Errorf("console target %s: %w", c.name, err)
		}
	}
	return nil
}

func (c *ConsoleTarget) Shutdown(ctx context.Context) error {
	return nil
}
