package components

import (
	"context"
	"fmt"
	"os"

	"hnreport/internal/template"
)

type PromptsComponent struct {
	dir     string
	prompts *template.Prompts
}

func NewPromptsComponent(dir string) *PromptsComponent {
	return &PromptsComponent{dir: dir}
}

func (c *PromptsComponent) Name() string {
	return PromptsComponentName
}

func (c *PromptsComponent) Dependencies() []string {
	return []string{}
}

func (c *PromptsComponent) Validate() error {
	if c.dir == "" {
		return nil
	}
	info, err := os.Stat(c.dir)
	if err != nil {
		return fmt.Errorf("prompts: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("prompts: %s is not a directory", c.dir)
	}
	return nil
}

func (c *PromptsComponent) Initialize(ctx context.Context) error {
	prompts, err := template.Load(c.dir)
	if err != nil {
		return fmt.Errorf("prompts: %w", err)
	}
	c.prompts = prompts
	return nil
}

func (c *PromptsComponent) Close(ctx context.Context) error {
	return nil
}

func (c *PromptsComponent) Prompts() *template.Prompts {
	return c.prompts
}
