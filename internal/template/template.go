package template

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
)

//go:embed prompts/*.tmpl
var builtin embed.FS

// Prompt names. Each one defines "<name>.system" and "<name>.user".
const (
	Story    = "story"
	Overall  = "overall"
	Themes   = "themes"
	Insights = "insights"
)

type Prompts struct {
	tmpl *texttemplate.Template
}

// Load parses the built-in prompts and then any *.tmpl files in dir. A
// definition in dir replaces the built-in one of the same name. dir may be
// empty.
func Load(dir string) (*Prompts, error) {
	tmpl, err := texttemplate.New("prompts").ParseFS(builtin, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in prompts: %w", err)
	}

	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.tmpl"))
		if err != nil {
			return nil, fmt.Errorf("invalid prompt directory %s: %w", dir, err)
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
			}
			if _, err := tmpl.New(filepath.Base(path)).Parse(string(data)); err != nil {
				return nil, fmt.Errorf("failed to parse template file %s: %w", path, err)
			}
		}
	}

	p := &Prompts{tmpl: tmpl}
	for _, name := range []string{Story, Overall, Themes, Insights} {
		for _, part := range []string{".system", ".user"} {
			if p.tmpl.Lookup(name+part) == nil {
				return nil, fmt.Errorf("prompt %s%s is not defined", name, part)
			}
		}
	}
	return p, nil
}

// Render executes the system and user halves of the named prompt.
func (p *Prompts) Render(name string, data any) (system, user string, err error) {
	system, err = p.execute(name+".system", data)
	if err != nil {
		return "", "", err
	}
	user, err = p.execute(name+".user", data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func (p *Prompts) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

