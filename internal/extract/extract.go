// Package extract turns raw page markup into article text through an ordered
// cascade of extraction strategies, and bounds the result to a budget.
package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MinContentLength is the quality gate every stage must pass.
const MinContentLength = 50

type Strategy interface {
	Name() string
	Extract(markup string) (string, error)
}

// PageStrategy is implemented by strategies that use the page's own URL,
// for example to resolve relative links.
type PageStrategy interface {
	ExtractPage(markup string, pageURL *url.URL) (string, error)
}

type Cascade struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewCascade tries strategies in the given order. With no strategies it uses
// structural, readability and basic.
func NewCascade(logger *slog.Logger, strategies ...Strategy) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Cascade{
		strategies: strategies,
		logger:     logger,
	}
}

func DefaultStrategies() []Strategy {
	return []Strategy{
		NewStructuralExtractor(),
		NewReadabilityExtractor(),
		NewBasicExtractor(),
	}
}

// Extract returns the text of the first stage whose output is longer than
// MinContentLength, along with that stage's name.
func (c *Cascade) Extract(markup string) (string, string, bool) {
	return c.ExtractFrom(markup, nil)
}

// ExtractFrom is Extract for a page fetched from pageURL. A nil pageURL is
// allowed.
func (c *Cascade) ExtractFrom(markup string, pageURL *url.URL) (string, string, bool) {
	for _, s := range c.strategies {
		text, err := c.run(s, markup, pageURL)
		if err != nil {
			c.logger.Debug("Extraction stage failed", "stage", s.Name(), "error", err)
			continue
		}

		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) <= MinContentLength {
			c.logger.Debug("Extraction stage below quality gate", "stage", s.Name(), "length", utf8.RuneCountInString(text))
			continue
		}

		return text, s.Name(), true
	}

	return "", "", false
}

func (c *Cascade) run(s Strategy, markup string, pageURL *url.URL) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("stage %s panicked: %v", s.Name(), r)
		}
	}()
	if ps, ok := s.(PageStrategy); ok && pageURL != nil {
		return ps.ExtractPage(markup, pageURL)
	}
	return s.Extract(markup)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
