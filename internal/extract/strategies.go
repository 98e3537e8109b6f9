package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var mainContentSelectors = []string{
	"article",
	"main",
	"[role='main']",
	".entry-content",
	".post-content",
	".post-body",
	".article-body",
	"#content",
	".content",
}

// StructuralExtractor drops page chrome and reads the first recognisable
// main-content container.
type StructuralExtractor struct {
	selectors []string
}

func NewStructuralExtractor() *StructuralExtractor {
	return &StructuralExtractor{selectors: mainContentSelectors}
}

func (e *StructuralExtractor) Name() string {
	return "structural"
}

func (e *StructuralExtractor) Extract(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, noscript, iframe, form").Remove()

	for _, selector := range e.selectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		blocks := make([]string, 0)
		container.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
			if text := collapseWhitespace(s.Text()); text != "" {
				blocks = append(blocks, text)
			}
		})

		if len(blocks) == 0 {
			if text := collapseWhitespace(container.Text()); text != "" {
				return text, nil
			}
			continue
		}

		return strings.Join(blocks, "\n"), nil
	}

	return "", nil
}

// ReadabilityExtractor builds a simplified article with go-readability and
// joins its paragraphs with single spaces. Markup without a known page URL
// is parsed against fallbackURL.
type ReadabilityExtractor struct {
	fallbackURL *url.URL
}

func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{
		fallbackURL: &url.URL{Scheme: "https", Host: "localhost", Path: "/"},
	}
}

func (e *ReadabilityExtractor) Name() string {
	return "readability"
}

func (e *ReadabilityExtractor) Extract(markup string) (string, error) {
	return e.ExtractPage(markup, e.fallbackURL)
}

func (e *ReadabilityExtractor) ExtractPage(markup string, pageURL *url.URL) (string, error) {
	if pageURL == nil {
		pageURL = e.fallbackURL
	}

	article, err := readability.FromReader(strings.NewReader(markup), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return collapseWhitespace(article.TextContent), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", fmt.Errorf("failed to parse readability output: %w", err)
	}

	paragraphs := paragraphTexts(doc.Selection)
	if len(paragraphs) == 0 {
		return collapseWhitespace(article.TextContent), nil
	}

	return strings.Join(paragraphs, " "), nil
}

// BasicExtractor is the last resort: every paragraph left after removing
// page chrome from the whole document.
type BasicExtractor struct{}

func NewBasicExtractor() *BasicExtractor {
	return &BasicExtractor{}
}

func (e *BasicExtractor) Name() string {
	return "basic"
}

func (e *BasicExtractor) Extract(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	return strings.Join(paragraphTexts(doc.Selection), " "), nil
}

func paragraphTexts(root *goquery.Selection) []string {
	texts := make([]string, 0)
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := collapseWhitespace(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}
