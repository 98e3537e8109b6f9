package types

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	DiscussionHost = "news.ycombinator.com"

	commentLimit = 200
)

type Comment struct {
	ID   int64
	By   string
	Text string
}

// Story is one ranked item from the story source. It is not modified after
// the source returns it.
type Story struct {
	ID          int64
	Title       string
	URL         string
	Score       int
	Descendants int
	Kids        []int64
	Comments    []Comment
}

func (s *Story) DiscussionURL() string {
	return fmt.Sprintf("https://%s/item?id=%d", DiscussionHost, s.ID)
}

// DisplayURL is the article URL, or the discussion page for link-less posts.
func (s *Story) DisplayURL() string {
	if s.URL != "" {
		return s.URL
	}
	return s.DiscussionURL()
}

// CleanedComments returns the non-empty cleaned comment texts in order.
func (s *Story) CleanedComments() []string {
	cleaned := make([]string, 0, len(s.Comments))
	for _, c := range s.Comments {
		if text := CleanComment(c.Text); text != "" {
			cleaned = append(cleaned, text)
		}
	}
	return cleaned
}

var commentStripper = bluemonday.StrictPolicy()

// CleanComment strips markup from a comment, decodes entities and caps it at
// 200 characters.
func CleanComment(raw string) string {
	s := strings.ReplaceAll(raw, "<p>", " ")
	s = commentStripper.Sanitize(s)
	s = html.UnescapeString(s)
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > commentLimit {
		s = string([]rune(s)[:commentLimit]) + "..."
	}
	return s
}

// FetchResult carries either extracted Content (with the cascade stage in
// Method) or an Error reason. Never both.
type FetchResult struct {
	Content string
	Method  string
	Error   string
}

func (r FetchResult) OK() bool {
	return r.Error == "" && r.Content != ""
}

func FetchSuccess(content, method string) FetchResult {
	return FetchResult{Content: content, Method: method}
}

func FetchFailure(reason string) FetchResult {
	return FetchResult{Error: reason}
}

type Stage string

const (
	StageStory    Stage = "story"
	StageOverall  Stage = "overall"
	StageThemes   Stage = "themes"
	StageInsights Stage = "insights"
)

// Heading is the title line aggregates are delivered under. Story summaries
// have none.
func (s Stage) Heading() string {
	switch s {
	case StageOverall:
		return "## 全体まとめ"
	case StageThemes:
		return "## 主要テーマ"
	case StageInsights:
		return "## エンジニア向けインサイト"
	}
	return ""
}

type Summary struct {
	Stage Stage
	Index int
	Story *Story
	Text  string
}

// Accepted reports whether the trimmed text has at least min characters.
func (s Summary) Accepted(min int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s.Text)) >= min
}

// Message is the text as delivered: aggregates get their stage heading.
func (s Summary) Message() string {
	heading := s.Stage.Heading()
	if heading == "" {
		return s.Text
	}
	return heading + "\n" + s.Text
}

func (s Summary) ID() string {
	if s.Story != nil {
		return fmt.Sprintf("hn_%d", s.Story.ID)
	}
	return string(s.Stage)
}
