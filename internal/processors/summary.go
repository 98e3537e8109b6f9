package processors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hnreport/internal/platforms"
	"hnreport/internal/template"
	"hnreport/internal/types"
)

const (
	NoArticlePlaceholder = "外部記事なし（Hacker News 上のディスカッション）"
	NoCommentsText       = "コメントなし"

	unavailableFormat = "記事本文を取得できませんでした（理由: %s）"
	storyEmptyFormat  = "%s (%s) の要約を生成できませんでした。 スコア: %d。主要コメント: %s"
	storyErrorFormat  = "%s (%s) の要約生成に失敗しました。"

	OverallFallback  = "全体まとめの生成に失敗しました。"
	ThemesFallback   = "主要テーマの抽出に失敗しました。"
	InsightsFallback = "エンジニア向けインサイトの生成に失敗しました。"
)

var errEmptyResponse = errors.New("model returned no usable text")

// UnavailablePlaceholder is the article section used when fetching failed.
func UnavailablePlaceholder(reason string) string {
	return fmt.Sprintf(unavailableFormat, reason)
}

type generation struct {
	prompt      string
	temperature float64
	maxTokens   int
}

var (
	storyGeneration    = generation{prompt: template.Story, temperature: 0.6, maxTokens: 600}
	overallGeneration  = generation{prompt: template.Overall, temperature: 0.5, maxTokens: 400}
	themesGeneration   = generation{prompt: template.Themes, temperature: 0.5, maxTokens: 400}
	insightsGeneration = generation{prompt: template.Insights, temperature: 0.5, maxTokens: 600}
)

type storyPrompt struct {
	Index       int
	Title       string
	URL         string
	Score       int
	ShowArticle bool
	Article     string
	Comments    string
}

type aggregatePrompt struct {
	Count     int
	Summaries []string
	Joined    string
}

// Summarizer turns stories and story summaries into text. None of its
// operations fail: model errors and empty answers become fallback text.
type Summarizer struct {
	generator platforms.Generator
	prompts   *template.Prompts
	recovery  *AnswerRecovery
	logger    *slog.Logger
}

func NewSummarizer(generator platforms.Generator, prompts *template.Prompts, logger *slog.Logger) *Summarizer {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if prompts == nil {
		panic("prompts cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Summarizer{
		generator: generator,
		prompts:   prompts,
		recovery:  NewAnswerRecovery(Japanese),
		logger:    logger,
	}
}

// SummarizeStory summarizes one story. fetch is nil when article fetching is
// disabled, in which case the prompt carries no article section.
func (s *Summarizer) SummarizeStory(ctx context.Context, index int, story *types.Story, fetch *types.FetchResult) string {
	url := story.DisplayURL()
	comments := formatComments(story.CleanedComments())

	data := storyPrompt{
		Index:    index,
		Title:    story.Title,
		URL:      url,
		Score:    story.Score,
		Comments: comments,
	}
	if fetch != nil {
		data.ShowArticle = true
		data.Article = articleSection(story, fetch)
	}

	text, err := s.generate(ctx, storyGeneration, data)
	switch {
	case errors.Is(err, errEmptyResponse):
		s.logger.Warn("Empty summary returned; using fallback text", "index", index, "item_id", story.ID)
		return fmt.Sprintf(storyEmptyFormat, story.Title, url, story.Score, comments)
	case err != nil:
		s.logger.Error("Error generating story summary", "index", index, "item_id", story.ID, "error", err)
		return fmt.Sprintf(storyErrorFormat, story.Title, url)
	}

	return text
}

func (s *Summarizer) SummarizeOverall(ctx context.Context, summaries []types.Summary) string {
	return s.aggregate(ctx, types.StageOverall, overallGeneration, summaries, OverallFallback)
}

func (s *Summarizer) ExtractThemes(ctx context.Context, summaries []types.Summary) string {
	return s.aggregate(ctx, types.StageThemes, themesGeneration, summaries, ThemesFallback)
}

func (s *Summarizer) SummarizeInsights(ctx context.Context, summaries []types.Summary) string {
	return s.aggregate(ctx, types.StageInsights, insightsGeneration, summaries, InsightsFallback)
}

func (s *Summarizer) aggregate(ctx context.Context, stage types.Stage, gen generation, summaries []types.Summary, fallback string) string {
	texts := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		texts = append(texts, summary.Text)
	}

	text, err := s.generate(ctx, gen, aggregatePrompt{
		Count:     len(texts),
		Summaries: texts,
		Joined:    strings.Join(texts, "\n\n"),
	})
	if err != nil {
		s.logger.Error("Aggregate generation failed; using fallback text", "stage", stage, "summaries", len(texts), "error", err)
		return fallback
	}

	return text
}

// generate renders the prompt and calls the model. The primary channel wins
// when it has text; otherwise the answer is recovered from the reasoning
// channel. errEmptyResponse means neither produced anything.
func (s *Summarizer) generate(ctx context.Context, gen generation, data any) (string, error) {
	system, user, err := s.prompts.Render(gen.prompt, data)
	if err != nil {
		return "", err
	}

	resp, err := s.generator.Chat(ctx, platforms.ChatRequest{
		Messages: []platforms.Message{
			{Role: platforms.RoleSystem, Content: system},
			{Role: platforms.RoleUser, Content: user},
		},
		Temperature: gen.temperature,
		MaxTokens:   gen.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.generator.Name(), err)
	}

	if text := strings.TrimSpace(resp.Content); text != "" {
		return text, nil
	}

	if strings.TrimSpace(resp.Reasoning) != "" {
		s.logger.Debug("Primary channel empty; recovering from reasoning", "prompt", gen.prompt, "reasoning_length", len([]rune(resp.Reasoning)))
		if text := strings.TrimSpace(s.recovery.Recover(resp.Reasoning)); text != "" {
			return text, nil
		}
	}

	return "", errEmptyResponse
}

func articleSection(story *types.Story, fetch *types.FetchResult) string {
	if story.URL == "" {
		return NoArticlePlaceholder
	}
	if fetch.OK() {
		return fetch.Content
	}
	return UnavailablePlaceholder(fetch.Error)
}

func formatComments(comments []string) string {
	if len(comments) == 0 {
		return NoCommentsText
	}

	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		lines = append(lines, "- "+c)
	}
	return strings.Join(lines, "\n")
}
