package processors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hnreport/internal/platforms"
	"hnreport/internal/template"
	"hnreport/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	responses []*platforms.Response
	err       error
	requests  []platforms.ChatRequest
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Chat(ctx context.Context, req platforms.ChatRequest) (*platforms.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &platforms.Response{}, nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeGenerator) lastUserPrompt() string {
	last := f.requests[len(f.requests)-1]
	return last.Messages[len(last.Messages)-1].Content
}

func newTestSummarizer(t *testing.T, gen *fakeGenerator) *Summarizer {
	t.Helper()
	prompts, err := template.Load("")
	require.NoError(t, err)
	return NewSummarizer(gen, prompts, nil)
}

func testStory() *types.Story {
	return &types.Story{
		ID:    8863,
		Title: "My YC app: Dropbox",
		URL:   "https://example.com/dropbox.pdf",
		Score: 111,
		Comments: []types.Comment{
			{ID: 1, Text: "Looks <i>great</i> &amp; simple"},
			{ID: 2, Text: ""},
		},
	}
}

func TestSummarizeStory_PrimaryContent(t *testing.T) {
	gen := &fakeGenerator{responses: []*platforms.Response{{Content: "  Dropboxの紹介記事です。  "}}}
	s := newTestSummarizer(t, gen)

	fetch := types.FetchSuccess("Article body about syncing files.", "readability")
	got := s.SummarizeStory(t.Context(), 1, testStory(), &fetch)

	assert.Equal(t, "Dropboxの紹介記事です。", got)
	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, 0.6, req.Temperature)
	assert.Equal(t, 600, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, platforms.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "Article body about syncing files.")
	assert.Contains(t, req.Messages[1].Content, "- Looks great & simple")
}

func TestSummarizeStory_SkippedArticlePlaceholder(t *testing.T) {
	gen := &fakeGenerator{responses: []*platforms.Response{{Content: "要約"}}}
	s := newTestSummarizer(t, gen)

	story := testStory()
	fetcher := NewArticleFetcher(FetcherConfig{Enabled: true}, nil, nil)
	fetch := fetcher.Fetch(t.Context(), story.URL)
	require.Equal(t, ReasonSkipped, fetch.Error)

	s.SummarizeStory(t.Context(), 1, story, &fetch)

	assert.Contains(t, gen.lastUserPrompt(), UnavailablePlaceholder("skipped"))
}

func TestSummarizeStory_NoArticleForDiscussion(t *testing.T) {
	gen := &fakeGenerator{responses: []*platforms.Response{{Content: "要約"}}}
	s := newTestSummarizer(t, gen)

	story := &types.Story{ID: 5, Title: "Ask HN: What are you working on?", Score: 40}
	fetch := types.FetchFailure(ReasonSkipped)
	s.SummarizeStory(t.Context(), 3, story, &fetch)

	prompt := gen.lastUserPrompt()
	assert.Contains(t, prompt, NoArticlePlaceholder)
	assert.Contains(t, prompt, "https://news.ycombinator.com/item?id=5")
	assert.Contains(t, prompt, NoCommentsText)
}

func TestSummarizeStory_FetchDisabledOmitsArticle(t *testing.T) {
	gen := &fakeGenerator{responses: []*platforms.Response{{Content: "要約"}}}
	s := newTestSummarizer(t, gen)

	s.SummarizeStory(t.Context(), 1, testStory(), nil)

	assert.NotContains(t, gen.lastUserPrompt(), "記事本文:")
}

func TestSummarizeStory_RecoversFromReasoning(t *testing.T) {
	gen := &fakeGenerator{responses: []*platforms.Response{{Content: " ", Reasoning: "Let's think.\n\n記事は興味深い。"}}}
	s := newTestSummarizer(t, gen)

	got := s.SummarizeStory(t.Context(), 1, testStory(), nil)
	assert.Equal(t, "記事は興味深い。", got)
}

func TestSummarizeStory_EmptyFallbackIsDeterministic(t *testing.T) {
	story := testStory()
	want := "My YC app: Dropbox (https://example.com/dropbox.pdf) の要約を生成できませんでした。 スコア: 111。主要コメント: - Looks great & simple"

	for range 2 {
		s := newTestSummarizer(t, &fakeGenerator{responses: []*platforms.Response{{Content: "", Reasoning: "   "}}})
		assert.Equal(t, want, s.SummarizeStory(t.Context(), 1, story, nil))
	}
}

func TestSummarizeStory_ErrorFallback(t *testing.T) {
	story := testStory()
	want := "My YC app: Dropbox (https://example.com/dropbox.pdf) の要約生成に失敗しました。"

	for range 2 {
		s := newTestSummarizer(t, &fakeGenerator{err: errors.New("connection reset")})
		got := s.SummarizeStory(t.Context(), 1, story, nil)
		assert.Equal(t, want, got)
		assert.NotEmpty(t, strings.TrimSpace(got))
	}
}

func TestAggregates_UseAllSummaries(t *testing.T) {
	gen := &fakeGenerator{responses: []*platforms.Response{{Content: "まとめ"}}}
	s := newTestSummarizer(t, gen)

	summaries := []types.Summary{
		{Stage: types.StageStory, Text: "一つ目の要約"},
		{Stage: types.StageStory, Text: "二つ目の要約"},
	}

	assert.Equal(t, "まとめ", s.SummarizeOverall(t.Context(), summaries))
	assert.Contains(t, gen.lastUserPrompt(), "以下の2件の記事要約")
	assert.Contains(t, gen.lastUserPrompt(), "一つ目の要約\n\n二つ目の要約")
	assert.Equal(t, 0.5, gen.requests[0].Temperature)
	assert.Equal(t, 400, gen.requests[0].MaxTokens)

	assert.Equal(t, "まとめ", s.ExtractThemes(t.Context(), summaries))
	assert.Equal(t, 400, gen.requests[1].MaxTokens)

	assert.Equal(t, "まとめ", s.SummarizeInsights(t.Context(), summaries))
	assert.Equal(t, 600, gen.requests[2].MaxTokens)
}

func TestAggregates_Fallbacks(t *testing.T) {
	summaries := []types.Summary{{Stage: types.StageStory, Text: "要約"}}

	failing := newTestSummarizer(t, &fakeGenerator{err: errors.New("boom")})
	assert.Equal(t, OverallFallback, failing.SummarizeOverall(t.Context(), summaries))
	assert.Equal(t, ThemesFallback, failing.ExtractThemes(t.Context(), summaries))
	assert.Equal(t, InsightsFallback, failing.SummarizeInsights(t.Context(), summaries))

	empty := newTestSummarizer(t, &fakeGenerator{responses: []*platforms.Response{{Reasoning: "No idea."}}})
	assert.Equal(t, "No idea.", empty.SummarizeOverall(t.Context(), summaries))

	blank := newTestSummarizer(t, &fakeGenerator{})
	assert.Equal(t, ThemesFallback, blank.ExtractThemes(t.Context(), summaries))
}
