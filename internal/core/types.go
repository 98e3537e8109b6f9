package core

import (
	"context"
	"errors"
	"time"

	"hnreport/internal/types"
)

var (
	ErrDelivery       = errors.New("delivery failed")
	ErrNoStories      = errors.New("no stories fetched")
	ErrNoSummaries    = errors.New("no story summary passed the length gate")
	ErrAlreadyRunning = errors.New("pipeline already running")
)

type StorySource interface {
	Name() string
	TopStories(ctx context.Context, limit int) ([]*types.Story, error)
}

// ArticleFetcher is consulted only when Enabled reports true.
type ArticleFetcher interface {
	Enabled() bool
	Fetch(ctx context.Context, url string) types.FetchResult
}

// Resetter is implemented by fetchers that hold state which must not outlive
// a run.
type Resetter interface {
	Reset()
}

type Summarizer interface {
	SummarizeStory(ctx context.Context, index int, story *types.Story, fetch *types.FetchResult) string
	SummarizeOverall(ctx context.Context, summaries []types.Summary) string
	ExtractThemes(ctx context.Context, summaries []types.Summary) string
	SummarizeInsights(ctx context.Context, summaries []types.Summary) string
}

type Target interface {
	Name() string
	Initialize(ctx context.Context) error
	Publish(ctx context.Context, summary types.Summary) error
	Shutdown(ctx context.Context) error
}

// Flusher is implemented by targets that buffer a run and write it out once
// every summary has been published.
type Flusher interface {
	Flush(ctx context.Context) error
}

type RunReport struct {
	Stories   int
	Fetched   int
	Accepted  int
	Filtered  int
	Published int
	Started   time.Time
	Duration  time.Duration
}
