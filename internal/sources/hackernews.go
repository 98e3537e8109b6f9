package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"hnreport/internal/types"
)

const DefaultHackerNewsAPI = "https://hacker-news.firebaseio.com/v0"

type HackerNewsConfig struct {
	APIURL       string
	StoryType    string
	MaxItems     int
	CommentCount int
	Timeout      time.Duration
	Logger       *slog.Logger
}

type HackerNewsSource struct {
	name         string
	apiURL       string
	httpClient   *http.Client
	maxItems     int
	commentCount int
	storyType    string
	logger       *slog.Logger
}

type hnItem struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	By          string  `json:"by"`
	Time        int64   `json:"time"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Text        string  `json:"text"`
	Score       int     `json:"score"`
	Descendants int     `json:"descendants"`
	Kids        []int64 `json:"kids"`
	Deleted     bool    `json:"deleted"`
	Dead        bool    `json:"dead"`
}

func NewHackerNewsSource(name string, config HackerNewsConfig) *HackerNewsSource {
	if config.APIURL == "" {
		config.APIURL = DefaultHackerNewsAPI
	}
	if config.StoryType == "" {
		config.StoryType = "topstories"
	}
	if config.MaxItems <= 0 {
		config.MaxItems = 5
	}
	if config.CommentCount < 0 {
		config.CommentCount = 0
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &HackerNewsSource{
		name:         name,
		apiURL:       config.APIURL,
		httpClient:   &http.Client{Timeout: config.Timeout},
		maxItems:     config.MaxItems,
		commentCount: config.CommentCount,
		storyType:    config.StoryType,
		logger:       config.Logger,
	}
}

func (h *HackerNewsSource) Name() string {
	return h.name
}

// TopStories returns up to limit stories in ranking order, each with up to
// CommentCount top-level comments. Stories that fail to load are skipped and
// the next ranked id is tried instead. limit <= 0 means MaxItems.
func (h *HackerNewsSource) TopStories(ctx context.Context, limit int) ([]*types.Story, error) {
	if limit <= 0 {
		limit = h.maxItems
	}

	ids, err := h.fetchStoryIDs(ctx)
	if err != nil {
		return nil, err
	}
	h.logger.Info("Fetched story IDs", "source", h.name, "story_type", h.storyType, "count", len(ids), "limit", limit)

	stories := make([]*types.Story, 0, limit)
	for _, id := range ids {
		if len(stories) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return stories, err
		}

		item, err := h.fetchItem(ctx, id)
		if err != nil || item == nil || item.Deleted || item.Dead {
			h.logger.Warn("Skipping story", "source", h.name, "id", id, "error", err)
			continue
		}

		story := &types.Story{
			ID:          item.ID,
			Title:       item.Title,
			URL:         item.URL,
			Score:       item.Score,
			Descendants: item.Descendants,
			Kids:        item.Kids,
		}
		if item.Type == "story" {
			story.Comments = h.fetchComments(ctx, item.Kids)
		}

		stories = append(stories, story)
		h.logger.Info("Collected story", "source", h.name, "n", len(stories), "limit", limit, "id", story.ID, "title", story.Title, "score", story.Score)
	}

	return stories, nil
}

func (h *HackerNewsSource) fetchComments(ctx context.Context, kids []int64) []types.Comment {
	if len(kids) > h.commentCount {
		kids = kids[:h.commentCount]
	}

	comments := make([]types.Comment, 0, len(kids))
	for _, id := range kids {
		item, err := h.fetchItem(ctx, id)
		if err != nil {
			h.logger.Debug("Skipping comment", "source", h.name, "id", id, "error", err)
			continue
		}
		if item == nil || item.Deleted || item.Dead || item.Text == "" {
			continue
		}
		comments = append(comments, types.Comment{ID: item.ID, By: item.By, Text: item.Text})
	}
	return comments
}

func (h *HackerNewsSource) fetchStoryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := h.getJSON(ctx, fmt.Sprintf("%s/%s.json", h.apiURL, h.storyType), &ids); err != nil {
		return nil, fmt.Errorf("failed to fetch story IDs: %w", err)
	}
	return ids, nil
}

// fetchItem returns nil without error when the API answers "null".
func (h *HackerNewsSource) fetchItem(ctx context.Context, id int64) (*hnItem, error) {
	var item *hnItem
	if err := h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.apiURL, id), &item); err != nil {
		return nil, fmt.Errorf("failed to fetch item %d: %w", id, err)
	}
	return item, nil
}

func (h *HackerNewsSource) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
