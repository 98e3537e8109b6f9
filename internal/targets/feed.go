package targets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hnreport/internal/types"

	"github.com/gorilla/feeds"
)

type FeedConfig struct {
	Path   string
	Title  string
	Link   string
	Logger *slog.Logger
}

// FeedTarget collects one run's digest and writes it as an Atom document
// when the run completes. Each run replaces the previous file.
type FeedTarget struct {
	name   string
	config FeedConfig
	items  []*feeds.Item
	mu     sync.Mutex
	now    func() time.Time
}

func NewFeedTarget(name string, config FeedConfig) *FeedTarget {
	if config.Path == "" {
		config.Path = "digest.atom"
	}
	if config.Title == "" {
		config.Title = "Hacker News Daily Digest"
	}
	if config.Link == "" {
		config.Link = "https://" + types.DiscussionHost + "/"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &FeedTarget{
		name:   name,
		config: config,
		now:    time.Now,
	}
}

func (f *FeedTarget) Name() string {
	return f.name
}

func (f *FeedTarget) Initialize(ctx context.Context) error {
	dir := filepath.Dir(f.config.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("feed target %s: failed to create %s: %w", f.name, dir, err)
	}
	return nil
}

func (f *FeedTarget) Publish(ctx context.Context, summary types.Summary) error {
	item := f.convertToFeedItem(summary)

	f.mu.Lock()
	f.items = append(f.items, item)
	count := len(f.items)
	f.mu.Unlock()

	f.config.Logger.Debug("Feed target added item", "target", f.name, "item_id", summary.ID(), "items", count)
	return nil
}

// Flush writes the collected items and starts a new digest.
func (f *FeedTarget) Flush(ctx context.Context) error {
	f.mu.Lock()
	items := f.items
	f.items = nil
	f.mu.Unlock()

	if len(items) == 0 {
		return nil
	}

	feed := &feeds.Feed{
		Title:       f.config.Title,
		Link:        &feeds.Link{Href: f.config.Link},
		Description: "Daily digest of Hacker News top stories",
		Author:      &feeds.Author{Name: "hnreport"},
		Created:     f.now().UTC(),
		Items:       items,
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return fmt.Errorf("feed target %s: failed to generate Atom: %w", f.name, err)
	}

	tmp := f.config.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(atom), 0o644); err != nil {
		return fmt.Errorf("feed target %s: failed to write %s: %w", f.name, tmp, err)
	}
	if err := os.Rename(tmp, f.config.Path); err != nil {
		return fmt.Errorf("feed target %s: failed to replace %s: %w", f.name, f.config.Path, err)
	}

	f.config.Logger.Info("Feed written", "target", f.name, "path", f.config.Path, "items", len(items), "bytes", len(atom))
	return nil
}

func (f *FeedTarget) Shutdown(ctx context.Context) error {
	return nil
}

func (f *FeedTarget) convertToFeedItem(summary types.Summary) *feeds.Item {
	created := f.now().UTC()

	title := strings.TrimSpace(strings.TrimPrefix(summary.Stage.Heading(), "##"))
	link := f.config.Link
	if summary.Story != nil {
		title = summary.Story.Title
		link = summary.Story.DisplayURL()
	}

	return &feeds.Item{
		Id:      fmt.Sprintf("%s-%s", summary.ID(), created.Format("20060102")),
		Title:   title,
		Link:    &feeds.Link{Href: link},
		Content: summary.Text,
		Author:  &feeds.Author{Name: "hnreport"},
		Created: created,
	}
}
