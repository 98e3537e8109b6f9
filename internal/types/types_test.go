package types

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanComment(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"tags and entities", "I think <i>this</i> is &quot;fine&quot; &amp; good", `I think this is "fine" & good`},
		{"paragraphs", "first<p>second", "first second"},
		{"link", `see <a href="https://example.com">here</a>`, "see here"},
		{"blank", "  <p>  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanComment(tt.raw))
		})
	}
}

func TestCleanComment_Truncates(t *testing.T) {
	raw := strings.Repeat("あ", 250)

	got := CleanComment(raw)

	assert.Equal(t, 203, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(got, strings.Repeat("あ", 200)))
}

func TestStory_DisplayURL(t *testing.T) {
	withURL := &Story{ID: 1, URL: "https://example.com/a"}
	assert.Equal(t, "https://example.com/a", withURL.DisplayURL())

	askHN := &Story{ID: 42}
	assert.Equal(t, "https://news.ycombinator.com/item?id=42", askHN.DisplayURL())
}

func TestStory_CleanedComments_DropsEmpty(t *testing.T) {
	s := &Story{Comments: []Comment{{Text: "<p>"}, {Text: "ok"}, {Text: ""}}}
	assert.Equal(t, []string{"ok"}, s.CleanedComments())
}

func TestFetchResult(t *testing.T) {
	ok := FetchSuccess("body", "readability")
	assert.True(t, ok.OK())
	assert.Empty(t, ok.Error)

	failed := FetchFailure("skipped")
	assert.False(t, failed.OK())
	assert.Empty(t, failed.Content)
	assert.Empty(t, failed.Method)
}

func TestSummary_Accepted(t *testing.T) {
	assert.False(t, Summary{Text: "   short   "}.Accepted(50))
	assert.True(t, Summary{Text: strings.Repeat("要", 50)}.Accepted(50))
	assert.False(t, Summary{Text: strings.Repeat("要", 49) + "\n\n"}.Accepted(50))
}

func TestFilteredError(t *testing.T) {
	err := NewFilteredError(StageStory, "hn_1", "summary too short").WithDetail("length", 3)

	wrapped := fmt.Errorf("story 1: %w", err)
	fe, ok := AsFiltered(wrapped)
	require.True(t, ok)
	assert.Same(t, err, fe)
	assert.Contains(t, err.Error(), "summary too short")
	assert.Equal(t, 3, fe.Details["length"])

	_, ok = AsFiltered(assert.AnError)
	assert.False(t, ok)
}

func TestSummary_Message(t *testing.T) {
	story := Summary{Stage: StageStory, Story: &Story{ID: 7}, Text: "本文"}
	assert.Equal(t, "本文", story.Message())
	assert.Equal(t, "hn_7", story.ID())

	overall := Summary{Stage: StageOverall, Text: "まとめ"}
	assert.Equal(t, "## 全体まとめ\nまとめ", overall.Message())
	assert.Equal(t, "overall", overall.ID())
}
