package extract

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleBody = "The quick brown fox jumps over the lazy dog while the compiler keeps running in the background."

type stubStrategy struct {
	name  string
	text  string
	err   error
	panic bool
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(string) (string, error) {
	s.calls++
	if s.panic {
		panic("boom")
	}
	return s.text, s.err
}

func TestCascade_FirstPassingStageWins(t *testing.T) {
	first := &stubStrategy{name: "first", text: "too short"}
	second := &stubStrategy{name: "second", text: articleBody}
	third := &stubStrategy{name: "third", text: articleBody + " third"}

	text, method, ok := NewCascade(nil, first, second, third).Extract("<html></html>")

	require.True(t, ok)
	assert.Equal(t, "second", method)
	assert.Equal(t, articleBody, text)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, third.calls)
}

func TestCascade_SwallowsErrorsAndPanics(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("parse error")}
	panicking := &stubStrategy{name: "panicking", panic: true}
	working := &stubStrategy{name: "working", text: articleBody}

	text, method, ok := NewCascade(nil, failing, panicking, working).Extract("x")

	require.True(t, ok)
	assert.Equal(t, "working", method)
	assert.Equal(t, articleBody, text)
}

func TestCascade_AllStagesFail(t *testing.T) {
	text, method, ok := NewCascade(nil,
		&stubStrategy{name: "a", text: ""},
		&stubStrategy{name: "b", text: strings.Repeat("x", MinContentLength)},
	).Extract("x")

	assert.False(t, ok)
	assert.Empty(t, text)
	assert.Empty(t, method)
}

func TestCascade_DefaultStagesNeverPanic(t *testing.T) {
	inputs := []string{
		"",
		"plain text, not markup",
		"<html><body><p>short</p></body></html>",
		"<<<>>><div><p>unclosed",
		"<html><body><script>var x = '" + strings.Repeat("a", 500) + "';</script></body></html>",
		strings.Repeat("<div>", 2000),
	}

	cascade := NewCascade(nil)
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			text, _, ok := cascade.Extract(in)
			if ok {
				assert.Greater(t, utf8.RuneCountInString(text), MinContentLength)
			} else {
				assert.Empty(t, text)
			}
		})
	}
}

func TestCascade_DefaultStagesEnforceQualityGate(t *testing.T) {
	page := func(body string) string {
		return "<html><body>" + body + "</body></html>"
	}

	cases := []struct {
		name   string
		markup string
		ok     bool
	}{
		{"empty document", page(""), false},
		{"short article", page("<article><p>Too short to matter.</p></article>"), false},
		{"boilerplate only", `<html><head><title>Home</title></head><body>
<header><p>Acme Blog</p></header>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<script>var tracking = "` + strings.Repeat("t", 400) + `";</script>
<footer><p>© 2024 Acme</p></footer>
</body></html>`, false},
		{"fifty characters", page("<article><p>" + strings.Repeat("a", MinContentLength) + "</p></article>"), false},
		{"fifty-one characters", page("<article><p>" + strings.Repeat("a", MinContentLength+1) + "</p></article>"), true},
	}

	cascade := NewCascade(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, method, ok := cascade.Extract(tc.markup)

			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				assert.Empty(t, text)
				assert.Empty(t, method)
				return
			}
			assert.Equal(t, MinContentLength+1, utf8.RuneCountInString(text))
			assert.Equal(t, "structural", method)
		})
	}
}

type pageStub struct {
	stubStrategy
	pageURL *url.URL
}

func (s *pageStub) ExtractPage(markup string, pageURL *url.URL) (string, error) {
	s.pageURL = pageURL
	return s.text, nil
}

func TestCascade_PassesPageURL(t *testing.T) {
	stage := &pageStub{stubStrategy: stubStrategy{name: "page", text: articleBody}}
	pageURL, err := url.Parse("https://blog.example.com/posts/scheduler")
	require.NoError(t, err)

	text, method, ok := NewCascade(nil, stage).ExtractFrom("<html></html>", pageURL)

	require.True(t, ok)
	assert.Equal(t, "page", method)
	assert.Equal(t, articleBody, text)
	assert.Equal(t, pageURL, stage.pageURL)
	assert.Zero(t, stage.calls)

	// Without a URL the plain Extract path is used.
	_, _, ok = NewCascade(nil, stage).Extract("<html></html>")
	require.True(t, ok)
	assert.Equal(t, 1, stage.calls)
}

func TestReadabilityExtractor_UsesPageURL(t *testing.T) {
	markup := `<html><head><title>Post</title></head><body><div>
<p>` + articleBody + `</p>
<p>` + articleBody + ` <a href="/next">Read more</a></p>
</div></body></html>`
	pageURL, err := url.Parse("https://blog.example.com/posts/scheduler")
	require.NoError(t, err)

	text, err := NewReadabilityExtractor().ExtractPage(markup, pageURL)

	require.NoError(t, err)
	assert.Contains(t, text, articleBody)
}

func TestStructuralExtractor_ReadsMainContainer(t *testing.T) {
	markup := `<html><body>
<nav><p>Home About Contact Subscribe to the newsletter for more content</p></nav>
<article><h1>Title</h1><p>` + articleBody + `</p><script>tracking()</script></article>
<footer><p>Copyright</p></footer>
</body></html>`

	text, err := NewStructuralExtractor().Extract(markup)

	require.NoError(t, err)
	assert.Contains(t, text, articleBody)
	assert.Contains(t, text, "Title")
	assert.NotContains(t, text, "newsletter")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "Copyright")
}

func TestStructuralExtractor_NoContainer(t *testing.T) {
	text, err := NewStructuralExtractor().Extract("<html><body><p>" + articleBody + "</p></body></html>")

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestBasicExtractor_RemovesChrome(t *testing.T) {
	markup := `<html><body>
<header><p>Site header text</p></header>
<div><p>First paragraph.</p><p>Second   paragraph.</p></div>
<aside><p>Related links</p></aside>
<footer><p>Footer text</p></footer>
</body></html>`

	text, err := NewBasicExtractor().Extract(markup)

	require.NoError(t, err)
	assert.Equal(t, "First paragraph. Second paragraph.", text)
}

func TestCascade_FallsBackToBasicStage(t *testing.T) {
	paragraph := strings.Repeat("Go makes concurrent programs easier to write. ", 3)
	markup := "<html><body><div><p>" + paragraph + "</p></div></body></html>"

	cascade := NewCascade(nil, NewStructuralExtractor(), NewBasicExtractor())
	text, method, ok := cascade.Extract(markup)

	require.True(t, ok)
	assert.Equal(t, "basic", method)
	assert.Equal(t, strings.TrimSpace(paragraph), text)
}

func TestTruncate_ShortTextUnchanged(t *testing.T) {
	for _, in := range []string{"", "short", strings.Repeat("x", 100)} {
		assert.Equal(t, in, Truncate(in, 100))
	}
}

func TestTruncate_KeepsHeadAndTail(t *testing.T) {
	budgets := []int{30, 100, 1000, 4000}

	for _, budget := range budgets {
		var sb strings.Builder
		for i := 0; sb.Len() < budget*3; i++ {
			sb.WriteString(string(rune('a' + i%26)))
		}
		text := sb.String()

		out := Truncate(text, budget)
		head, tail := TruncateParts(budget)

		assert.LessOrEqual(t, utf8.RuneCountInString(out), budget+utf8.RuneCountInString(Marker))
		assert.True(t, strings.HasPrefix(out, text[:head]))
		assert.True(t, strings.HasSuffix(out, text[len(text)-tail:]))
		assert.Contains(t, out, Marker)
	}
}

func TestTruncate_CountsCharacters(t *testing.T) {
	text := strings.Repeat("日", 60) + strings.Repeat("本", 60)

	out := Truncate(text, 100)

	assert.Equal(t, strings.Repeat("日", 60)+Marker+strings.Repeat("本", 20), out)
	assert.True(t, utf8.ValidString(out))
}
