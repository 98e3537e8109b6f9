package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BuiltinStoryPrompt(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)

	system, user, err := p.Render(Story, map[string]any{
		"Index":       2,
		"Title":       "Show HN: a tiny database",
		"URL":         "https://example.com/db",
		"Score":       321,
		"ShowArticle": true,
		"Article":     "記事本文を取得できませんでした（理由: skipped）",
		"Comments":    "- nice",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "テクノロジーニュースのライター")
	assert.Contains(t, user, "トップ記事 2")
	assert.Contains(t, user, "URL: https://example.com/db")
	assert.Contains(t, user, "スコア: 321")
	assert.Contains(t, user, "記事本文:\n記事本文を取得できませんでした（理由: skipped）")
	assert.Contains(t, user, "主なコメント:\n- nice")
}

func TestLoad_StoryPromptWithoutArticle(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)

	_, user, err := p.Render(Story, map[string]any{
		"Index": 1, "Title": "t", "URL": "u", "Score": 1,
		"ShowArticle": false, "Article": "", "Comments": "コメントなし",
	})
	require.NoError(t, err)
	assert.NotContains(t, user, "記事本文:")
}

func TestLoad_OverallLeadDependsOnCount(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)

	_, one, err := p.Render(Overall, map[string]any{"Count": 1, "Joined": "a"})
	require.NoError(t, err)
	assert.Contains(t, one, "以下の記事要約を元に")

	_, many, err := p.Render(Overall, map[string]any{"Count": 4, "Joined": "a"})
	require.NoError(t, err)
	assert.Contains(t, many, "以下の4件の記事要約を元に")
}

func TestLoad_DirectoryOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	override := `{{define "themes.user"}}custom {{.Count}}{{end}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "themes.tmpl"), []byte(override), 0o644))

	p, err := Load(dir)
	require.NoError(t, err)

	system, user, err := p.Render(Themes, map[string]any{"Count": 3, "Joined": "x"})
	require.NoError(t, err)
	assert.Equal(t, "custom 3", user)
	assert.NotEmpty(t, system)
}

func TestLoad_InvalidOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.tmpl"), []byte(`{{define "x"}}{{.Broken`), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
