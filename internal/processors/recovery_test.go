package processors

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestRecoverAnswer_ReasoningThenJapanese(t *testing.T) {
	assert.Equal(t, "記事は興味深い。", RecoverAnswer("Let's think.\n\n記事は興味深い。"))
}

func TestRecoverAnswer_NoTargetScriptIsIdentity(t *testing.T) {
	inputs := []string{
		"",
		"Plain English answer.",
		"## Heading\n\n1. first\n2. second\n\n",
		"Mixed\r\n\r\nline endings",
	}
	for _, in := range inputs {
		assert.Equal(t, in, RecoverAnswer(in))
	}
}

func TestRecoverAnswer_SkipsEnglishHeaders(t *testing.T) {
	in := "We need a summary in Japanese.\n\n" +
		"## Summary\n**Title**: 新しいデータベース\n1. 要点\nこの記事は新しいデータベースを紹介している。\n- 性能が高い"

	got := RecoverAnswer(in)

	assert.Equal(t, "この記事は新しいデータベースを紹介している。\n- 性能が高い", got)
}

func TestRecoverAnswer_AllLinesHeaders(t *testing.T) {
	in := "Draft:\n\nTitle: 記事\nNote: 要約"
	assert.Equal(t, "Title: 記事\nNote: 要約", RecoverAnswer(in))
}

func TestRecoverAnswer_KeepsOnlyTargetSections(t *testing.T) {
	in := "First, list the points.\n\n要点は三つある。\n\nThen write it up.\n\n結論として重要だ。"
	assert.Equal(t, "要点は三つある。\n\n結論として重要だ。", RecoverAnswer(in))
}

func TestAnswerRecovery_OtherScript(t *testing.T) {
	r := NewAnswerRecovery(unicode.Cyrillic)
	assert.Equal(t, "Привет мир", r.Recover("Thinking...\n\nПривет мир"))
	assert.Equal(t, "no cyrillic", r.Recover("no cyrillic"))
}
