package processors

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Japanese covers hiragana, katakana and CJK ideographs.
var Japanese = rangetable.Merge(unicode.Hiragana, unicode.Katakana, unicode.Han)

var (
	sectionSeparator = regexp.MustCompile(`\n[ \t\r]*\n`)

	// Markdown headings, bold English labels, "Label:" lines and list
	// markers in front of English text.
	headerPattern = regexp.MustCompile(`^\s*(?:#{1,6}\s|\*\*[A-Za-z]|[A-Za-z][A-Za-z0-9 '"/()&-]*:|(?:\d{1,3}|[A-Za-z])[.)]\s|[-*•]\s+[A-Za-z])`)
)

// AnswerRecovery pulls the final answer out of a reasoning channel that mixes
// working notes in one script with the answer in another.
type AnswerRecovery struct {
	script *unicode.RangeTable
}

func NewAnswerRecovery(script *unicode.RangeTable) *AnswerRecovery {
	if script == nil {
		script = Japanese
	}
	return &AnswerRecovery{script: script}
}

// RecoverAnswer applies the Japanese recovery filter.
func RecoverAnswer(text string) string {
	return NewAnswerRecovery(Japanese).Recover(text)
}

// Recover keeps the blank-line separated sections that contain target-script
// characters, then drops leading header lines. Input without any target-script
// character is returned unchanged.
func (a *AnswerRecovery) Recover(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	kept := make([]string, 0)
	for _, section := range sectionSeparator.Split(normalized, -1) {
		if a.containsScript(section) {
			kept = append(kept, strings.TrimSpace(section))
		}
	}

	if len(kept) == 0 {
		return text
	}

	block := strings.Join(kept, "\n\n")
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if headerPattern.MatchString(line) {
			continue
		}
		if a.containsScript(line) {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}

	return block
}

func (a *AnswerRecovery) containsScript(s string) bool {
	for _, r := range s {
		if unicode.Is(a.script, r) {
			return true
		}
	}
	return false
}
