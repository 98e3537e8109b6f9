package processors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"hnreport/internal/types"
	"hnreport/internal/utils"
)

const DefaultMinSummaryLength = 50

var aggregateNotices = map[types.Stage]string{
	types.StageOverall:  "⚠ 全体の要約を十分に生成できませんでしたが、上記の各記事サマリーから本日の動向を確認してください。",
	types.StageThemes:   "⚠ 主要テーマを十分に抽出できませんでしたが、上記の各記事サマリーをご参照ください。",
	types.StageInsights: "⚠ エンジニア向けインサイトを十分に生成できませんでしたが、上記の各記事サマリーをご参照ください。",
}

// SummaryGate is the minimum length check every summary passes before it is
// delivered or fed into an aggregate prompt.
type SummaryGate struct {
	minLength int
}

func NewSummaryGate(minLength int) *SummaryGate {
	if minLength <= 0 {
		minLength = DefaultMinSummaryLength
	}
	return &SummaryGate{minLength: minLength}
}

func (g *SummaryGate) MinLength() int {
	return g.minLength
}

// Check returns a *types.FilteredError when summary is too short.
func (g *SummaryGate) Check(summary types.Summary) error {
	if summary.Accepted(g.minLength) {
		return nil
	}

	length := utf8.RuneCountInString(strings.TrimSpace(summary.Text))
	return types.NewFilteredError(summary.Stage, summary.ID(), "summary too short").
		WithDetail("length", length).
		WithDetail("min_length", g.minLength)
}

// Accepted keeps the summaries that pass Check, in order.
func (g *SummaryGate) Accepted(summaries []types.Summary) []types.Summary {
	return utils.FilterArray(summaries, func(s types.Summary) bool {
		return g.Check(s) == nil
	})
}

// Guard replaces a short aggregate text with a notice pointing readers at the
// story summaries already delivered.
func (g *SummaryGate) Guard(summary types.Summary) types.Summary {
	if g.Check(summary) == nil {
		return summary
	}

	notice, ok := aggregateNotices[summary.Stage]
	if !ok {
		notice = fmt.Sprintf("⚠ %s を生成できませんでした。", summary.Stage)
	}
	summary.Text = notice
	return summary
}
