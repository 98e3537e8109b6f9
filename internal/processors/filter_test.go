package processors

import (
	"strings"
	"testing"

	"hnreport/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryGate_Check(t *testing.T) {
	gate := NewSummaryGate(50)

	long := types.Summary{Stage: types.StageStory, Story: &types.Story{ID: 1}, Text: strings.Repeat("長", 50)}
	assert.NoError(t, gate.Check(long))

	short := types.Summary{Stage: types.StageStory, Story: &types.Story{ID: 2}, Text: "  短い  "}
	err := gate.Check(short)
	require.Error(t, err)
	_, ok := types.AsFiltered(err)
	assert.True(t, ok)

	var fe *types.FilteredError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "hn_2", fe.ItemID)
	assert.Equal(t, 2, fe.Details["length"])
}

func TestSummaryGate_DefaultMinLength(t *testing.T) {
	assert.Equal(t, DefaultMinSummaryLength, NewSummaryGate(0).MinLength())
}

func TestSummaryGate_AcceptedKeepsOrder(t *testing.T) {
	gate := NewSummaryGate(5)
	in := []types.Summary{
		{Stage: types.StageStory, Text: "first summary"},
		{Stage: types.StageStory, Text: "no"},
		{Stage: types.StageStory, Text: "third summary"},
	}

	out := gate.Accepted(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first summary", out[0].Text)
	assert.Equal(t, "third summary", out[1].Text)
}

func TestSummaryGate_GuardAggregates(t *testing.T) {
	gate := NewSummaryGate(50)

	guarded := gate.Guard(types.Summary{Stage: types.StageOverall, Text: OverallFallback})
	assert.True(t, strings.HasPrefix(guarded.Text, "⚠ 全体の要約を十分に生成できませんでした"))

	kept := types.Summary{Stage: types.StageThemes, Text: strings.Repeat("テーマ", 20)}
	assert.Equal(t, kept, gate.Guard(kept))
}
