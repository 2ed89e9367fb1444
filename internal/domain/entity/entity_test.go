package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidWorldType(t *testing.T) {
	valid := []WorldType{
		WorldTypeHighFantasy, WorldTypeUrbanFantasy, WorldTypeScienceFiction,
		WorldTypeHistoricalFiction, WorldTypeContemporary, WorldTypeDystopian, WorldTypeOther,
	}
	for _, wt := range valid {
		assert.True(t, ValidWorldType(wt), string(wt))
	}

	assert.False(t, ValidWorldType("steampunk"))
	assert.False(t, ValidWorldType(""))
}

func TestNewWorldBuilding_UnknownTypeFallsBackToOther(t *testing.T) {
	w := NewWorldBuilding("user-1", "session-1", "plot-1", "艾泽大陆", "steampunk", "概述")
	assert.Equal(t, WorldTypeOther, w.WorldType)

	w = NewWorldBuilding("user-1", "session-1", "plot-1", "艾泽大陆", WorldTypeHighFantasy, "概述")
	assert.Equal(t, WorldTypeHighFantasy, w.WorldType)
	assert.NotEmpty(t, w.ID)
}

func TestImprovementSession_IterationBookkeeping(t *testing.T) {
	s := NewImprovementSession("user-1", "session-1", ContentTypePlot, "原始内容", 9.0, 3)
	assert.Zero(t, s.LastScore())
	assert.False(t, s.Status.Terminal())

	it := NewIteration("原始内容")
	it.EnhancedContent = "改进后的内容"
	it.Score = 7.5
	s.AppendIteration(it)

	require.Len(t, s.Iterations, 1)
	assert.Equal(t, 1, s.Iterations[0].Number)
	assert.Equal(t, 1, s.IterationCount)
	assert.Equal(t, "改进后的内容", s.FinalContent)
	assert.InDelta(t, 7.5, s.LastScore(), 1e-9)

	s.Complete(ImprovementStatusCompletedScore)
	assert.True(t, s.Status.Terminal())
}

func TestConversationSession_RefsRoundTrip(t *testing.T) {
	s := NewConversationSession("session-1", "user-1")
	assert.Empty(t, s.Refs())

	s.SetRefs(ContentRefs{ContentTypePlot: "plot-1", ContentTypeWorld: "world-1"})
	refs := s.Refs()
	assert.Equal(t, "plot-1", refs[ContentTypePlot])
	assert.Equal(t, "world-1", refs[ContentTypeWorld])
}
