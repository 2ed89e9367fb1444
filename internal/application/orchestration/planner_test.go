package orchestration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/conversation"
	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/application/tool"
	"agent-writer-api/internal/domain/entity"
	pkgerrors "agent-writer-api/pkg/errors"
)

func planFor(t *testing.T, content string, params param.ParameterSet, convCtx *conversation.Context) *WorkflowPlan {
	t.Helper()
	plan, err := NewPlanner().Plan(context.Background(), &param.Request{Content: content}, params, convCtx)
	require.NoError(t, err)
	return plan
}

func TestPlan_SingleCategory(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType WorkflowType
		wantSeq  []agent.Kind
	}{
		{
			name:     "仅情节",
			content:  "Create a plot about a heist gone wrong",
			wantType: WorkflowPlotOnly,
			wantSeq:  []agent.Kind{agent.KindPlot},
		},
		{
			name:     "仅作者",
			content:  "Generate an author persona for thrillers",
			wantType: WorkflowAuthorOnly,
			wantSeq:  []agent.Kind{agent.KindAuthor},
		},
		{
			name:     "中文情节请求",
			content:  "帮我写一个悬疑剧情",
			wantType: WorkflowPlotOnly,
			wantSeq:  []agent.Kind{agent.KindPlot},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planFor(t, tt.content, param.ParameterSet{}, nil)
			assert.Equal(t, tt.wantType, plan.Type)
			assert.Equal(t, tt.wantSeq, plan.AgentSequence())
		})
	}
}

func TestPlan_PlotAuthorOrdering(t *testing.T) {
	// 先提到谁，谁先执行
	plan := planFor(t, "Create a plot and then an author to match", param.ParameterSet{}, nil)
	assert.Equal(t, WorkflowPlotThenAuthor, plan.Type)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, agent.KindPlot, plan.Steps[0].Agent)
	assert.Equal(t, agent.KindAuthor, plan.Steps[1].Agent)
	assert.Equal(t, []agent.Kind{agent.KindPlot}, plan.Steps[1].DependsOn)

	plan = planFor(t, "I want an author persona and a plot for them", param.ParameterSet{}, nil)
	assert.Equal(t, WorkflowAuthorThenPlot, plan.Type)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, agent.KindAuthor, plan.Steps[0].Agent)
	assert.Equal(t, agent.KindPlot, plan.Steps[1].Agent)
	// 作者在前时情节不依赖作者输出
	assert.Empty(t, plan.Steps[1].DependsOn)
}

func TestPlan_WorldWithoutPlotAsksForClarification(t *testing.T) {
	plan := planFor(t, "Build a world for my story", param.ParameterSet{}, nil)

	assert.True(t, plan.IsClarification())
	assert.Equal(t, WorkflowClarification, plan.Type)
	assert.NotEmpty(t, plan.Clarification)
	assert.Empty(t, plan.Steps)
}

func TestPlan_WorldOnlyWithResolvedPlot(t *testing.T) {
	convCtx := &conversation.Context{
		Refs: entity.ContentRefs{entity.ContentTypePlot: "plot-123"},
	}

	plan := planFor(t, "Build a world for my story", param.ParameterSet{}, convCtx)

	assert.Equal(t, WorkflowWorldOnly, plan.Type)
	require.Len(t, plan.Steps, 1)
	step := plan.Steps[0]
	assert.Equal(t, agent.KindWorldBuilding, step.Agent)
	assert.Equal(t, "plot-123", step.Refs[entity.ContentTypePlot])
}

func TestPlan_CharactersOnlyDependencies(t *testing.T) {
	// 只有情节引用，缺世界观
	convCtx := &conversation.Context{
		Refs: entity.ContentRefs{entity.ContentTypePlot: "plot-123"},
	}
	plan := planFor(t, "Give me a cast of characters", param.ParameterSet{}, convCtx)
	assert.True(t, plan.IsClarification())

	// 两个引用齐备
	convCtx.Refs[entity.ContentTypeWorld] = "world-456"
	plan = planFor(t, "Give me a cast of characters", param.ParameterSet{}, convCtx)
	assert.Equal(t, WorkflowCharactersOnly, plan.Type)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "plot-123", plan.Steps[0].Refs[entity.ContentTypePlot])
	assert.Equal(t, "world-456", plan.Steps[0].Refs[entity.ContentTypeWorld])
}

func TestPlan_LoreExpansionWithResolvedWorld(t *testing.T) {
	convCtx := &conversation.Context{
		Refs: entity.ContentRefs{entity.ContentTypeWorld: "world-456"},
	}

	tests := []struct {
		name    string
		content string
	}{
		{"英文短语", "Expand the lore of my world"},
		{"中文设定细节", "补充一些世界观设定细节"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planFor(t, tt.content, param.ParameterSet{}, convCtx)

			assert.Equal(t, WorkflowLoreExpansion, plan.Type)
			require.Len(t, plan.Steps, 1)
			step := plan.Steps[0]
			assert.Equal(t, agent.KindLoreExpansion, step.Agent)
			assert.Equal(t, tool.NameSaveLore, step.Tool)
			assert.Equal(t, []agent.Kind{agent.KindWorldBuilding}, step.DependsOn)
			assert.Equal(t, "world-456", step.Refs[entity.ContentTypeWorld])
		})
	}
}

func TestPlan_LoreExpansionWithoutWorldAsksForClarification(t *testing.T) {
	plan := planFor(t, "lore expansion please", param.ParameterSet{}, nil)

	assert.True(t, plan.IsClarification())
	assert.Equal(t, WorkflowClarification, plan.Type)
	assert.NotEmpty(t, plan.Clarification)
}

func TestPlan_CombinedFoundation(t *testing.T) {
	plan := planFor(t, "Create a plot, a world and characters for a space opera", param.ParameterSet{}, nil)

	assert.Equal(t, WorkflowCombinedFoundation, plan.Type)
	assert.Equal(t,
		[]agent.Kind{agent.KindPlot, agent.KindWorldBuilding, agent.KindCharacters},
		plan.AgentSequence(),
	)

	// 世界观依赖计划内的情节步骤，不需要外部引用
	assert.Equal(t, []agent.Kind{agent.KindPlot}, plan.Steps[1].DependsOn)
	assert.Empty(t, plan.Steps[1].Refs)
	assert.Equal(t, []agent.Kind{agent.KindPlot, agent.KindWorldBuilding}, plan.Steps[2].DependsOn)
}

func TestPlan_CombinedWithAuthorFirst(t *testing.T) {
	plan := planFor(t, "Create an author, then a plot and a world", param.ParameterSet{}, nil)

	assert.Equal(t, WorkflowCombinedFoundation, plan.Type)
	assert.Equal(t,
		[]agent.Kind{agent.KindAuthor, agent.KindPlot, agent.KindWorldBuilding},
		plan.AgentSequence(),
	)
}

func TestPlan_CombinedMissingDependency(t *testing.T) {
	// 世界观+角色但无情节来源
	plan := planFor(t, "Build a world and characters", param.ParameterSet{}, nil)
	assert.True(t, plan.IsClarification())
}

func TestPlan_Improvement(t *testing.T) {
	t.Run("参数引用优先", func(t *testing.T) {
		params := param.ParameterSet{
			ContentRef: &param.ContentRef{ID: "plot-123", Type: "plot"},
		}
		plan := planFor(t, "Please improve this", params, nil)
		assert.Equal(t, WorkflowIterativeImprovement, plan.Type)
		require.NotNil(t, plan.Improve)
		assert.Equal(t, "plot-123", plan.Improve.ID)
	})

	t.Run("会话引用唯一时可推断", func(t *testing.T) {
		convCtx := &conversation.Context{
			Refs: entity.ContentRefs{entity.ContentTypeWorld: "world-456"},
		}
		plan := planFor(t, "润色一下", param.ParameterSet{}, convCtx)
		assert.Equal(t, WorkflowIterativeImprovement, plan.Type)
		require.NotNil(t, plan.Improve)
		assert.Equal(t, "world-456", plan.Improve.ID)
		assert.Equal(t, string(entity.ContentTypeWorld), plan.Improve.Type)
	})

	t.Run("会话引用多于一条时不猜测", func(t *testing.T) {
		convCtx := &conversation.Context{
			Refs: entity.ContentRefs{
				entity.ContentTypePlot:  "plot-123",
				entity.ContentTypeWorld: "world-456",
			},
		}
		plan := planFor(t, "polish it please", param.ParameterSet{}, convCtx)
		assert.True(t, plan.IsClarification())
	})
}

func TestPlan_UnrecognizedIntent(t *testing.T) {
	plan := planFor(t, "Hello, how are you today?", param.ParameterSet{}, nil)
	assert.True(t, plan.IsClarification())
	assert.NotEmpty(t, plan.Clarification)
}

func TestWorkflowPlan_Validate(t *testing.T) {
	t.Run("依赖指向更早的步骤", func(t *testing.T) {
		plan := &WorkflowPlan{
			Type: WorkflowPlotThenAuthor,
			Steps: []PlanStep{
				{Agent: agent.KindPlot},
				{Agent: agent.KindAuthor, DependsOn: []agent.Kind{agent.KindPlot}},
			},
		}
		assert.NoError(t, plan.Validate())
	})

	t.Run("未解析的依赖判定为畸形计划", func(t *testing.T) {
		plan := &WorkflowPlan{
			Type: WorkflowWorldOnly,
			Steps: []PlanStep{
				{Agent: agent.KindWorldBuilding, DependsOn: []agent.Kind{agent.KindPlot}},
			},
		}
		err := plan.Validate()
		require.Error(t, err)
		var appErr *pkgerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkgerrors.CodeMalformedPlan, appErr.Code)
	})

	t.Run("空计划非法", func(t *testing.T) {
		plan := &WorkflowPlan{Type: WorkflowPlotOnly}
		assert.Error(t, plan.Validate())
	})

	t.Run("改进计划必须带引用", func(t *testing.T) {
		plan := &WorkflowPlan{Type: WorkflowIterativeImprovement}
		assert.Error(t, plan.Validate())

		plan.Improve = &param.ContentRef{ID: "plot-123", Type: "plot"}
		assert.NoError(t, plan.Validate())
	})
}
