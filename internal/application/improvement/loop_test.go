package improvement

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/domain/entity"
	wfmodel "agent-writer-api/internal/workflow/model"
)

// scriptedAgent 按调用次数返回脚本化结果
type scriptedAgent struct {
	kind    agent.Kind
	results []*agent.Result
	errs    []error
	calls   int
}

func (s *scriptedAgent) Kind() agent.Kind { return s.kind }

func (s *scriptedAgent) Generate(_ context.Context, _ *agent.GenerateRequest) (*agent.Result, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.results) {
		return s.results[i], nil
	}
	return s.results[len(s.results)-1], nil
}

func critiqueResult() *agent.Result {
	return &agent.Result{
		Kind:    agent.KindCritique,
		Success: true,
		Payload: &wfmodel.CritiqueOutput{
			Weaknesses: []string{"节奏拖沓"},
			Summary:    "结构完整但中段乏力",
		},
	}
}

func enhanceResult(round int) *agent.Result {
	return &agent.Result{
		Kind:    agent.KindEnhancement,
		Success: true,
		Payload: &wfmodel.EnhanceOutput{
			EnhancedContent: fmt.Sprintf("改进后的内容 v%d", round),
			Rationale:       "压缩了中段",
		},
	}
}

func scoreResult(score float64) *agent.Result {
	return &agent.Result{
		Kind:    agent.KindScoring,
		Success: true,
		Payload: &wfmodel.ScoreOutput{OverallScore: score},
	}
}

func scoringSequence(scores ...float64) *scriptedAgent {
	results := make([]*agent.Result, 0, len(scores))
	for _, s := range scores {
		results = append(results, scoreResult(s))
	}
	return &scriptedAgent{kind: agent.KindScoring, results: results}
}

func qualityRegistry(scoring *scriptedAgent) *agent.Registry {
	return agent.NewRegistry(
		&scriptedAgent{kind: agent.KindCritique, results: []*agent.Result{critiqueResult()}},
		&scriptedAgent{kind: agent.KindEnhancement, results: []*agent.Result{
			enhanceResult(1), enhanceResult(2), enhanceResult(3), enhanceResult(4),
		}},
		scoring,
	)
}

func improvementInput() Input {
	return Input{
		UserID:      "user-1",
		SessionID:   "session-1",
		Content:     "原始内容",
		ContentType: entity.ContentTypePlot,
	}
}

func TestRun_MaxIterationsReached(t *testing.T) {
	// 分数持续低于目标，走满四轮
	loop := NewLoop(qualityRegistry(scoringSequence(6.0, 7.5, 8.0, 8.8)), nil, 9.5, 4)

	session, err := loop.Run(context.Background(), improvementInput())

	require.NoError(t, err)
	assert.Equal(t, entity.ImprovementStatusCompletedMaxIte, session.Status)
	assert.Equal(t, 4, session.IterationCount)
	require.Len(t, session.Iterations, 4)
	assert.InDelta(t, 8.8, session.LastScore(), 0.001)

	// 每轮的输入是上一轮的增强产物
	assert.Equal(t, "原始内容", session.Iterations[0].InputContent)
	assert.Equal(t, "改进后的内容 v1", session.Iterations[1].InputContent)
	assert.Equal(t, "改进后的内容 v3", session.Iterations[3].InputContent)
}

func TestRun_EarlyStopOnTargetScore(t *testing.T) {
	loop := NewLoop(qualityRegistry(scoringSequence(8.0, 9.6)), nil, 9.5, 4)

	session, err := loop.Run(context.Background(), improvementInput())

	require.NoError(t, err)
	assert.Equal(t, entity.ImprovementStatusCompletedScore, session.Status)
	assert.Equal(t, 2, session.IterationCount)
	assert.InDelta(t, 9.6, session.LastScore(), 0.001)
}

func TestRun_StepFailureFinishesAsFailed(t *testing.T) {
	// 第二轮评审失败：会话进入 failed，保留第一轮完整记录
	critique := &scriptedAgent{kind: agent.KindCritique, results: []*agent.Result{
		critiqueResult(),
		{Kind: agent.KindCritique, Success: false, Error: "llm timeout"},
	}}
	registry := agent.NewRegistry(
		critique,
		&scriptedAgent{kind: agent.KindEnhancement, results: []*agent.Result{enhanceResult(1)}},
		scoringSequence(7.0),
	)
	loop := NewLoop(registry, nil, 9.5, 4)

	session, err := loop.Run(context.Background(), improvementInput())

	require.NoError(t, err)
	assert.Equal(t, entity.ImprovementStatusFailed, session.Status)
	assert.Equal(t, 1, session.IterationCount)
}

func TestRun_MissingQualityAgentIsUnrecoverable(t *testing.T) {
	registry := agent.NewRegistry(
		&scriptedAgent{kind: agent.KindCritique, results: []*agent.Result{critiqueResult()}},
	)
	loop := NewLoop(registry, nil, 0, 0)

	session, err := loop.Run(context.Background(), improvementInput())

	require.Error(t, err)
	assert.Nil(t, session)
}

func TestRun_InputValidation(t *testing.T) {
	loop := NewLoop(qualityRegistry(scoringSequence(9.9)), nil, 0, 0)

	_, err := loop.Run(context.Background(), Input{ContentType: entity.ContentTypePlot})
	assert.Error(t, err)

	_, err = loop.Run(context.Background(), Input{Content: "内容"})
	assert.Error(t, err)
}

func TestNewLoop_Defaults(t *testing.T) {
	loop := NewLoop(nil, nil, 0, 0)
	assert.InDelta(t, DefaultTargetScore, loop.targetScore, 0.001)
	assert.Equal(t, DefaultMaxIterations, loop.maxIterations)

	loop = NewLoop(nil, nil, 8.0, 2)
	assert.InDelta(t, 8.0, loop.targetScore, 0.001)
	assert.Equal(t, 2, loop.maxIterations)
}
