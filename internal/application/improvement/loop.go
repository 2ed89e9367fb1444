// Package improvement 实现内容的迭代改进循环
package improvement

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	wfmodel "agent-writer-api/internal/workflow/model"
	"agent-writer-api/pkg/logger"
	"agent-writer-api/pkg/metrics"
)

var tracer = otel.Tracer("improvement")

// 配置缺省值
const (
	DefaultTargetScore   = 9.5
	DefaultMaxIterations = 4
)

// Input 一次改进请求
type Input struct {
	UserID      string
	SessionID   string
	Content     string
	ContentType entity.ContentType
	// TargetScore 达标分数，0 使用配置默认值
	TargetScore float64
	// MaxIterations 最大迭代轮数，0 使用配置默认值
	MaxIterations int
	// Provider 指定 LLM 提供商，空值使用默认
	Provider string
}

// Loop 迭代改进循环：critique -> enhance -> score -> decide
type Loop struct {
	agents        *agent.Registry
	sessions      repository.ImprovementRepository
	targetScore   float64
	maxIterations int
}

// NewLoop 创建改进循环
func NewLoop(agents *agent.Registry, sessions repository.ImprovementRepository, targetScore float64, maxIterations int) *Loop {
	if targetScore <= 0 {
		targetScore = DefaultTargetScore
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		agents:        agents,
		sessions:      sessions,
		targetScore:   targetScore,
		maxIterations: maxIterations,
	}
}

// Run 执行改进循环直至达标、触达轮数上限或失败
// 每轮迭代完整记入审计轨迹；会话持久化为尽力而为，失败不影响返回结果。
func (l *Loop) Run(ctx context.Context, in Input) (*entity.ImprovementSession, error) {
	if in.Content == "" {
		return nil, fmt.Errorf("improvement: content is required")
	}
	if in.ContentType == "" {
		return nil, fmt.Errorf("improvement: content_type is required")
	}

	target := in.TargetScore
	if target <= 0 {
		target = l.targetScore
	}
	maxIter := in.MaxIterations
	if maxIter <= 0 {
		maxIter = l.maxIterations
	}

	ctx, span := tracer.Start(ctx, "improvement.Run", trace.WithAttributes(
		attribute.String("content_type", string(in.ContentType)),
		attribute.Float64("target_score", target),
		attribute.Int("max_iterations", maxIter),
	))
	defer span.End()

	critiqueAgent, err := l.agents.Get(agent.KindCritique)
	if err != nil {
		return nil, err
	}
	enhanceAgent, err := l.agents.Get(agent.KindEnhancement)
	if err != nil {
		return nil, err
	}
	scoreAgent, err := l.agents.Get(agent.KindScoring)
	if err != nil {
		return nil, err
	}

	session := entity.NewImprovementSession(in.UserID, in.SessionID, in.ContentType, in.Content, target, maxIter)
	current := in.Content

	for i := 0; i < maxIter; i++ {
		iteration := entity.NewIteration(current)

		critique, failReason := l.runCritique(ctx, critiqueAgent, in, current)
		if failReason != "" {
			return l.finish(ctx, session, entity.ImprovementStatusFailed, failReason), nil
		}
		iteration.Critique = marshalJSON(critique)

		enhanced, failReason := l.runEnhance(ctx, enhanceAgent, in, current, critique)
		if failReason != "" {
			return l.finish(ctx, session, entity.ImprovementStatusFailed, failReason), nil
		}
		iteration.EnhancedContent = enhanced.EnhancedContent
		iteration.EnhancementRationale = enhanced.Rationale

		score, failReason := l.runScore(ctx, scoreAgent, in, enhanced.EnhancedContent)
		if failReason != "" {
			return l.finish(ctx, session, entity.ImprovementStatusFailed, failReason), nil
		}
		iteration.Score = score.OverallScore
		iteration.ScoreBreakdown = marshalJSON(score.Breakdown)

		session.AppendIteration(iteration)
		current = enhanced.EnhancedContent

		if score.OverallScore >= target {
			return l.finish(ctx, session, entity.ImprovementStatusCompletedScore, ""), nil
		}
	}

	return l.finish(ctx, session, entity.ImprovementStatusCompletedMaxIte, ""), nil
}

func (l *Loop) runCritique(ctx context.Context, a agent.Agent, in Input, content string) (*wfmodel.CritiqueOutput, string) {
	result, err := a.Generate(ctx, &agent.GenerateRequest{
		Request: requestOf(in),
		Input: map[string]string{
			"content":      content,
			"content_type": string(in.ContentType),
		},
	})
	if err != nil {
		return nil, fmt.Sprintf("critique: %v", err)
	}
	if !result.Success {
		return nil, fmt.Sprintf("critique: %s", result.Error)
	}
	out, ok := result.Payload.(*wfmodel.CritiqueOutput)
	if !ok {
		return nil, "critique: unexpected payload type"
	}
	return out, ""
}

func (l *Loop) runEnhance(ctx context.Context, a agent.Agent, in Input, content string, critique *wfmodel.CritiqueOutput) (*wfmodel.EnhanceOutput, string) {
	result, err := a.Generate(ctx, &agent.GenerateRequest{
		Request: requestOf(in),
		Input: map[string]string{
			"content":        content,
			"content_type":   string(in.ContentType),
			"critique_block": renderCritique(critique),
		},
	})
	if err != nil {
		return nil, fmt.Sprintf("enhance: %v", err)
	}
	if !result.Success {
		return nil, fmt.Sprintf("enhance: %s", result.Error)
	}
	out, ok := result.Payload.(*wfmodel.EnhanceOutput)
	if !ok {
		return nil, "enhance: unexpected payload type"
	}
	return out, ""
}

func (l *Loop) runScore(ctx context.Context, a agent.Agent, in Input, content string) (*wfmodel.ScoreOutput, string) {
	result, err := a.Generate(ctx, &agent.GenerateRequest{
		Request: requestOf(in),
		Input: map[string]string{
			"content":      content,
			"content_type": string(in.ContentType),
		},
	})
	if err != nil {
		return nil, fmt.Sprintf("score: %v", err)
	}
	if !result.Success {
		return nil, fmt.Sprintf("score: %s", result.Error)
	}
	out, ok := result.Payload.(*wfmodel.ScoreOutput)
	if !ok {
		return nil, "score: unexpected payload type"
	}
	return out, ""
}

// finish 标记终态、上报指标并尽力持久化
func (l *Loop) finish(ctx context.Context, session *entity.ImprovementSession, status entity.ImprovementStatus, failReason string) *entity.ImprovementSession {
	session.Complete(status)
	if failReason != "" {
		logger.Warn(ctx, "迭代改进失败", "improvement_id", session.ID, "reason", failReason)
	}

	metrics.ImprovementIterations.WithLabelValues(string(session.ContentType), string(status)).Observe(float64(session.IterationCount))
	if session.IterationCount > 0 {
		metrics.ImprovementFinalScore.WithLabelValues(string(session.ContentType)).Observe(session.LastScore())
	}

	if l.sessions != nil {
		if err := l.sessions.Save(ctx, session); err != nil {
			logger.Error(ctx, "迭代改进会话保存失败", err, "improvement_id", session.ID)
		}
	}
	return session
}

// renderCritique 将批评结果渲染为提示词文本
func renderCritique(c *wfmodel.CritiqueOutput) string {
	var b strings.Builder
	if len(c.Strengths) > 0 {
		b.WriteString("优点：\n")
		for _, s := range c.Strengths {
			b.WriteString("- " + s + "\n")
		}
	}
	if len(c.Weaknesses) > 0 {
		b.WriteString("不足：\n")
		for _, s := range c.Weaknesses {
			b.WriteString("- " + s + "\n")
		}
	}
	if len(c.Suggestions) > 0 {
		b.WriteString("改进建议：\n")
		for _, s := range c.Suggestions {
			b.WriteString("- " + s + "\n")
		}
	}
	b.WriteString("总评：" + c.Summary)
	return b.String()
}

// requestOf 透传用户与提供商信息给代理
func requestOf(in Input) *param.Request {
	return &param.Request{
		UserID:    in.UserID,
		SessionID: in.SessionID,
		Provider:  in.Provider,
	}
}

func marshalJSON(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
