package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/conversation"
	"agent-writer-api/internal/application/improvement"
	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/application/tool"
	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/infrastructure/messaging"
	"agent-writer-api/pkg/logger"
	"agent-writer-api/pkg/metrics"
)

var tracer = otel.Tracer("orchestration")

// State 编排状态机状态
type State string

const (
	StateReceived    State = "received"
	StateExtracting  State = "extracting_params"
	StatePlanning    State = "planning"
	StateExecuting   State = "executing"
	StateAggregating State = "aggregating"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// ProgressEvent 执行过程中的进度事件，供流式传输层订阅
type ProgressEvent struct {
	State State      `json:"state"`
	Step  int        `json:"step,omitempty"`
	Total int        `json:"total,omitempty"`
	Agent agent.Kind `json:"agent,omitempty"`
}

// ProgressFunc 进度回调，nil 表示不订阅
type ProgressFunc func(ev ProgressEvent)

// WorkflowResult 一次路由调用的聚合结果
type WorkflowResult struct {
	RequestID     string                     `json:"request_id"`
	WorkflowType  WorkflowType               `json:"workflow_type"`
	Success       bool                       `json:"success"`
	Message       string                     `json:"message"`
	Steps         []*agent.Result            `json:"steps,omitempty"`
	Clarification string                     `json:"clarification,omitempty"`
	Improvement   *entity.ImprovementSession `json:"improvement,omitempty"`
	Decision      *entity.DecisionRecord     `json:"-"`
}

const decisionPublishTimeout = 5 * time.Second

// Orchestrator 编排核心状态机
// received -> extracting_params -> planning -> executing -> aggregating -> completed，
// 仅不可恢复故障走 failed 出口。
type Orchestrator struct {
	extractor     *param.Extractor
	planner       *Planner
	agents        *agent.Registry
	tools         *tool.Registry
	conversations *conversation.Manager
	improver      *improvement.Loop
	loader        *ContentLoader
	producer      *messaging.Producer
}

// NewOrchestrator 创建编排核心
func NewOrchestrator(
	extractor *param.Extractor,
	planner *Planner,
	agents *agent.Registry,
	tools *tool.Registry,
	conversations *conversation.Manager,
	improver *improvement.Loop,
	loader *ContentLoader,
	producer *messaging.Producer,
) *Orchestrator {
	return &Orchestrator{
		extractor:     extractor,
		planner:       planner,
		agents:        agents,
		tools:         tools,
		conversations: conversations,
		improver:      improver,
		loader:        loader,
		producer:      producer,
	}
}

// Route 路由一次请求，返回聚合结果。
// 返回 error 仅用于不可恢复故障；可容忍失败体现在结果的步骤明细里。
func (o *Orchestrator) Route(ctx context.Context, req *param.Request) (*WorkflowResult, error) {
	return o.RouteWithProgress(ctx, req, nil)
}

// RouteWithProgress 与 Route 相同，额外上报进度事件
func (o *Orchestrator) RouteWithProgress(ctx context.Context, req *param.Request, progress ProgressFunc) (*WorkflowResult, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "orchestration.Route", trace.WithAttributes(
		attribute.String("request_id", req.RequestID),
	))
	defer span.End()

	emit := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}
	emit(ProgressEvent{State: StateReceived})

	// 参数抽取永不失败
	emit(ProgressEvent{State: StateExtracting})
	params := o.extractor.Extract(req)

	// 会话读取失败降级为空上下文
	convCtx := o.loadConversation(ctx, req)

	emit(ProgressEvent{State: StatePlanning})
	plan, err := o.planner.Plan(ctx, req, params, convCtx)
	if err != nil {
		emit(ProgressEvent{State: StateFailed})
		o.recordOutcome(ctx, req, params, string(WorkflowClarification), nil, false, err.Error(), start)
		return nil, err
	}
	span.SetAttributes(attribute.String("workflow_type", string(plan.Type)))

	o.appendInteraction(ctx, req, entity.RoleUser, req.Content, nil)

	var result *WorkflowResult
	switch {
	case plan.IsClarification():
		result = o.clarify(req, plan)
	case plan.Type == WorkflowIterativeImprovement:
		result, err = o.runImprovement(ctx, req, plan, emit)
	default:
		result, err = o.execute(ctx, req, params, plan, convCtx, emit)
	}
	if err != nil {
		emit(ProgressEvent{State: StateFailed})
		o.recordOutcome(ctx, req, params, string(plan.Type), nil, false, err.Error(), start)
		return nil, err
	}

	emit(ProgressEvent{State: StateAggregating})
	o.appendInteraction(ctx, req, entity.RoleAssistant, result.Message, resultMetadata(result))

	decision := o.buildDecision(req, params, result, start)
	result.Decision = decision
	o.publishDecision(ctx, decision)

	status := "success"
	if !result.Success {
		status = "partial_failure"
	}
	metrics.WorkflowRoutedTotal.WithLabelValues(string(result.WorkflowType), status).Inc()
	metrics.WorkflowDuration.WithLabelValues(string(result.WorkflowType)).Observe(time.Since(start).Seconds())

	emit(ProgressEvent{State: StateCompleted})
	return result, nil
}

// loadConversation 读会话上下文，失败降级为空
func (o *Orchestrator) loadConversation(ctx context.Context, req *param.Request) *conversation.Context {
	if o.conversations == nil {
		return nil
	}
	convCtx, err := o.conversations.Get(ctx, req.SessionID, req.UserID)
	if err != nil {
		logger.Warn(ctx, "会话上下文读取失败，按空上下文处理", "session_id", req.SessionID, "error", err.Error())
		return nil
	}
	return convCtx
}

// clarify 澄清伪计划直接完成，不产生任何代理结果
func (o *Orchestrator) clarify(req *param.Request, plan *WorkflowPlan) *WorkflowResult {
	return &WorkflowResult{
		RequestID:     req.RequestID,
		WorkflowType:  WorkflowClarification,
		Success:       true,
		Message:       plan.Clarification,
		Clarification: plan.Clarification,
	}
}

// runImprovement 执行迭代改进工作流
func (o *Orchestrator) runImprovement(ctx context.Context, req *param.Request, plan *WorkflowPlan, emit ProgressFunc) (*WorkflowResult, error) {
	ct := entity.ContentType(plan.Improve.Type)
	content, err := o.loader.LoadText(ctx, ct, plan.Improve.ID)
	if err != nil {
		// 引用内容读不到按可容忍失败聚合
		logger.Warn(ctx, "改进目标内容读取失败", "content_id", plan.Improve.ID, "error", err.Error())
		return &WorkflowResult{
			RequestID:    req.RequestID,
			WorkflowType: plan.Type,
			Success:      false,
			Message:      fmt.Sprintf("无法读取要改进的内容（%s），请确认引用是否正确。", plan.Improve.ID),
		}, nil
	}

	emit(ProgressEvent{State: StateExecuting, Step: 1, Total: 1, Agent: agent.KindCritique})
	session, err := o.improver.Run(ctx, improvement.Input{
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Content:     content,
		ContentType: ct,
		Provider:    req.Provider,
	})
	if err != nil {
		return nil, err
	}

	success := session.Status != entity.ImprovementStatusFailed
	return &WorkflowResult{
		RequestID:    req.RequestID,
		WorkflowType: plan.Type,
		Success:      success,
		Message:      improvementMessage(session),
		Improvement:  session,
	}, nil
}

// execute 按计划顺序串行执行步骤
func (o *Orchestrator) execute(ctx context.Context, req *param.Request, params param.ParameterSet,
	plan *WorkflowPlan, convCtx *conversation.Context, emit ProgressFunc) (*WorkflowResult, error) {

	results := make(map[agent.Kind]*agent.Result, len(plan.Steps))
	steps := make([]*agent.Result, 0, len(plan.Steps))
	// refs 随执行推进累积，既含规划期引用也含新保存的内容
	refs := make(map[entity.ContentType]string)
	firstFailure := ""
	halted := false

	for i, step := range plan.Steps {
		emit(ProgressEvent{State: StateExecuting, Step: i + 1, Total: len(plan.Steps), Agent: step.Agent})

		upstream, depFailure := o.resolveUpstream(ctx, step, results, refs)
		if depFailure != "" {
			// 硬依赖失败，终止剩余步骤
			if firstFailure == "" {
				firstFailure = depFailure
			}
			halted = true
			break
		}

		ag, err := o.agents.Get(step.Agent)
		if err != nil {
			return nil, err
		}

		res, err := ag.Generate(ctx, &agent.GenerateRequest{
			Request:           req,
			Params:            params,
			Upstream:          upstream,
			ConversationBlock: convCtx.RenderWindow(),
		})
		if err != nil {
			return nil, err
		}

		if res.Success && step.Tool != "" {
			o.runSaveTool(ctx, req, step, res, refs)
		}

		if !res.Success && firstFailure == "" {
			firstFailure = fmt.Sprintf("%s: %s", step.Agent, res.Error)
		}
		results[step.Agent] = res
		steps = append(steps, res)
	}

	o.mergeRefs(ctx, req, refs)

	success := firstFailure == "" && !halted
	return &WorkflowResult{
		RequestID:    req.RequestID,
		WorkflowType: plan.Type,
		Success:      success,
		Message:      aggregateMessage(plan, steps, firstFailure, halted),
		Steps:        steps,
	}, nil
}

// resolveUpstream 汇集步骤声明的上游结果。
// 依赖的计划内步骤失败返回非空原因；规划期引用读取失败同样视为硬依赖失败。
func (o *Orchestrator) resolveUpstream(ctx context.Context, step PlanStep,
	results map[agent.Kind]*agent.Result, refs map[entity.ContentType]string) (map[agent.Kind]*agent.Result, string) {

	if len(step.DependsOn) == 0 {
		return nil, ""
	}
	upstream := make(map[agent.Kind]*agent.Result, len(step.DependsOn))
	for _, dep := range step.DependsOn {
		if res, ok := results[dep]; ok {
			if !res.Success {
				return nil, fmt.Sprintf("upstream %s failed: %s", dep, res.Error)
			}
			upstream[dep] = res
			continue
		}

		ct := dep.ContentType()
		id := step.Refs[ct]
		if id == "" {
			id = refs[ct]
		}
		if id == "" {
			// 规划器保证不会出现，防御向上游失败靠拢
			return nil, fmt.Sprintf("upstream %s unresolved", dep)
		}
		payload, err := o.loader.LoadDraft(ctx, ct, id)
		if err != nil {
			return nil, fmt.Sprintf("load upstream %s: %v", dep, err)
		}
		refs[ct] = id
		upstream[dep] = &agent.Result{Kind: dep, Success: true, Payload: payload, RecordID: id}
	}
	return upstream, ""
}

// runSaveTool 执行保存工具。仓储失败记为可容忍失败，但保留已生成内容。
func (o *Orchestrator) runSaveTool(ctx context.Context, req *param.Request, step PlanStep,
	res *agent.Result, refs map[entity.ContentType]string) {

	t, err := o.tools.Get(step.Tool)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		return
	}

	args := map[string]string{}
	if id := refs[entity.ContentTypePlot]; id != "" {
		args["plot_id"] = id
	}
	if id := refs[entity.ContentTypeWorld]; id != "" {
		args["world_id"] = id
	}
	for ct, id := range step.Refs {
		switch ct {
		case entity.ContentTypePlot:
			args["plot_id"] = id
		case entity.ContentTypeWorld:
			args["world_id"] = id
		}
	}

	out, err := t.Invoke(ctx, &tool.Invocation{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Payload:   res.Payload,
		Args:      args,
	})
	if err != nil {
		// 内容未保存，但生成结果保留在步骤里供手工重试
		res.Success = false
		res.Error = fmt.Sprintf("save failed: %v", err)
		return
	}

	res.RecordID = out.ID
	if ct := res.Kind.ContentType(); ct != "" {
		refs[ct] = out.ID
	}
}

// mergeRefs 将本次执行产生的内容引用合并进会话（last-writer-wins）
func (o *Orchestrator) mergeRefs(ctx context.Context, req *param.Request, refs map[entity.ContentType]string) {
	if o.conversations == nil || len(refs) == 0 {
		return
	}
	updates := make(entity.ContentRefs, len(refs))
	for ct, id := range refs {
		updates[ct] = id
	}
	if err := o.conversations.MergeRefs(ctx, req.SessionID, req.UserID, updates); err != nil {
		logger.Warn(ctx, "会话内容引用合并失败", "session_id", req.SessionID, "error", err.Error())
	}
}

func (o *Orchestrator) appendInteraction(ctx context.Context, req *param.Request, role entity.Role, content string, metadata json.RawMessage) {
	if o.conversations == nil || content == "" {
		return
	}
	if err := o.conversations.Append(ctx, req.SessionID, req.UserID, role, content, metadata); err != nil {
		logger.Warn(ctx, "交互记录写入失败", "session_id", req.SessionID, "error", err.Error())
	}
}

// buildDecision 构建一次请求的决策记录
func (o *Orchestrator) buildDecision(req *param.Request, params param.ParameterSet, result *WorkflowResult, start time.Time) *entity.DecisionRecord {
	record := entity.NewDecisionRecord(req.RequestID, req.UserID, req.SessionID, string(result.WorkflowType))
	record.Success = result.Success
	record.LatencyMs = time.Since(start).Milliseconds()

	sequence := make([]string, 0, len(result.Steps))
	timings := make(map[string]int64, len(result.Steps))
	for _, s := range result.Steps {
		sequence = append(sequence, string(s.Kind))
		timings[string(s.Kind)] = s.Duration.Milliseconds()
		if !s.Success && record.Error == "" {
			record.Error = s.Error
		}
	}
	if data, err := json.Marshal(sequence); err == nil {
		record.AgentSequence = data
	}
	if data, err := json.Marshal(timings); err == nil {
		record.StepTimings = data
	}
	if fields := params.Fields(); len(fields) > 0 {
		if data, err := json.Marshal(fields); err == nil {
			record.ExtractedParams = data
		}
	}
	return record
}

// recordOutcome 不可恢复故障路径上的决策记录
func (o *Orchestrator) recordOutcome(ctx context.Context, req *param.Request, params param.ParameterSet,
	workflowType string, _ *WorkflowResult, success bool, errMsg string, start time.Time) {

	record := entity.NewDecisionRecord(req.RequestID, req.UserID, req.SessionID, workflowType)
	record.Success = success
	record.Error = errMsg
	record.LatencyMs = time.Since(start).Milliseconds()
	if fields := params.Fields(); len(fields) > 0 {
		if data, err := json.Marshal(fields); err == nil {
			record.ExtractedParams = data
		}
	}
	o.publishDecision(ctx, record)
}

// publishDecision 异步发布决策记录，失败只记日志，绝不影响主链路
func (o *Orchestrator) publishDecision(ctx context.Context, record *entity.DecisionRecord) {
	if o.producer == nil || record == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(detached, decisionPublishTimeout)
		defer cancel()
		if _, err := o.producer.PublishDecision(pubCtx, record); err != nil {
			logger.Warn(pubCtx, "决策记录发布失败", "request_id", record.RequestID, "error", err.Error())
		}
	}()
}

// aggregateMessage 汇总面向用户的结果说明
func aggregateMessage(plan *WorkflowPlan, steps []*agent.Result, firstFailure string, halted bool) string {
	var ok, failed []string
	for _, s := range steps {
		name := kindLabel(s.Kind)
		if s.Success {
			ok = append(ok, name)
		} else {
			failed = append(failed, name)
		}
	}

	var b strings.Builder
	if len(ok) > 0 {
		b.WriteString("已完成：" + strings.Join(ok, "、") + "。")
	}
	if len(failed) > 0 {
		b.WriteString("未完成：" + strings.Join(failed, "、") + "。")
	}
	if halted {
		b.WriteString("因前置步骤失败，后续步骤未执行。")
	}
	if firstFailure != "" {
		b.WriteString("首个失败原因：" + firstFailure)
	}
	if b.Len() == 0 {
		return "请求已处理，但没有产生任何生成步骤。"
	}
	return b.String()
}

// improvementMessage 改进会话的结果说明
func improvementMessage(session *entity.ImprovementSession) string {
	switch session.Status {
	case entity.ImprovementStatusCompletedScore:
		return fmt.Sprintf("内容改进完成：第 %d 轮达到目标分数（%.1f/%.1f）。", session.IterationCount, session.LastScore(), session.TargetScore)
	case entity.ImprovementStatusCompletedMaxIte:
		return fmt.Sprintf("内容改进结束：已达最大迭代轮数 %d，最终得分 %.1f（目标 %.1f）。", session.MaxIterations, session.LastScore(), session.TargetScore)
	case entity.ImprovementStatusFailed:
		return "内容改进中途失败，已保留完成的迭代记录。"
	default:
		return "内容改进进行中。"
	}
}

func resultMetadata(result *WorkflowResult) json.RawMessage {
	meta := map[string]any{
		"workflow_type": result.WorkflowType,
		"success":       result.Success,
	}
	if result.Improvement != nil {
		meta["improvement_id"] = result.Improvement.ID
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return data
}

// kindLabel 代理类型的中文展示名
func kindLabel(kind agent.Kind) string {
	switch kind {
	case agent.KindPlot:
		return "情节"
	case agent.KindAuthor:
		return "作者"
	case agent.KindWorldBuilding:
		return "世界观"
	case agent.KindCharacters:
		return "角色"
	case agent.KindLoreExpansion:
		return "补充设定"
	case agent.KindCritique:
		return "批评"
	case agent.KindEnhancement:
		return "增强"
	case agent.KindScoring:
		return "评分"
	default:
		return string(kind)
	}
}
