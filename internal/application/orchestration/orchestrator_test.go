package orchestration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/application/tool"
	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	wfmodel "agent-writer-api/internal/workflow/model"
	pkgerrors "agent-writer-api/pkg/errors"
)

// stubAgent 固定返回预设结果的代理
type stubAgent struct {
	kind    agent.Kind
	result  *agent.Result
	err     error
	lastReq *agent.GenerateRequest
}

func (s *stubAgent) Kind() agent.Kind { return s.kind }

func (s *stubAgent) Generate(_ context.Context, req *agent.GenerateRequest) (*agent.Result, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func okAgent(kind agent.Kind, payload any) *stubAgent {
	return &stubAgent{kind: kind, result: &agent.Result{Kind: kind, Success: true, Payload: payload}}
}

func failingAgent(kind agent.Kind, reason string) *stubAgent {
	return &stubAgent{kind: kind, result: &agent.Result{Kind: kind, Success: false, Error: reason}}
}

// stubTool 记录调用并返回预设输出的工具
type stubTool struct {
	name        string
	out         *tool.Output
	err         error
	invocations []*tool.Invocation
}

func (s *stubTool) Name() string            { return s.name }
func (s *stubTool) Params() []tool.ParamSpec { return nil }

func (s *stubTool) Invoke(_ context.Context, inv *tool.Invocation) (*tool.Output, error) {
	s.invocations = append(s.invocations, inv)
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

// plotRepoStub 只实现 GetByID 的情节仓储
type plotRepoStub struct {
	plots map[string]*entity.Plot
}

func (s *plotRepoStub) Create(_ context.Context, _ *entity.Plot) error { return nil }

func (s *plotRepoStub) GetByID(_ context.Context, id string) (*entity.Plot, error) {
	return s.plots[id], nil
}

func (s *plotRepoStub) ListByUser(_ context.Context, _ string, _ repository.Pagination) (*repository.PagedResult[*entity.Plot], error) {
	return nil, nil
}

// worldRepoStub 只实现 GetByID 的世界观仓储
type worldRepoStub struct {
	worlds map[string]*entity.WorldBuilding
}

func (s *worldRepoStub) Create(_ context.Context, _ *entity.WorldBuilding) error { return nil }

func (s *worldRepoStub) Update(_ context.Context, _ *entity.WorldBuilding) error { return nil }

func (s *worldRepoStub) GetByID(_ context.Context, id string) (*entity.WorldBuilding, error) {
	return s.worlds[id], nil
}

func (s *worldRepoStub) GetByPlotID(_ context.Context, _ string) (*entity.WorldBuilding, error) {
	return nil, nil
}

func (s *worldRepoStub) ListByUser(_ context.Context, _ string, _ repository.Pagination) (*repository.PagedResult[*entity.WorldBuilding], error) {
	return nil, nil
}

func routeRequest(content string) *param.Request {
	return &param.Request{
		RequestID: "req-1",
		Content:   content,
		UserID:    "user-1",
		SessionID: "session-1",
	}
}

func newTestOrchestrator(agents *agent.Registry, tools *tool.Registry, loader *ContentLoader) *Orchestrator {
	return NewOrchestrator(param.NewExtractor(), NewPlanner(), agents, tools, nil, nil, loader, nil)
}

func TestRoute_PlotThenAuthorSuccess(t *testing.T) {
	plotAgent := okAgent(agent.KindPlot, &wfmodel.PlotDraft{Title: "t", PlotSummary: "s"})
	authorAgent := okAgent(agent.KindAuthor, &wfmodel.AuthorDraft{})
	savePlot := &stubTool{name: tool.NameSavePlot, out: &tool.Output{ID: "plot-1"}}
	saveAuthor := &stubTool{name: tool.NameSaveAuthor, out: &tool.Output{ID: "author-1"}}

	o := newTestOrchestrator(
		agent.NewRegistry(plotAgent, authorAgent),
		tool.NewRegistry(savePlot, saveAuthor),
		nil,
	)

	var events []ProgressEvent
	result, err := o.RouteWithProgress(context.Background(), routeRequest("Create a plot and an author"),
		func(ev ProgressEvent) { events = append(events, ev) })

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, WorkflowPlotThenAuthor, result.WorkflowType)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, "plot-1", result.Steps[0].RecordID)
	assert.Equal(t, "author-1", result.Steps[1].RecordID)

	// 作者步骤收到情节的上游结果
	require.NotNil(t, authorAgent.lastReq)
	assert.Contains(t, authorAgent.lastReq.Upstream, agent.KindPlot)

	// 决策记录随结果返回
	require.NotNil(t, result.Decision)
	assert.True(t, result.Decision.Success)
	assert.Equal(t, "req-1", result.Decision.RequestID)

	// 状态机顺序
	var states []State
	for _, ev := range events {
		states = append(states, ev.State)
	}
	assert.Equal(t, StateReceived, states[0])
	assert.Equal(t, StateCompleted, states[len(states)-1])
	assert.Contains(t, states, StateExtracting)
	assert.Contains(t, states, StatePlanning)
	assert.Contains(t, states, StateExecuting)
	assert.Contains(t, states, StateAggregating)
	assert.NotContains(t, states, StateFailed)
}

func TestRoute_UpstreamFailureHaltsDependents(t *testing.T) {
	plotAgent := failingAgent(agent.KindPlot, "degenerate plot summary")
	authorAgent := okAgent(agent.KindAuthor, &wfmodel.AuthorDraft{})

	o := newTestOrchestrator(
		agent.NewRegistry(plotAgent, authorAgent),
		tool.NewRegistry(),
		nil,
	)

	result, err := o.Route(context.Background(), routeRequest("Create a plot and an author"))

	require.NoError(t, err)
	assert.False(t, result.Success)
	// 作者步骤因硬依赖失败未执行
	require.Len(t, result.Steps, 1)
	assert.Equal(t, agent.KindPlot, result.Steps[0].Kind)
	assert.Nil(t, authorAgent.lastReq)
	assert.Contains(t, result.Message, "因前置步骤失败")
	assert.Contains(t, result.Message, "degenerate plot summary")
}

func TestRoute_ClarificationForWorldWithoutPlot(t *testing.T) {
	o := newTestOrchestrator(agent.NewRegistry(), tool.NewRegistry(), nil)

	result, err := o.Route(context.Background(), routeRequest("Build a world for my story"))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, WorkflowClarification, result.WorkflowType)
	assert.NotEmpty(t, result.Clarification)
	assert.Empty(t, result.Steps)
}

func TestRoute_SaveFailureKeepsPayload(t *testing.T) {
	payload := &wfmodel.PlotDraft{Title: "t", PlotSummary: "a long enough summary"}
	plotAgent := okAgent(agent.KindPlot, payload)
	savePlot := &stubTool{name: tool.NameSavePlot, err: fmt.Errorf("connection refused")}

	o := newTestOrchestrator(
		agent.NewRegistry(plotAgent),
		tool.NewRegistry(savePlot),
		nil,
	)

	result, err := o.Route(context.Background(), routeRequest("Create a plot"))

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.False(t, step.Success)
	assert.Contains(t, step.Error, "save failed")
	// 已生成内容保留，供调用方重试保存
	assert.Same(t, payload, step.Payload)
	assert.Empty(t, step.RecordID)
}

func TestRoute_UnknownAgentIsUnrecoverable(t *testing.T) {
	// 注册表缺作者代理，属于配置错误
	plotAgent := okAgent(agent.KindPlot, &wfmodel.PlotDraft{})
	o := newTestOrchestrator(
		agent.NewRegistry(plotAgent),
		tool.NewRegistry(&stubTool{name: tool.NameSavePlot, out: &tool.Output{ID: "plot-1"}}),
		nil,
	)

	result, err := o.Route(context.Background(), routeRequest("Create a plot and an author"))

	require.Error(t, err)
	assert.Nil(t, result)
	var appErr *pkgerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnknownAgent, appErr.Code)
}

func TestRoute_RefBackedUpstreamLoaded(t *testing.T) {
	// 世界观生成依赖既有情节引用，由加载器还原为上游结果
	plot := entity.NewPlot("user-1", "session-1", "异星殖民", "第一批殖民者在异星苏醒后发现飞船日志被篡改")
	loader := NewContentLoader(&plotRepoStub{plots: map[string]*entity.Plot{plot.ID: plot}}, nil, nil, nil)

	worldAgent := okAgent(agent.KindWorldBuilding, &wfmodel.WorldDraft{})
	saveWorld := &stubTool{name: tool.NameSaveWorld, out: &tool.Output{ID: "world-1"}}

	o := NewOrchestrator(param.NewExtractor(), NewPlanner(),
		agent.NewRegistry(worldAgent), tool.NewRegistry(saveWorld), nil, nil, loader, nil)

	req := routeRequest("Build a world for this")
	req.Context = &param.RequestContext{
		ContentRef: &param.ContentRef{ID: plot.ID, Type: "plot"},
	}

	result, err := o.Route(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, WorkflowWorldOnly, result.WorkflowType)

	// 上游结果来自仓储还原的草稿
	require.NotNil(t, worldAgent.lastReq)
	up := worldAgent.lastReq.Upstream[agent.KindPlot]
	require.NotNil(t, up)
	assert.Equal(t, plot.ID, up.RecordID)

	// 保存工具拿到了情节引用
	require.Len(t, saveWorld.invocations, 1)
	assert.Equal(t, plot.ID, saveWorld.invocations[0].Args["plot_id"])
}

func TestRoute_LoreExpansion(t *testing.T) {
	// 补充设定基于既有世界观引用调度，走保存工具回写
	world := &entity.WorldBuilding{ID: "world-1", WorldName: "双月大陆", Overview: "潮汐塑造的文明"}
	loader := NewContentLoader(nil, nil, &worldRepoStub{worlds: map[string]*entity.WorldBuilding{world.ID: world}}, nil)

	loreAgent := okAgent(agent.KindLoreExpansion, &wfmodel.LoreDraft{
		Entries: []wfmodel.LoreEntry{{Topic: "货币体系", Content: "以盐砖为通货"}},
	})
	saveLore := &stubTool{name: tool.NameSaveLore, out: &tool.Output{ID: world.ID}}

	o := newTestOrchestrator(agent.NewRegistry(loreAgent), tool.NewRegistry(saveLore), loader)

	req := routeRequest("Expand the lore of my world")
	req.Context = &param.RequestContext{
		ContentRef: &param.ContentRef{ID: world.ID, Type: "world_building"},
	}

	result, err := o.Route(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, WorkflowLoreExpansion, result.WorkflowType)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, world.ID, result.Steps[0].RecordID)

	// 代理收到仓储还原的世界观上游草稿
	require.NotNil(t, loreAgent.lastReq)
	up := loreAgent.lastReq.Upstream[agent.KindWorldBuilding]
	require.NotNil(t, up)
	assert.Equal(t, world.ID, up.RecordID)

	// 保存工具拿到了世界观引用
	require.Len(t, saveLore.invocations, 1)
	assert.Equal(t, world.ID, saveLore.invocations[0].Args["world_id"])
}
