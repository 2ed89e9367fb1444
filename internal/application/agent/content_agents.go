package agent

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/workflow/chain"
	wfmodel "agent-writer-api/internal/workflow/model"
)

// PlotAgent 情节生成代理
type PlotAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewPlotAgent 创建情节生成代理
func NewPlotAgent(c *chain.ContentChain, opts Options) *PlotAgent {
	return &PlotAgent{chain: c, opts: opts}
}

func (a *PlotAgent) Kind() Kind { return KindPlot }

// Generate 生成情节草稿
func (a *PlotAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("plot chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	var draft wfmodel.PlotDraft
	vars := buildGenerationVars(req, nil)
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &draft); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	// 过短的摘要视为退化输出
	if utf8.RuneCountInString(draft.PlotSummary) < a.opts.PlotSummaryMinLength {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start,
			fmt.Sprintf("degenerate plot summary: %d chars, minimum %d", utf8.RuneCountInString(draft.PlotSummary), a.opts.PlotSummaryMinLength)), nil
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &draft,
		Duration: time.Since(start),
	}, nil
}

// AuthorAgent 作者人格生成代理
type AuthorAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewAuthorAgent 创建作者人格生成代理
func NewAuthorAgent(c *chain.ContentChain, opts Options) *AuthorAgent {
	return &AuthorAgent{chain: c, opts: opts}
}

func (a *AuthorAgent) Kind() Kind { return KindAuthor }

// Generate 生成作者人格草稿，若计划声明了情节依赖则并入上下文
func (a *AuthorAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("author chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	var draft wfmodel.AuthorDraft
	vars := buildGenerationVars(req, []Kind{KindPlot})
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &draft); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &draft,
		Duration: time.Since(start),
	}, nil
}

// WorldAgent 世界观生成代理
type WorldAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewWorldAgent 创建世界观生成代理
func NewWorldAgent(c *chain.ContentChain, opts Options) *WorldAgent {
	return &WorldAgent{chain: c, opts: opts}
}

func (a *WorldAgent) Kind() Kind { return KindWorldBuilding }

// Generate 生成世界观草稿，情节上下文由计划保证存在
func (a *WorldAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("world chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	var draft wfmodel.WorldDraft
	vars := buildGenerationVars(req, []Kind{KindPlot})
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &draft); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	if !entity.ValidWorldType(entity.WorldType(draft.WorldType)) {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, fmt.Sprintf("invalid world_type: %s", draft.WorldType)), nil
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &draft,
		Duration: time.Since(start),
	}, nil
}

// CharactersAgent 角色组生成代理
type CharactersAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewCharactersAgent 创建角色组生成代理
func NewCharactersAgent(c *chain.ContentChain, opts Options) *CharactersAgent {
	return &CharactersAgent{chain: c, opts: opts}
}

func (a *CharactersAgent) Kind() Kind { return KindCharacters }

// Generate 生成角色组草稿，依赖情节与世界观上下文
func (a *CharactersAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("characters chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	var draft wfmodel.CharactersDraft
	vars := buildGenerationVars(req, []Kind{KindPlot, KindWorldBuilding})
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &draft); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	// 模型偶尔算错数量，以实际列表长度为准
	if draft.CharacterCount != len(draft.Characters) {
		draft.CharacterCount = len(draft.Characters)
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &draft,
		Duration: time.Since(start),
	}, nil
}

// LoreExpansionAgent 世界观补充设定代理
type LoreExpansionAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewLoreExpansionAgent 创建补充设定代理
func NewLoreExpansionAgent(c *chain.ContentChain, opts Options) *LoreExpansionAgent {
	return &LoreExpansionAgent{chain: c, opts: opts}
}

func (a *LoreExpansionAgent) Kind() Kind { return KindLoreExpansion }

// Generate 基于既有世界观补充细节设定
func (a *LoreExpansionAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("lore chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	var draft wfmodel.LoreDraft
	vars := buildGenerationVars(req, []Kind{KindPlot, KindWorldBuilding})
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &draft); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &draft,
		Duration: time.Since(start),
	}, nil
}
