package agent

import (
	"context"
	"fmt"
	"time"

	"agent-writer-api/internal/workflow/chain"
	wfmodel "agent-writer-api/internal/workflow/model"
)

// qualityVars 从请求输入提取质量环节所需变量
func qualityVars(req *GenerateRequest, keys ...string) (map[string]any, error) {
	vars := make(map[string]any, len(keys))
	for _, k := range keys {
		v, ok := req.Input[k]
		if !ok || v == "" {
			return nil, fmt.Errorf("missing input: %s", k)
		}
		vars[k] = v
	}
	return vars, nil
}

// CritiqueAgent 内容批评代理
type CritiqueAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewCritiqueAgent 创建内容批评代理
func NewCritiqueAgent(c *chain.ContentChain, opts Options) *CritiqueAgent {
	return &CritiqueAgent{chain: c, opts: opts}
}

func (a *CritiqueAgent) Kind() Kind { return KindCritique }

// Generate 对给定内容产出结构化批评意见
func (a *CritiqueAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("critique chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	vars, err := qualityVars(req, "content", "content_type")
	if err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	var out wfmodel.CritiqueOutput
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &out); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &out,
		Duration: time.Since(start),
	}, nil
}

// EnhancementAgent 内容增强代理
type EnhancementAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewEnhancementAgent 创建内容增强代理
func NewEnhancementAgent(c *chain.ContentChain, opts Options) *EnhancementAgent {
	return &EnhancementAgent{chain: c, opts: opts}
}

func (a *EnhancementAgent) Kind() Kind { return KindEnhancement }

// Generate 依据批评意见改写内容
func (a *EnhancementAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("enhance chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	vars, err := qualityVars(req, "content", "content_type", "critique_block")
	if err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	var out wfmodel.EnhanceOutput
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &out); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &out,
		Duration: time.Since(start),
	}, nil
}

// ScoringAgent 内容评分代理
type ScoringAgent struct {
	chain *chain.ContentChain
	opts  Options
}

// NewScoringAgent 创建内容评分代理
func NewScoringAgent(c *chain.ContentChain, opts Options) *ScoringAgent {
	return &ScoringAgent{chain: c, opts: opts}
}

func (a *ScoringAgent) Kind() Kind { return KindScoring }

// Generate 对内容给出 0-10 总分及分项得分
func (a *ScoringAgent) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	if a.chain == nil {
		return nil, fmt.Errorf("score chain not configured")
	}
	ctx, end := startSpan(ctx, a.Kind())
	defer end()
	start := time.Now()

	vars, err := qualityVars(req, "content", "content_type")
	if err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	var out wfmodel.ScoreOutput
	if err := runChain(ctx, a.chain, a.opts.StepTimeout, vars, providerOf(req), "", &out); err != nil {
		observe(a.Kind(), start, false)
		return failure(a.Kind(), start, err.Error()), nil
	}

	observe(a.Kind(), start, true)
	return &Result{
		Kind:     a.Kind(),
		Success:  true,
		Payload:  &out,
		Duration: time.Since(start),
	}, nil
}
