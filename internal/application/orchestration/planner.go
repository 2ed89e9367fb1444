package orchestration

import (
	"context"
	"strings"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/conversation"
	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/application/tool"
	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/pkg/logger"
)

// category 意图关键词类别
type category string

const (
	catPlot       category = "plot"
	catAuthor     category = "author"
	catWorld      category = "world"
	catCharacters category = "characters"
	catLore       category = "lore"
	catImprove    category = "improve"
)

// categoryKeywords 各类别的触发关键词，中英文混排。
// 关键词集合是启发式实现选择，策略不变：命中类别决定分支、硬依赖不可满足即澄清。
// lore 只收多词短语，避免 explore 这类包含 lore 子串的词误触发。
var categoryKeywords = map[category][]string{
	catPlot:       {"plotline", "storyline", "plot", "情节", "剧情"},
	catAuthor:     {"author", "writer persona", "pen name", "作者", "写手", "笔名"},
	catWorld:      {"world-building", "worldbuilding", "world building", "world", "setting", "世界观", "设定"},
	catCharacters: {"characters", "character", "protagonist", "cast", "角色", "人物", "主角"},
	catLore:       {"lore expansion", "expand the lore", "add lore", "world lore", "more lore", "设定细节", "补充设定", "扩充设定"},
	catImprove:    {"improvement", "improve", "critique", "enhance", "refine", "polish", "score", "改进", "润色", "优化", "打磨", "评分"},
}

// detectCategories 扫描小写文本，返回每个类别最早命中的位置
func detectCategories(text string) map[category]int {
	matches := make(map[category]int)
	for cat, keywords := range categoryKeywords {
		pos := -1
		for _, kw := range keywords {
			idx := strings.Index(text, kw)
			if idx < 0 {
				continue
			}
			if pos < 0 || idx < pos {
				pos = idx
			}
		}
		if pos >= 0 {
			matches[cat] = pos
		}
	}
	return matches
}

// Planner 工作流规划器：关键词意图分类 + 硬依赖校验
type Planner struct{}

// NewPlanner 创建规划器
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan 依据请求文本、抽取参数与会话上下文生成有序计划。
// 硬依赖不可满足时返回澄清伪计划而非猜测。
func (p *Planner) Plan(ctx context.Context, req *param.Request, params param.ParameterSet, convCtx *conversation.Context) (*WorkflowPlan, error) {
	text := strings.ToLower(req.Content)
	matches := detectCategories(text)

	plan := p.classify(matches, params, convCtx)
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	logger.Debug(ctx, "工作流规划完成", "workflow_type", string(plan.Type), "steps", len(plan.Steps))
	return plan, nil
}

func (p *Planner) classify(matches map[category]int, params param.ParameterSet, convCtx *conversation.Context) *WorkflowPlan {
	if _, ok := matches[catImprove]; ok {
		return p.planImprovement(params, convCtx)
	}
	// 补充设定比世界观更具体，先于 world 分支判定
	if _, ok := matches[catLore]; ok {
		return p.planLoreExpansion(params, convCtx)
	}

	_, hasPlot := matches[catPlot]
	_, hasAuthor := matches[catAuthor]
	_, hasWorld := matches[catWorld]
	_, hasCharacters := matches[catCharacters]

	switch {
	case hasWorld || hasCharacters:
		if !hasPlot && !hasAuthor && hasWorld && !hasCharacters {
			return p.planWorldOnly(params, convCtx)
		}
		if !hasPlot && !hasAuthor && !hasWorld && hasCharacters {
			return p.planCharactersOnly(params, convCtx)
		}
		return p.planCombined(matches, params, convCtx)
	case hasPlot && hasAuthor:
		if matches[catAuthor] < matches[catPlot] {
			return p.planAuthorThenPlot()
		}
		return p.planPlotThenAuthor()
	case hasPlot:
		return &WorkflowPlan{
			Type:  WorkflowPlotOnly,
			Steps: []PlanStep{{Agent: agent.KindPlot, Tool: tool.NameSavePlot}},
		}
	case hasAuthor:
		return &WorkflowPlan{
			Type:  WorkflowAuthorOnly,
			Steps: []PlanStep{{Agent: agent.KindAuthor, Tool: tool.NameSaveAuthor}},
		}
	default:
		return clarificationPlan("无法从请求中识别要生成的内容类型，请说明需要情节、作者、世界观、角色、补充设定还是内容改进。")
	}
}

func (p *Planner) planPlotThenAuthor() *WorkflowPlan {
	return &WorkflowPlan{
		Type: WorkflowPlotThenAuthor,
		Steps: []PlanStep{
			{Agent: agent.KindPlot, Tool: tool.NameSavePlot},
			{Agent: agent.KindAuthor, Tool: tool.NameSaveAuthor, DependsOn: []agent.Kind{agent.KindPlot}},
		},
	}
}

func (p *Planner) planAuthorThenPlot() *WorkflowPlan {
	return &WorkflowPlan{
		Type: WorkflowAuthorThenPlot,
		Steps: []PlanStep{
			{Agent: agent.KindAuthor, Tool: tool.NameSaveAuthor},
			{Agent: agent.KindPlot, Tool: tool.NameSavePlot},
		},
	}
}

// planWorldOnly 世界观生成硬性要求已解析的情节引用
func (p *Planner) planWorldOnly(params param.ParameterSet, convCtx *conversation.Context) *WorkflowPlan {
	plotID := resolveRef(entity.ContentTypePlot, params, convCtx)
	if plotID == "" {
		return clarificationPlan("世界观生成需要一个已有的情节作为基础，请先生成情节或在请求中引用既有情节。")
	}
	return &WorkflowPlan{
		Type: WorkflowWorldOnly,
		Steps: []PlanStep{
			{
				Agent:     agent.KindWorldBuilding,
				Tool:      tool.NameSaveWorld,
				DependsOn: []agent.Kind{agent.KindPlot},
				Refs:      map[entity.ContentType]string{entity.ContentTypePlot: plotID},
			},
		},
	}
}

// planCharactersOnly 角色生成硬性要求情节与世界观引用
func (p *Planner) planCharactersOnly(params param.ParameterSet, convCtx *conversation.Context) *WorkflowPlan {
	plotID := resolveRef(entity.ContentTypePlot, params, convCtx)
	worldID := resolveRef(entity.ContentTypeWorld, params, convCtx)
	if plotID == "" || worldID == "" {
		return clarificationPlan("角色生成需要已有的情节和世界观作为基础，请先完成两者或在请求中引用既有内容。")
	}
	return &WorkflowPlan{
		Type: WorkflowCharactersOnly,
		Steps: []PlanStep{
			{
				Agent:     agent.KindCharacters,
				Tool:      tool.NameSaveCharacters,
				DependsOn: []agent.Kind{agent.KindPlot, agent.KindWorldBuilding},
				Refs: map[entity.ContentType]string{
					entity.ContentTypePlot:  plotID,
					entity.ContentTypeWorld: worldID,
				},
			},
		},
	}
}

// planLoreExpansion 补充设定硬性要求已解析的世界观引用
func (p *Planner) planLoreExpansion(params param.ParameterSet, convCtx *conversation.Context) *WorkflowPlan {
	worldID := resolveRef(entity.ContentTypeWorld, params, convCtx)
	if worldID == "" {
		return clarificationPlan("补充设定需要一个已有的世界观作为基础，请先生成世界观或在请求中引用既有世界观。")
	}
	return &WorkflowPlan{
		Type: WorkflowLoreExpansion,
		Steps: []PlanStep{
			{
				Agent:     agent.KindLoreExpansion,
				Tool:      tool.NameSaveLore,
				DependsOn: []agent.Kind{agent.KindWorldBuilding},
				Refs:      map[entity.ContentType]string{entity.ContentTypeWorld: worldID},
			},
		},
	}
}

// planCombined 组合工作流：情节先于世界观、世界观先于角色，
// 作者位置由关键词先后决定。缺失且计划内不生成的依赖必须可从引用解析。
func (p *Planner) planCombined(matches map[category]int, params param.ParameterSet, convCtx *conversation.Context) *WorkflowPlan {
	_, hasPlot := matches[catPlot]
	_, hasAuthor := matches[catAuthor]
	_, hasWorld := matches[catWorld]
	_, hasCharacters := matches[catCharacters]

	plotID := resolveRef(entity.ContentTypePlot, params, convCtx)
	worldID := resolveRef(entity.ContentTypeWorld, params, convCtx)

	if hasWorld && !hasPlot && plotID == "" {
		return clarificationPlan("世界观生成需要一个已有的情节作为基础，请先生成情节或在请求中引用既有情节。")
	}
	if hasCharacters {
		if !hasPlot && plotID == "" {
			return clarificationPlan("角色生成需要已有的情节作为基础，请先生成情节或在请求中引用既有情节。")
		}
		if !hasWorld && worldID == "" {
			return clarificationPlan("角色生成需要已有的世界观作为基础，请先生成世界观或在请求中引用既有世界观。")
		}
	}

	authorFirst := hasAuthor && hasPlot && matches[catAuthor] < matches[catPlot]

	steps := make([]PlanStep, 0, 4)
	if authorFirst {
		steps = append(steps, PlanStep{Agent: agent.KindAuthor, Tool: tool.NameSaveAuthor})
	}
	if hasPlot {
		steps = append(steps, PlanStep{Agent: agent.KindPlot, Tool: tool.NameSavePlot})
	}
	if hasWorld {
		step := PlanStep{
			Agent:     agent.KindWorldBuilding,
			Tool:      tool.NameSaveWorld,
			DependsOn: []agent.Kind{agent.KindPlot},
		}
		if !hasPlot {
			step.Refs = map[entity.ContentType]string{entity.ContentTypePlot: plotID}
		}
		steps = append(steps, step)
	}
	if hasCharacters {
		step := PlanStep{
			Agent:     agent.KindCharacters,
			Tool:      tool.NameSaveCharacters,
			DependsOn: []agent.Kind{agent.KindPlot, agent.KindWorldBuilding},
		}
		refs := make(map[entity.ContentType]string)
		if !hasPlot {
			refs[entity.ContentTypePlot] = plotID
		}
		if !hasWorld {
			refs[entity.ContentTypeWorld] = worldID
		}
		if len(refs) > 0 {
			step.Refs = refs
		}
		steps = append(steps, step)
	}
	if hasAuthor && !authorFirst {
		step := PlanStep{Agent: agent.KindAuthor, Tool: tool.NameSaveAuthor}
		if hasPlot {
			step.DependsOn = []agent.Kind{agent.KindPlot}
		}
		steps = append(steps, step)
	}

	return &WorkflowPlan{Type: WorkflowCombinedFoundation, Steps: steps}
}

// planImprovement 迭代改进要求明确的内容引用
func (p *Planner) planImprovement(params param.ParameterSet, convCtx *conversation.Context) *WorkflowPlan {
	ref := params.ContentRef
	if ref == nil || ref.ID == "" {
		// 会话里只有一类内容时可以无歧义地推断
		ref = inferSingleRef(convCtx)
	}
	if ref == nil || ref.ID == "" {
		return clarificationPlan("请指明要改进的内容（类型与标识），例如某个已生成的情节或世界观。")
	}
	return &WorkflowPlan{
		Type:    WorkflowIterativeImprovement,
		Improve: ref,
	}
}

// inferSingleRef 会话引用唯一时返回该引用，否则返回 nil
func inferSingleRef(convCtx *conversation.Context) *param.ContentRef {
	if convCtx == nil || len(convCtx.Refs) != 1 {
		return nil
	}
	for t, id := range convCtx.Refs {
		return &param.ContentRef{ID: id, Type: string(t)}
	}
	return nil
}

// resolveRef 按参数引用、会话引用的顺序解析既有内容 ID
func resolveRef(ct entity.ContentType, params param.ParameterSet, convCtx *conversation.Context) string {
	if params.ContentRef != nil && params.ContentRef.Type == string(ct) && params.ContentRef.ID != "" {
		return params.ContentRef.ID
	}
	if convCtx != nil {
		return convCtx.Refs[ct]
	}
	return ""
}
