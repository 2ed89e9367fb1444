// Package orchestration 实现工作流规划与编排核心
package orchestration

import (
	"fmt"

	"agent-writer-api/internal/application/agent"
	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/domain/entity"
	pkgerrors "agent-writer-api/pkg/errors"
)

// WorkflowType 工作流类型，封闭枚举
type WorkflowType string

const (
	WorkflowPlotOnly             WorkflowType = "plot_only"
	WorkflowAuthorOnly           WorkflowType = "author_only"
	WorkflowPlotThenAuthor       WorkflowType = "plot_then_author"
	WorkflowAuthorThenPlot       WorkflowType = "author_then_plot"
	WorkflowWorldOnly            WorkflowType = "world_only"
	WorkflowCharactersOnly       WorkflowType = "characters_only"
	WorkflowLoreExpansion        WorkflowType = "lore_expansion"
	WorkflowIterativeImprovement WorkflowType = "iterative_improvement"
	WorkflowCombinedFoundation   WorkflowType = "combined_foundation"
	// WorkflowClarification 依赖不可满足或意图不明时的澄清伪计划
	WorkflowClarification WorkflowType = "clarification_request"
)

// PlanStep 计划中的一次代理调用
type PlanStep struct {
	// Agent 执行本步骤的代理类型
	Agent agent.Kind `json:"agent"`
	// Tool 生成成功后执行的保存工具，空值表示无持久化
	Tool string `json:"tool,omitempty"`
	// DependsOn 依赖的上游代理类型，其结果并入本步骤上下文
	DependsOn []agent.Kind `json:"depends_on,omitempty"`
	// Refs 规划期解析出的既有内容引用，按类型记录 ID
	Refs map[entity.ContentType]string `json:"refs,omitempty"`
}

// WorkflowPlan 有序的代理调用序列
// 依赖步骤必须严格先于被依赖者出现，执行永远串行。
type WorkflowPlan struct {
	Type  WorkflowType `json:"type"`
	Steps []PlanStep   `json:"steps"`
	// Clarification 非空时计划退化为单个澄清伪步骤
	Clarification string `json:"clarification,omitempty"`
	// Improve 迭代改进工作流要改进的既有内容引用
	Improve *param.ContentRef `json:"improve,omitempty"`
}

// IsClarification 是否为澄清伪计划
func (p *WorkflowPlan) IsClarification() bool {
	return p.Clarification != ""
}

// AgentSequence 计划中代理的调用顺序
func (p *WorkflowPlan) AgentSequence() []agent.Kind {
	kinds := make([]agent.Kind, 0, len(p.Steps))
	for _, s := range p.Steps {
		kinds = append(kinds, s.Agent)
	}
	return kinds
}

// Validate 校验计划结构：依赖只能指向更早的步骤或已解析的引用
func (p *WorkflowPlan) Validate() error {
	if p.IsClarification() {
		return nil
	}
	if p.Type == WorkflowIterativeImprovement {
		if p.Improve == nil || p.Improve.ID == "" {
			return pkgerrors.New(pkgerrors.CodeMalformedPlan, "improvement plan missing content reference")
		}
		return nil
	}
	if len(p.Steps) == 0 {
		return pkgerrors.New(pkgerrors.CodeMalformedPlan, "plan has no steps")
	}
	seen := make(map[agent.Kind]bool, len(p.Steps))
	for i, step := range p.Steps {
		for _, dep := range step.DependsOn {
			if seen[dep] {
				continue
			}
			if refSatisfies(step.Refs, dep) {
				continue
			}
			return pkgerrors.New(pkgerrors.CodeMalformedPlan,
				fmt.Sprintf("step %d (%s) depends on unresolved %s", i, step.Agent, dep))
		}
		seen[step.Agent] = true
	}
	return nil
}

// refSatisfies 预解析引用是否覆盖给定依赖
func refSatisfies(refs map[entity.ContentType]string, dep agent.Kind) bool {
	ct := dep.ContentType()
	if ct == "" {
		return false
	}
	return refs[ct] != ""
}

// clarificationPlan 构建澄清伪计划
func clarificationPlan(message string) *WorkflowPlan {
	return &WorkflowPlan{
		Type:          WorkflowClarification,
		Clarification: message,
	}
}
