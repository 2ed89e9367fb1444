// Package agent 定义生成代理能力与注册表
package agent

import (
	"context"
	"time"

	"agent-writer-api/internal/application/param"
	"agent-writer-api/internal/domain/entity"
)

// Kind 代理类型，封闭枚举
type Kind string

const (
	KindPlot          Kind = "plot_generator"
	KindAuthor        Kind = "author_generator"
	KindWorldBuilding Kind = "world_building"
	KindCharacters    Kind = "characters"
	KindCritique      Kind = "critique"
	KindEnhancement   Kind = "enhancement"
	KindScoring       Kind = "scoring"
	KindLoreExpansion Kind = "lore_expansion"
)

// ContentType 返回代理产出的内容类型，质量控制类代理返回空
func (k Kind) ContentType() entity.ContentType {
	switch k {
	case KindPlot:
		return entity.ContentTypePlot
	case KindAuthor:
		return entity.ContentTypeAuthor
	case KindWorldBuilding:
		return entity.ContentTypeWorld
	case KindCharacters:
		return entity.ContentTypeCharacters
	default:
		return ""
	}
}

// GenerateRequest 单次代理调用的输入
type GenerateRequest struct {
	// Request 原始路由请求
	Request *param.Request
	// Params 抽取后的参数集
	Params param.ParameterSet
	// Upstream 计划声明依赖的上游结果，按代理类型索引
	Upstream map[Kind]*Result
	// ConversationBlock 会话滚动窗口渲染后的文本，可为空
	ConversationBlock string
	// Input 质量控制类代理的额外输入（content、content_type、critique 等）
	Input map[string]string
}

// Result 单次代理调用的输出。
// Success=false 表示可容忍的生成/校验失败，不中断整个计划。
type Result struct {
	Kind     Kind          `json:"kind"`
	Success  bool          `json:"success"`
	Payload  any           `json:"payload,omitempty"`
	RecordID string        `json:"record_id,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Agent 生成代理能力接口。
// 返回 error 仅用于不可恢复故障；普通生成失败通过 Result.Success=false 表达。
type Agent interface {
	Kind() Kind
	Generate(ctx context.Context, req *GenerateRequest) (*Result, error)
}

// failure 构建可容忍失败结果
func failure(kind Kind, start time.Time, reason string) *Result {
	return &Result{
		Kind:     kind,
		Success:  false,
		Error:    reason,
		Duration: time.Since(start),
	}
}
