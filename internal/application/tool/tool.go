// Package tool 提供命名工具注册与内容保存、检索工具
package tool

import (
	"context"
	"fmt"
	"sync"

	"agent-writer-api/internal/domain/repository"
	pkgerrors "agent-writer-api/pkg/errors"
)

// 工具名称
const (
	NameSavePlot       = "save_plot"
	NameSaveAuthor     = "save_author"
	NameSaveWorld      = "save_world_building"
	NameSaveCharacters = "save_characters"
	NameSaveLore       = "save_lore"
	NameSearchContent  = "search_content"
)

// ParamSpec 单个参数声明
type ParamSpec struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Invocation 工具调用输入
type Invocation struct {
	UserID    string
	SessionID string
	// Payload 代理生成的草稿，保存类工具按名称断言具体类型
	Payload any
	// Args 标量参数，如 plot_id、world_id、query
	Args map[string]string
}

// Output 工具调用输出
type Output struct {
	// ID 保存类工具返回新建实体的主键
	ID string
	// Entity 保存后的实体
	Entity any
	// Results 检索类工具的命中列表
	Results []*repository.ContentSummary
}

// Tool 命名工具接口
type Tool interface {
	Name() string
	Params() []ParamSpec
	Invoke(ctx context.Context, in *Invocation) (*Output, error)
}

// Registry 工具注册表
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry 创建注册表并注册给定工具
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register 注册工具，同名覆盖
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get 按名称获取工具，未注册视为不可恢复错误
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownTool, fmt.Sprintf("unknown tool: %s", name))
	}
	return t, nil
}

// Names 返回已注册的工具名称
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// requireArgs 校验必填参数
func requireArgs(in *Invocation, keys ...string) error {
	for _, k := range keys {
		if in.Args[k] == "" {
			return fmt.Errorf("missing required argument: %s", k)
		}
	}
	return nil
}
