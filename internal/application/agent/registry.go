package agent

import (
	"fmt"
	"sync"

	pkgerrors "agent-writer-api/pkg/errors"
)

// Registry 代理注册表：封闭的类型到实现映射。
// 未注册类型的查找属于配置错误，作为不可恢复故障返回。
type Registry struct {
	mu     sync.RWMutex
	agents map[Kind]Agent
}

// NewRegistry 创建代理注册表
func NewRegistry(agents ...Agent) *Registry {
	r := &Registry{agents: make(map[Kind]Agent, len(agents))}
	for _, a := range agents {
		r.Register(a)
	}
	return r
}

// Register 注册代理，同类型后注册者覆盖先注册者
func (r *Registry) Register(a Agent) {
	if a == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Kind()] = a
}

// Get 按类型查找代理
func (r *Registry) Get(kind Kind) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownAgent, fmt.Sprintf("unknown agent kind: %s", kind))
	}
	return a, nil
}

// Kinds 返回已注册的代理类型
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.agents))
	for k := range r.agents {
		kinds = append(kinds, k)
	}
	return kinds
}
