// Package callback 注册 Eino 全局回调，采集 LLM 与工具调用指标
package callback

import "context"

type workflowKey struct{}
type providerKey struct{}

// WithWorkflow 在上下文中记录当前工作流名称
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return context.WithValue(ctx, workflowKey{}, workflow)
}

// WorkflowFromContext 读取当前工作流名称
func WorkflowFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(workflowKey{}).(string); ok {
		return v
	}
	return ""
}

// WithProvider 在上下文中记录当前 LLM 提供商
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey{}, provider)
}

// ProviderFromContext 读取当前 LLM 提供商
func ProviderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(providerKey{}).(string); ok {
		return v
	}
	return ""
}
