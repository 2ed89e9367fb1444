package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"agent-writer-api/internal/workflow/chain"
	wfmodel "agent-writer-api/internal/workflow/model"
	wfnode "agent-writer-api/internal/workflow/node"
	"agent-writer-api/pkg/metrics"
)

var tracer = otel.Tracer("agent")

var validate = validator.New()

// Options 代理运行参数
type Options struct {
	// StepTimeout 单次生成调用的超时时间
	StepTimeout time.Duration
	// PlotSummaryMinLength 情节摘要最小长度，低于该长度视为退化输出
	PlotSummaryMinLength int
}

// runChain 调用生成链并将输出解析为 out 指向的类型。
// 模型调用错误、JSON 解析失败与 schema 校验失败都以 error 返回，
// 由具体代理转换为可容忍失败结果。
func runChain(ctx context.Context, c *chain.ContentChain, timeout time.Duration, vars map[string]any, provider, model string, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	msg, err := c.Invoke(ctx, &wfmodel.GenerateInput{
		Provider: provider,
		Model:    model,
		Vars:     vars,
	})
	if err != nil {
		return fmt.Errorf("llm call failed: %w", err)
	}

	raw := wfnode.ExtractJSONObject(msg.Content)
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("empty model output")
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("malformed model output: %w", err)
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// buildGenerationVars 组装内容生成类代理的模板变量
func buildGenerationVars(req *GenerateRequest, upstreamOrder []Kind) map[string]any {
	userRequest := ""
	if req.Request != nil {
		userRequest = strings.TrimSpace(req.Request.Content)
	}

	sections := make([]wfnode.Section, 0, len(upstreamOrder)+1)
	for _, kind := range upstreamOrder {
		res, ok := req.Upstream[kind]
		if !ok || res == nil || !res.Success || res.Payload == nil {
			continue
		}
		data, err := json.Marshal(res.Payload)
		if err != nil {
			continue
		}
		sections = append(sections, wfnode.Section{
			Name:    string(kind),
			Content: string(data),
		})
	}
	if req.ConversationBlock != "" {
		sections = append(sections, wfnode.Section{
			Name:    "conversation",
			Content: req.ConversationBlock,
		})
	}

	return map[string]any{
		"user_request":     userRequest,
		"parameters_block": wfnode.BuildKeyValueBlock("生成参数", req.Params.Fields()),
		"context_block":    wfnode.BuildSectionBlock("已有上下文", sections),
	}
}

// observe 记录代理生成指标
func observe(kind Kind, start time.Time, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	metrics.AgentGenerationTotal.WithLabelValues(string(kind), status).Inc()
	metrics.AgentGenerationDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

// startSpan 开启代理调用的追踪 span
func startSpan(ctx context.Context, kind Kind) (context.Context, func()) {
	ctx, span := tracer.Start(ctx, "agent.Generate")
	span.SetAttributes(attribute.String("agent.kind", string(kind)))
	return ctx, func() { span.End() }
}

func providerOf(req *GenerateRequest) string {
	if req == nil || req.Request == nil {
		return ""
	}
	return req.Request.Provider
}
