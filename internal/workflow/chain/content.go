// Package chain 实现基于 Eino 的内容生成管道
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"agent-writer-api/internal/infrastructure/eino/callback"
	wfmodel "agent-writer-api/internal/workflow/model"
	wfnode "agent-writer-api/internal/workflow/node"
	workflowport "agent-writer-api/internal/workflow/port"
	workflowprompt "agent-writer-api/internal/workflow/prompt"
	"agent-writer-api/pkg/logger"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// ContentChain 单一内容类型的生成链：模板渲染 -> LLM 调用（json_schema 结构化输出，
// 不支持时降级为纯提示词约束）-> 输出。
type ContentChain struct {
	factory    workflowport.ChatModelFactory
	promptID   workflowprompt.PromptID
	workflow   string
	schemaName string
	jsonSchema map[string]any

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.GenerateInput, *schema.Message]
	chainErr  error
}

// NewContentChain 创建内容生成链
func NewContentChain(factory workflowport.ChatModelFactory, promptID workflowprompt.PromptID, workflow, schemaName string, jsonSchema map[string]any) *ContentChain {
	return &ContentChain{
		factory:    factory,
		promptID:   promptID,
		workflow:   workflow,
		schemaName: schemaName,
		jsonSchema: jsonSchema,
	}
}

// Invoke 执行生成链
func (c *ContentChain) Invoke(ctx context.Context, in *wfmodel.GenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type contentChainState struct {
	In       *wfmodel.GenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *ContentChain) getChain() (compose.Runnable[*wfmodel.GenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *ContentChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.GenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.GenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.GenerateInput) (*contentChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &contentChainState{In: in}, nil
		}),
		compose.WithNodeName(c.workflow+".init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *contentChainState) (*contentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			tpl, err := defaultPromptRegistry.ChatTemplate(c.promptID)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, st.In.Vars)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName(c.workflow+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *contentChainState) (*contentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			provider := strings.TrimSpace(st.In.Provider)
			ctx = callback.WithWorkflow(ctx, c.workflow)
			ctx = callback.WithProvider(ctx, provider)

			chatModel, err := c.factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, c.buildModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", provider,
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, c.buildModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName(c.workflow+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *contentChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName(c.workflow+".finalize"),
	)

	return chain.Compile(ctx)
}

func (c *ContentChain) buildModelOptions(in *wfmodel.GenerateInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}

	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if m := strings.TrimSpace(in.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}

	if enableSchema && c.jsonSchema != nil {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   c.schemaName,
					"strict": false,
					"schema": c.jsonSchema,
				},
			},
		}))
	}

	return opts
}
