package tool

import (
	"context"
	"fmt"
	"strconv"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	"agent-writer-api/internal/infrastructure/embedding"
	"agent-writer-api/pkg/logger"
)

const defaultSearchTopK = 5

// SearchContentTool 在向量索引中检索已生成内容
// 检索失败降级为空结果，不向调用方报错。
type SearchContentTool struct {
	embedder *embedding.Service
	index    repository.ContentIndex
}

// NewSearchContentTool 创建内容检索工具
func NewSearchContentTool(embedder *embedding.Service, index repository.ContentIndex) *SearchContentTool {
	return &SearchContentTool{embedder: embedder, index: index}
}

func (t *SearchContentTool) Name() string { return NameSearchContent }

func (t *SearchContentTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_id", Required: true},
		{Name: "query", Required: true, Description: "自然语言检索词"},
		{Name: "content_type", Required: false, Description: "限定内容类型，空值不限定"},
		{Name: "top_k", Required: false, Description: "返回条数，默认 5"},
	}
}

// Invoke 嵌入检索词并按用户与类型过滤检索
func (t *SearchContentTool) Invoke(ctx context.Context, in *Invocation) (out *Output, err error) {
	defer func() { observeTool(t.Name(), err) }()

	query := in.Args["query"]
	if query == "" {
		return nil, fmt.Errorf("search_content: missing required argument: query")
	}

	topK := defaultSearchTopK
	if raw := in.Args["top_k"]; raw != "" {
		if n, perr := strconv.Atoi(raw); perr == nil && n > 0 {
			topK = n
		}
	}

	vector, eerr := t.embedder.EmbedOne(ctx, query)
	if eerr != nil {
		logger.Warn(ctx, "检索词嵌入失败，返回空结果", "error", eerr.Error())
		return &Output{Results: []*repository.ContentSummary{}}, nil
	}

	contentType := entity.ContentType(in.Args["content_type"])
	results, serr := t.index.Search(ctx, vector, contentType, in.UserID, topK)
	if serr != nil {
		logger.Warn(ctx, "内容检索失败，返回空结果", "error", serr.Error())
		return &Output{Results: []*repository.ContentSummary{}}, nil
	}
	if results == nil {
		results = []*repository.ContentSummary{}
	}
	return &Output{Results: results}, nil
}
