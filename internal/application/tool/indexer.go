package tool

import (
	"context"
	"time"

	"agent-writer-api/internal/domain/entity"
	"agent-writer-api/internal/domain/repository"
	"agent-writer-api/internal/infrastructure/embedding"
	"agent-writer-api/internal/workflow/node"
	"agent-writer-api/pkg/logger"
)

const (
	summaryMaxRunes = 512
	indexTimeout    = 10 * time.Second
)

// summaryIndexer 保存后将摘要写入向量索引，失败仅记录日志
type summaryIndexer struct {
	embedder *embedding.Service
	index    repository.ContentIndex
}

func newSummaryIndexer(embedder *embedding.Service, index repository.ContentIndex) *summaryIndexer {
	return &summaryIndexer{embedder: embedder, index: index}
}

// indexSummary 嵌入并写入索引，索引失败不影响保存结果
func (s *summaryIndexer) indexSummary(ctx context.Context, id string, contentType entity.ContentType, userID, title, summary string) {
	if s == nil || s.embedder == nil || s.index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	summary = node.TruncateByRunes(summary, summaryMaxRunes)
	vector, err := s.embedder.EmbedOne(ctx, title+"\n"+summary)
	if err != nil {
		logger.Warn(ctx, "内容摘要嵌入失败", "content_id", id, "content_type", string(contentType), "error", err.Error())
		return
	}
	entry := &repository.ContentIndexEntry{
		ID:          id,
		ContentType: contentType,
		UserID:      userID,
		Title:       title,
		Summary:     summary,
		Vector:      vector,
	}
	if err := s.index.Index(ctx, entry); err != nil {
		logger.Warn(ctx, "内容摘要索引失败", "content_id", id, "content_type", string(contentType), "error", err.Error())
	}
}
