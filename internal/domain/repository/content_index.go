// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"agent-writer-api/internal/domain/entity"
)

// ContentSummary 内容检索结果摘要
type ContentSummary struct {
	ID          string             `json:"id"`
	ContentType entity.ContentType `json:"content_type"`
	UserID      string             `json:"user_id"`
	Title       string             `json:"title"`
	Summary     string             `json:"summary"`
	Score       float32            `json:"score"`
}

// ContentIndexEntry 待索引的内容条目
type ContentIndexEntry struct {
	ID          string
	ContentType entity.ContentType
	UserID      string
	Title       string
	Summary     string
	Vector      []float32
}

// ContentIndex 生成内容的向量索引端口
// 写失败由调用方记录日志后忽略，读失败降级为空结果。
type ContentIndex interface {
	Index(ctx context.Context, entry *ContentIndexEntry) error
	Search(ctx context.Context, queryVector []float32, contentType entity.ContentType, userID string, topK int) ([]*ContentSummary, error)
}
