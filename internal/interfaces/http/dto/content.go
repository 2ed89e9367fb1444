package dto

import (
	"agent-writer-api/internal/domain/repository"
)

// ListQuery 内容列表查询参数
type ListQuery struct {
	UserID   string `form:"user_id" binding:"required"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// Pagination 转换为仓储分页参数
func (q *ListQuery) Pagination() repository.Pagination {
	return repository.NewPagination(q.Page, q.PageSize)
}

// SearchQuery 内容检索查询参数
type SearchQuery struct {
	UserID      string `form:"user_id" binding:"required"`
	Query       string `form:"query" binding:"required"`
	ContentType string `form:"content_type"`
	TopK        int    `form:"top_k,default=5"`
}

// PageMetaOf 从仓储分页结果构建分页元数据
func PageMetaOf[T any](result *repository.PagedResult[T]) *PageMeta {
	return &PageMeta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      int(result.Total),
		TotalPages: result.TotalPages,
	}
}
